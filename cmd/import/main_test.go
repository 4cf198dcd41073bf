package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
)

const students = "student_id,student_name,personality_type,study_style,timezone,experience_level,GPA,study_times,days_of_wk_avail,preferred_subjects\n" +
	`S001,ada lovelace,INTJ,Visual,UTC-5,Freshman,3.1,Mornings,"Mon, Wed","Math, Physics"` + "\n" +
	`S002,grace hopper,ENTP,Visual,UTC+0,Senior,3.8,Afternoons,"Mon, Wed",Math` + "\n" +
	`S003,bad zone,ISFJ,Auditory,EST,Junior,2.5,Evenings,Fri,History` + "\n"

func TestRun(t *testing.T) {
	convey.Convey("Given a CSV file and a sqlite database", t, func() {
		dir := t.TempDir()
		csvPath := filepath.Join(dir, "students.csv")
		dbPath := filepath.Join(dir, "import.db")
		convey.So(os.WriteFile(csvPath, []byte(students), 0o600), convey.ShouldBeNil)

		_ = os.Setenv("STUDYBUDDY_DB_DRIVER", "sqlite")
		_ = os.Setenv("STUDYBUDDY_DB_DSN", dbPath)
		defer func() {
			_ = os.Unsetenv("STUDYBUDDY_DB_DRIVER")
			_ = os.Unsetenv("STUDYBUDDY_DB_DSN")
		}()

		convey.Convey("When the import runs against the store", func() {
			var out bytes.Buffer
			err := run(context.Background(), []string{"-file", csvPath, "-workers", "2"}, &out)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then valid rows are stored under their CSV ids", func() {
				convey.So(out.String(), convey.ShouldContainSubstring, "rows=3 inserted=2 failed=1")
				convey.So(out.String(), convey.ShouldContainSubstring, "EST")

				store, err := repository.Open(context.Background(), "sqlite", dbPath)
				convey.So(err, convey.ShouldBeNil)
				defer store.(*repository.SQLStore).Close()
				convey.So(store.Count(context.Background()), convey.ShouldEqual, 2)
				p, err := store.Get(context.Background(), "S002")
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.IsTutor(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given missing arguments", t, func() {
		var out bytes.Buffer

		convey.Convey("Then -file is required", func() {
			err := run(context.Background(), nil, &out)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(out.String(), convey.ShouldContainSubstring, "Usage:")
		})

		convey.Convey("Then -help prints usage", func() {
			err := run(context.Background(), []string{"-help"}, &out)
			convey.So(err, convey.ShouldEqual, flag.ErrHelp)
		})

		convey.Convey("Then a missing file is reported", func() {
			err := run(context.Background(), []string{"-file", filepath.Join(t.TempDir(), "nope.csv")}, &out)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
