package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
	service "github.com/okian/studybuddy/internal/app"
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/timeconv"
	"github.com/okian/studybuddy/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s-%d", n)
	}
}

func gpa(v float64) *float64 { return &v }

// learner: UTC-5 mornings, 13:00-17:00 UTC on Mon/Wed.
var learnerReg = model.Registration{
	Name:       "ada lovelace",
	GPA:        gpa(3.0),
	StudyStyle: "Visual",
	Timezone:   "UTC-5",
	StudyTimes: timeconv.Mornings,
	Days:       []string{"Mon", "Wed"},
	Subjects:   []string{"Math", "Physics"},
}

// near tutor: 14:00-18:00 UTC on Mon/Wed, same style.
var nearTutorReg = model.Registration{
	Name:       "grace hopper",
	GPA:        gpa(3.8),
	StudyStyle: "Visual",
	Timezone:   "UTC",
	LocalStart: "14:00",
	LocalEnd:   "18:00",
	Days:       []string{"Mon", "Wed"},
	Subjects:   []string{"Math"},
}

// subject tutor: 12:00-16:00 UTC on Fri, shares both subjects.
var subjectTutorReg = model.Registration{
	Name:       "alan turing",
	GPA:        gpa(3.9),
	StudyStyle: "Auditory",
	Timezone:   "UTC+1",
	StudyTimes: timeconv.Afternoons,
	Days:       []string{"Fri"},
	Subjects:   []string{"Math", "Physics"},
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should expose the default configuration", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["matchLimit"], ShouldEqual, 3)
			So(stats["dayThreshold"], ShouldEqual, 2)
			So(stats["timeThreshold"], ShouldEqual, 60)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithMatchLimit(5),
			service.WithDayThreshold(1),
			service.WithTimeThreshold(30),
			service.WithGPATolerance(0.5),
			service.WithMatchWorkers(2),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["matchLimit"], ShouldEqual, 5)
			So(stats["dayThreshold"], ShouldEqual, 1)
			So(stats["timeThreshold"], ShouldEqual, 30)
			So(stats["gpaTolerance"], ShouldEqual, 0.5)
			So(stats["matchWorkers"], ShouldEqual, 2)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it should be marked as started with pool stats", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalStudents"], ShouldEqual, 0)
			})

			Convey("And stopping it should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_RegisterAndAccount(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithIDGenerator(sequentialIDs()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When registering a learner", func() {
			id, err := svc.Register(ctx, learnerReg)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "s-1")

			Convey("Then the account shows local and UTC windows", func() {
				acct, err := svc.Account(ctx, id)
				So(err, ShouldBeNil)
				So(acct.Name, ShouldEqual, "Ada Lovelace")
				So(acct.Role, ShouldEqual, "learner")
				So(acct.Timezone, ShouldEqual, "UTC-5")
				So(acct.LocalStart, ShouldEqual, "08:00")
				So(acct.LocalEnd, ShouldEqual, "12:00")
				So(acct.UTCStart, ShouldEqual, "13:00")
				So(acct.UTCEnd, ShouldEqual, "17:00")
				So(acct.UTCDays, ShouldResemble, []string{"Mon", "Wed"})
			})

			Convey("And the stats count it", func() {
				stats := svc.GetStats()
				So(stats["totalStudents"], ShouldEqual, 1)
				So(stats["learners"], ShouldEqual, 1)
				So(stats["tutors"], ShouldEqual, 0)
			})
		})

		Convey("When registering with a bad timezone", func() {
			bad := learnerReg
			bad.Timezone = "EST"
			_, err := svc.Register(ctx, bad)

			Convey("Then a format error is returned and nothing is stored", func() {
				So(errors.Is(err, timeconv.ErrFormat), ShouldBeTrue)
				So(svc.GetStats()["totalStudents"], ShouldEqual, 0)
			})
		})

		Convey("When asking for an unknown account", func() {
			_, err := svc.Account(ctx, "nobody")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Matching(t *testing.T) {
	Convey("Given a learner and two tutors", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithIDGenerator(sequentialIDs()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		learnerID, err := svc.Register(ctx, learnerReg)
		So(err, ShouldBeNil)
		nearID, err := svc.Register(ctx, nearTutorReg)
		So(err, ShouldBeNil)
		subjectID, err := svc.Register(ctx, subjectTutorReg)
		So(err, ShouldBeNil)

		Convey("Default matching ranks the close tutor first", func() {
			list, err := svc.DefaultMatch(ctx, learnerID)
			So(err, ShouldBeNil)
			So(list.Mode, ShouldEqual, "default")
			So(list.LearnerID, ShouldEqual, learnerID)
			So(len(list.Matches), ShouldEqual, 2)

			first := list.Matches[0]
			So(first.CandidateID, ShouldEqual, nearID)
			So(first.SubjectOverlap, ShouldEqual, 1)
			So(first.DayOverlap, ShouldEqual, 2)
			So(*first.TimeOverlapMinutes, ShouldEqual, 180)
			So(first.StyleMatch, ShouldBeTrue)
			So(first.TotalScore, ShouldEqual, 5)

			second := list.Matches[1]
			So(second.CandidateID, ShouldEqual, subjectID)
			So(second.TotalScore, ShouldEqual, 3)
		})

		Convey("Custom matching only scores the chosen criteria", func() {
			prefs := matching.PreferencesFromList([]string{"subjects"})
			list, err := svc.CustomMatch(ctx, learnerID, prefs)
			So(err, ShouldBeNil)
			So(list.Mode, ShouldEqual, "custom")
			So(list.Matches[0].CandidateID, ShouldEqual, subjectID)
			So(list.Matches[0].TotalScore, ShouldEqual, 2)
			So(list.Matches[0].TimeOverlapMinutes, ShouldBeNil)
		})

		Convey("Custom matching rejects tutors as requesters", func() {
			_, err := svc.CustomMatch(ctx, nearID, matching.AllPreferences())
			So(errors.Is(err, matching.ErrInvalidRole), ShouldBeTrue)
		})

		Convey("Default matching gives tutors an empty list", func() {
			list, err := svc.DefaultMatch(ctx, nearID)
			So(err, ShouldBeNil)
			So(list.Matches, ShouldBeEmpty)
		})

		Convey("Unknown learners are not found", func() {
			_, err := svc.DefaultMatch(ctx, "ghost")
			So(errors.Is(err, matching.ErrNotFound), ShouldBeTrue)
		})

		Convey("All custom matches cover every learner", func() {
			prefs := matching.PreferencesFromList([]string{"subjects", "days", "time"})
			all, err := svc.AllCustomMatches(ctx, prefs)
			So(err, ShouldBeNil)
			So(all.Preferences, ShouldResemble, []string{"subjects", "days", "time"})
			So(len(all.Matches), ShouldEqual, 2)
			So(all.Matches[0].LearnerID, ShouldEqual, learnerID)
			So(all.Matches[0].CandidateID, ShouldEqual, nearID)
			So(all.Matches[0].TotalScore, ShouldEqual, 3)
		})

		Convey("A cancelled context stops the request", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.DefaultMatch(cctx, learnerID)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

// late tutor: 20:00-21:00 UTC on Mon only, no time shared with the learner.
var lateTutorReg = model.Registration{
	Name:       "katherine johnson",
	GPA:        gpa(3.7),
	StudyStyle: "Visual",
	Timezone:   "UTC",
	LocalStart: "20:00",
	LocalEnd:   "21:00",
	Days:       []string{"Mon"},
	Subjects:   []string{"Chemistry"},
}

func TestService_ZeroThresholds(t *testing.T) {
	register := func(ctx context.Context, svc *service.Service) (string, string) {
		learnerID, err := svc.Register(ctx, learnerReg)
		So(err, ShouldBeNil)
		tutorID, err := svc.Register(ctx, lateTutorReg)
		So(err, ShouldBeNil)
		return learnerID, tutorID
	}

	Convey("Given a learner and a tutor sharing one UTC day and no time", t, func() {
		ctx := context.Background()
		days := matching.PreferencesFromList([]string{"days"})
		daysAndTime := matching.PreferencesFromList([]string{"days", "time"})

		Convey("With the default thresholds the days point is not earned", func() {
			svc := service.New(service.WithIDGenerator(sequentialIDs()))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			learnerID, _ := register(ctx, svc)

			list, err := svc.CustomMatch(ctx, learnerID, days)
			So(err, ShouldBeNil)
			So(list.Matches[0].DayOverlap, ShouldEqual, 1)
			So(list.Matches[0].TotalScore, ShouldEqual, 0)
		})

		Convey("A zero day threshold awards the days point", func() {
			svc := service.New(service.WithIDGenerator(sequentialIDs()), service.WithDayThreshold(0))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			learnerID, tutorID := register(ctx, svc)
			So(svc.GetStats()["dayThreshold"], ShouldEqual, 0)

			list, err := svc.CustomMatch(ctx, learnerID, days)
			So(err, ShouldBeNil)
			So(list.Matches[0].CandidateID, ShouldEqual, tutorID)
			So(list.Matches[0].DayOverlap, ShouldEqual, 1)
			So(list.Matches[0].TotalScore, ShouldEqual, 1)

			list, err = svc.CustomMatch(ctx, learnerID, daysAndTime)
			So(err, ShouldBeNil)
			So(*list.Matches[0].TimeOverlapMinutes, ShouldEqual, 0)
			So(list.Matches[0].TotalScore, ShouldEqual, 1)
		})

		Convey("Zero day and time thresholds award both points", func() {
			svc := service.New(
				service.WithIDGenerator(sequentialIDs()),
				service.WithDayThreshold(0),
				service.WithTimeThreshold(0),
			)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			learnerID, _ := register(ctx, svc)

			list, err := svc.CustomMatch(ctx, learnerID, daysAndTime)
			So(err, ShouldBeNil)
			So(*list.Matches[0].TimeOverlapMinutes, ShouldEqual, 0)
			So(list.Matches[0].TotalScore, ShouldEqual, 2)
		})
	})
}

func TestService_SQLiteStore(t *testing.T) {
	Convey("Given a service backed by sqlite", t, func() {
		ctx := context.Background()
		store, err := repository.OpenSQL(ctx, repository.DriverSQLite, t.TempDir()+"/svc.db", repository.WithMaxOpenConns(1))
		So(err, ShouldBeNil)
		svc := service.New(service.WithStore(store), service.WithIDGenerator(sequentialIDs()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		learnerID, err := svc.Register(ctx, learnerReg)
		So(err, ShouldBeNil)
		nearID, err := svc.Register(ctx, nearTutorReg)
		So(err, ShouldBeNil)

		Convey("Matches are computed from the persisted profiles", func() {
			list, err := svc.DefaultMatch(ctx, learnerID)
			So(err, ShouldBeNil)
			So(len(list.Matches), ShouldEqual, 1)
			So(list.Matches[0].CandidateID, ShouldEqual, nearID)
			So(list.Matches[0].TotalScore, ShouldEqual, 5)
		})
	})
}
