package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/studybuddy/internal/domain/model"
)

// CSV column names of the student export.
const (
	ColStudentID       = "student_id"
	ColStudentName     = "student_name"
	ColPersonalityType = "personality_type"
	ColStudyStyle      = "study_style"
	ColTimezone        = "timezone"
	ColExperienceLevel = "experience_level"
	ColGPA             = "GPA"
	ColStudyTimes      = "study_times"
	ColDays            = "days_of_wk_avail"
	ColSubjects        = "preferred_subjects"
)

var requiredColumns = []string{
	ColStudentID, ColStudentName, ColStudyStyle, ColTimezone,
	ColStudyTimes, ColDays, ColSubjects,
}

// Record is one parsed CSV row.
type Record struct {
	Line         int
	StudentID    string
	Registration model.Registration
}

// RowError reports a row that could not be parsed or stored.
type RowError struct {
	Line      int
	StudentID string
	Err       error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.StudentID, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Reader yields Records from a student CSV export. Columns are located by
// header name so their order does not matter.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	line    int
}

// NewReader reads the header row and checks the required columns.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return &Reader{csv: cr, columns: columns}, nil
}

// Next returns the next record, io.EOF at the end, or a RowError for a
// malformed row. Reading may continue after a RowError.
func (r *Reader) Next() (Record, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return Record{}, RowError{Line: perr.StartLine, Err: fmt.Errorf("%w: %w", ErrRow, err)}
		}
		return Record{}, err
	}
	r.line, _ = r.csv.FieldPos(0)

	rec := Record{Line: r.line, StudentID: r.field(fields, ColStudentID)}
	if rec.StudentID == "" {
		return Record{}, RowError{Line: r.line, Err: fmt.Errorf("%w: empty student_id", ErrRow)}
	}

	reg := model.Registration{
		Name:            r.field(fields, ColStudentName),
		StudyStyle:      r.field(fields, ColStudyStyle),
		Personality:     r.field(fields, ColPersonalityType),
		ExperienceLevel: r.field(fields, ColExperienceLevel),
		Timezone:        r.field(fields, ColTimezone),
		StudyTimes:      r.field(fields, ColStudyTimes),
		Days:            splitList(r.field(fields, ColDays)),
		Subjects:        splitList(r.field(fields, ColSubjects)),
	}
	if raw := r.field(fields, ColGPA); raw != "" {
		gpa, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Record{}, RowError{Line: r.line, StudentID: rec.StudentID, Err: fmt.Errorf("%w: GPA %q", ErrRow, raw)}
		}
		reg.GPA = &gpa
	}
	rec.Registration = reg
	return rec, nil
}

func (r *Reader) field(fields []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// splitList splits a multi-value cell such as "Mon, Wed".
func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
