package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/internal/domain/timeconv"
	"github.com/okian/studybuddy/pkg/metrics"
)

// studentRow holds the scalar fields. Times are stored in UTC as HH:MM.
type studentRow struct {
	StudentID       string `gorm:"primaryKey;size:64"`
	StudentName     string
	PersonalityType *string
	StudyStyle      string
	UTCOffset       int
	ExperienceLevel string
	GPA             *float64 `gorm:"column:gpa"`
	UTCStartTime    string   `gorm:"size:5"`
	UTCEndTime      string   `gorm:"size:5"`
}

func (studentRow) TableName() string { return "students" }

type subjectRow struct {
	SubjectID   uint   `gorm:"primaryKey;autoIncrement"`
	SubjectName string `gorm:"uniqueIndex;not null"`
}

func (subjectRow) TableName() string { return "subjects" }

type studentSubjectRow struct {
	StudentID string `gorm:"primaryKey;size:64"`
	SubjectID uint   `gorm:"primaryKey"`
}

func (studentSubjectRow) TableName() string { return "student_subjects" }

type studyDayRow struct {
	StudentID string `gorm:"primaryKey;size:64"`
	Day       string `gorm:"primaryKey;size:3"`
}

func (studyDayRow) TableName() string { return "study_days" }

type utcStudyDayRow struct {
	StudentID string `gorm:"primaryKey;size:64"`
	Day       string `gorm:"primaryKey;size:3"`
}

func (utcStudyDayRow) TableName() string { return "utc_study_days" }

// SQLStore persists profiles through gorm on sqlite or postgres.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL connects to driver and migrates the schema unless disabled.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	o := defaultSQLOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: o.logger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if o.maxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(o.maxOpenConns)
	}

	s := &SQLStore{db: db}
	if o.autoMigrate {
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSQLStore wraps an existing connection. The schema must already exist.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates or updates the five profile tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&studentRow{},
		&subjectRow{},
		&studentSubjectRow{},
		&studyDayRow{},
		&utcStudyDayRow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadProfiles implements Store. Profiles are ordered by student id.
func (s *SQLStore) LoadProfiles(ctx context.Context) (*model.Pool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("load", msSince(start)) }()

	db := s.db.WithContext(ctx)
	var rows []studentRow
	if err := db.Order("student_id").Find(&rows).Error; err != nil {
		metrics.RecordErrorByComponent("repository", "load")
		return nil, fmt.Errorf("load students: %w", err)
	}

	profiles, err := hydrate(db, rows, nil)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "load")
		return nil, err
	}
	return model.NewPool(profiles...)
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id string) (model.StudentProfile, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("get", msSince(start)) }()

	db := s.db.WithContext(ctx)
	var row studentRow
	if err := db.Where("student_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.StudentProfile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return model.StudentProfile{}, fmt.Errorf("get student %s: %w", id, err)
	}

	profiles, err := hydrate(db, []studentRow{row}, []string{id})
	if err != nil {
		return model.StudentProfile{}, err
	}
	return profiles[0], nil
}

// Save implements Store. The student row is upserted and its subject and day
// rows are replaced in one transaction.
func (s *SQLStore) Save(ctx context.Context, profile model.StudentProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("save", msSince(start)) }()

	row := studentRow{
		StudentID:       profile.ID,
		StudentName:     profile.Name,
		PersonalityType: profile.Personality,
		StudyStyle:      profile.StudyStyle,
		UTCOffset:       profile.UTCOffset,
		ExperienceLevel: profile.ExperienceLevel,
		GPA:             profile.GPA,
		UTCStartTime:    profile.Start.String(),
		UTCEndTime:      profile.End.String(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert student: %w", err)
		}

		for _, child := range []interface{}{&studentSubjectRow{}, &studyDayRow{}, &utcStudyDayRow{}} {
			if err := tx.Where("student_id = ?", profile.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("clear child rows: %w", err)
			}
		}

		links := make([]studentSubjectRow, 0, profile.Subjects.Len())
		for _, name := range profile.Subjects.Sorted() {
			subject := subjectRow{SubjectName: name}
			if err := tx.Where(subjectRow{SubjectName: name}).FirstOrCreate(&subject).Error; err != nil {
				return fmt.Errorf("subject %q: %w", name, err)
			}
			links = append(links, studentSubjectRow{StudentID: profile.ID, SubjectID: subject.SubjectID})
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("link subjects: %w", err)
			}
		}

		if local := profile.LocalDays.Tokens(); len(local) > 0 {
			dayRows := make([]studyDayRow, len(local))
			for i, d := range local {
				dayRows[i] = studyDayRow{StudentID: profile.ID, Day: d}
			}
			if err := tx.Create(&dayRows).Error; err != nil {
				return fmt.Errorf("local days: %w", err)
			}
		}

		if utc := profile.Days.Tokens(); len(utc) > 0 {
			dayRows := make([]utcStudyDayRow, len(utc))
			for i, d := range utc {
				dayRows[i] = utcStudyDayRow{StudentID: profile.ID, Day: d}
			}
			if err := tx.Create(&dayRows).Error; err != nil {
				return fmt.Errorf("utc days: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", "save")
		return err
	}
	return nil
}

// Count implements Store. Database errors count as zero.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int64
	if err := s.db.WithContext(ctx).Model(&studentRow{}).Count(&n).Error; err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return 0
	}
	return int(n)
}

type subjectLink struct {
	StudentID   string
	SubjectName string
}

// hydrate joins child rows onto rows. A nil ids slice loads children for every
// student.
func hydrate(db *gorm.DB, rows []studentRow, ids []string) ([]model.StudentProfile, error) {
	scope := func(q *gorm.DB, column string) *gorm.DB {
		if ids == nil {
			return q
		}
		return q.Where(column+" IN ?", ids)
	}

	var links []subjectLink
	q := db.Table("student_subjects").
		Select("student_subjects.student_id, subjects.subject_name").
		Joins("JOIN subjects ON subjects.subject_id = student_subjects.subject_id")
	if err := scope(q, "student_subjects.student_id").Scan(&links).Error; err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}

	var local []studyDayRow
	if err := scope(db, "student_id").Find(&local).Error; err != nil {
		return nil, fmt.Errorf("load study days: %w", err)
	}
	var utc []utcStudyDayRow
	if err := scope(db, "student_id").Find(&utc).Error; err != nil {
		return nil, fmt.Errorf("load utc study days: %w", err)
	}

	subjects := make(map[string][]string, len(rows))
	for _, l := range links {
		subjects[l.StudentID] = append(subjects[l.StudentID], l.SubjectName)
	}
	localDays := make(map[string][]string, len(rows))
	for _, d := range local {
		localDays[d.StudentID] = append(localDays[d.StudentID], d.Day)
	}
	utcDays := make(map[string][]string, len(rows))
	for _, d := range utc {
		utcDays[d.StudentID] = append(utcDays[d.StudentID], d.Day)
	}

	out := make([]model.StudentProfile, 0, len(rows))
	for _, r := range rows {
		p, err := r.profile(subjects[r.StudentID], localDays[r.StudentID], utcDays[r.StudentID])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r studentRow) profile(subjects, localDays, utcDays []string) (model.StudentProfile, error) {
	start, err := timeconv.ParseClock(r.UTCStartTime)
	if err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: %s start: %w", ErrCorruptRow, r.StudentID, err)
	}
	end, err := timeconv.ParseClock(r.UTCEndTime)
	if err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: %s end: %w", ErrCorruptRow, r.StudentID, err)
	}
	days, err := model.ParseDaySet(utcDays...)
	if err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: %s: %w", ErrCorruptRow, r.StudentID, err)
	}
	local, err := model.ParseDaySet(localDays...)
	if err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: %s: %w", ErrCorruptRow, r.StudentID, err)
	}

	return model.StudentProfile{
		ID:              r.StudentID,
		Name:            r.StudentName,
		Subjects:        model.NewStringSet(subjects...),
		Days:            days,
		LocalDays:       local,
		Start:           start,
		End:             end,
		StudyStyle:      r.StudyStyle,
		Personality:     r.PersonalityType,
		GPA:             r.GPA,
		ExperienceLevel: r.ExperienceLevel,
		UTCOffset:       r.UTCOffset,
	}, nil
}
