package repository

import (
	gormLogger "gorm.io/gorm/logger"
)

// Option configures an SQLStore.
type Option func(*sqlOptions)

type sqlOptions struct {
	logger       gormLogger.Interface
	maxOpenConns int
	autoMigrate  bool
}

func defaultSQLOptions() sqlOptions {
	return sqlOptions{
		logger:      gormLogger.Default.LogMode(gormLogger.Silent),
		autoMigrate: true,
	}
}

// WithGormLogger replaces the silent gorm logger.
func WithGormLogger(l gormLogger.Interface) Option {
	return func(o *sqlOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxOpenConns caps the connection pool. Zero leaves the driver default.
func WithMaxOpenConns(n int) Option {
	return func(o *sqlOptions) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithAutoMigrate toggles schema migration on open.
func WithAutoMigrate(enabled bool) Option {
	return func(o *sqlOptions) {
		o.autoMigrate = enabled
	}
}
