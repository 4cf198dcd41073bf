// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Errors returned from Load wrap this package's sentinels.
package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

// Storage drivers understood by the repository layer.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver selects the profile store: memory, sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is passed to the gorm driver. Ignored for memory.
	DBDSN string `koanf:"db_dsn"`

	// MatchLimit caps the number of matches returned per learner.
	MatchLimit int `koanf:"match_limit"`

	// DayThreshold is the minimum number of shared UTC days for the days point.
	DayThreshold int `koanf:"day_threshold"`

	// TimeThresholdMinutes is the minimum window overlap for the time point.
	TimeThresholdMinutes int `koanf:"time_threshold_minutes"`

	// GPATolerance relaxes the GPA equality check; 0 means exact.
	GPATolerance float64 `koanf:"gpa_tolerance"`

	// MatchWorkers bounds the fan-out when matching every learner.
	MatchWorkers int `koanf:"match_workers"`

	// MetricsNamespace and MetricsSubsystem prefix every exported series.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
}

// metricName matches a Prometheus name fragment.
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DBDriver:             DriverMemory,
		DBDSN:                "",
		MatchLimit:           3,
		DayThreshold:         2,
		TimeThresholdMinutes: 60,
		GPATolerance:         0,
		MatchWorkers:         runtime.NumCPU(),
		MetricsNamespace:     "studybuddy",
		MetricsSubsystem:     "matching",
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MatchLimit <= 0:
		return fmt.Errorf("%w: match_limit must be positive, got %d", ErrInvalidConfig, c.MatchLimit)
	case c.DayThreshold < 0:
		return fmt.Errorf("%w: day_threshold must not be negative", ErrInvalidConfig)
	case c.TimeThresholdMinutes < 0:
		return fmt.Errorf("%w: time_threshold_minutes must not be negative", ErrInvalidConfig)
	case c.GPATolerance < 0:
		return fmt.Errorf("%w: gpa_tolerance must not be negative", ErrInvalidConfig)
	case c.MatchWorkers <= 0:
		return fmt.Errorf("%w: match_workers must be positive", ErrInvalidConfig)
	case !metricName.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	case !metricName.MatchString(c.MetricsSubsystem):
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}

	switch c.DBDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("%w: %w for %s", ErrInvalidConfig, ErrMissingDSN, c.DBDriver)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownDriver, c.DBDriver)
	}
	return nil
}
