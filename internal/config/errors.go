package config

import "errors"

// ErrInvalidConfig wraps every Validate failure; ErrMissingDSN and
// ErrUnknownDriver narrow the store settings.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrMissingDSN    = errors.New("db_dsn is required")
	ErrUnknownDriver = errors.New("unknown db_driver")
)
