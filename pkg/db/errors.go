package db

import "errors"

var (
	ErrEmptyConnectionString    = errors.New("db: empty connection string")
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrShutdownTimeout          = errors.New("db: pool did not close in time")
	ErrInvalidTableName         = errors.New("db migrator: invalid table name")
	ErrCreateMigrator           = errors.New("db migrator: failed to create migration provider")
	ErrApplyMigrations          = errors.New("db migrator: failed to apply migrations")
)
