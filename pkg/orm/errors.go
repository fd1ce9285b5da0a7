package orm

import "errors"

var (
	ErrUnknownConnection  = errors.New("orm: unknown connection")
	ErrUnknownAdapter     = errors.New("orm: unknown adapter")
	ErrInvalidConnections = errors.New("orm: invalid connection descriptors")
	ErrDefineFailed       = errors.New("orm: failed to define collection")
	ErrMissingSID         = errors.New("orm: record sid is required")
	ErrDuplicateSID       = errors.New("orm: record sid already exists")
)
