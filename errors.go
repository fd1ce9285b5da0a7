package sessionstore

import (
	"errors"
	"fmt"
)

// Configuration errors are returned by New and abort store creation.
var (
	// ErrNativeAutoRemove is returned when database-level expiration is requested.
	ErrNativeAutoRemove = errors.New("sessionstore: native auto-remove is not supported, use interval or none")

	// ErrMissingConnection is returned when neither a collection nor connections are configured.
	ErrMissingConnection = errors.New("sessionstore: a collection or adapter connections are required")

	// ErrUnsupportedHash is returned for unknown identifier hash algorithms.
	ErrUnsupportedHash = errors.New("sessionstore: unsupported hash algorithm")

	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("sessionstore: invalid option")
)

// Operation errors.
var (
	// ErrNotConnected is returned by every operation once backend initialization failed.
	ErrNotConnected = errors.New("sessionstore: not connected")

	// ErrClosed is returned by operations issued after Close.
	ErrClosed = errors.New("sessionstore: store closed")

	// ErrEncode is returned by Set when the session cannot be serialized.
	ErrEncode = errors.New("sessionstore: failed to encode session")

	// ErrDecode is returned by Get when the stored payload cannot be deserialized.
	ErrDecode = errors.New("sessionstore: failed to decode session")

	// ErrNotFound is returned by Touch when no session exists for the id.
	ErrNotFound = errors.New("sessionstore: session not found")
)

func invalidOption(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOption, msg)
}
