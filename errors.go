package prioritydb

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors returned by DB
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidConfiguration is returned by Open for a non-positive max size
	KindInvalidConfiguration
	// KindStorageUnavailable is returned by Open when the location cannot be opened
	KindStorageUnavailable
	// KindNotFound is returned by Lookup for an untracked hash
	KindNotFound
	// KindStorageFailure wraps an unexpected error from the backing store
	KindStorageFailure
	KindInvalidArgument
	KindClosed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "InvalidConfiguration"
	case KindStorageUnavailable:
		return "StorageUnavailable"
	case KindNotFound:
		return "NotFound"
	case KindStorageFailure:
		return "StorageFailure"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindClosed:
		return "Closed"
	}
	return "Unknown"
}

// Error carries a kind, a message callers may compare against, and the cause if any.
// errors.Is matches an error against the sentinel it was built from,
// use KindOf to branch on the kind alone.
type Error struct {
	Kind     ErrorKind
	msg      string
	cause    error
	sentinel *Error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.origin() == e.origin()
}

func (e *Error) origin() *Error {
	if e.sentinel != nil {
		return e.sentinel
	}
	return e
}

var (
	ErrInvalidConfiguration = newError(KindInvalidConfiguration, "Must specify a nonzero max_size")
	ErrStorageUnavailable   = newError(KindStorageUnavailable, "unable to open database file")
	ErrLocationInUse        = newError(KindStorageUnavailable, "database file is locked by another owner")
	ErrNotFound             = newError(KindNotFound, "no record for hash")
	ErrStorageFailure       = newError(KindStorageFailure, "storage failure")
	ErrNegativeSize         = newError(KindInvalidArgument, "size must not be negative")
	ErrClosed               = newError(KindClosed, "database is closed")
)

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// wrap attaches cause to a copy of sentinel, keeping its message
func wrap(sentinel *Error, cause error) error {
	return &Error{Kind: sentinel.Kind, msg: sentinel.msg, cause: cause, sentinel: sentinel.origin()}
}

// storageFailure converts an error from the lower layers
func storageFailure(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{
		Kind:     KindStorageFailure,
		msg:      fmt.Sprintf("%s: %s: %v", ErrStorageFailure.msg, op, cause),
		cause:    cause,
		sentinel: ErrStorageFailure,
	}
}

// KindOf returns the kind of err, KindUnknown if it did not come from this package
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
