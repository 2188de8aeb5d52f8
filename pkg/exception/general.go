package exception

import "errors"

var (
	ErrNilInstance     = errors.New("nil instance")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfig wraps every config problem found before start, so
	// callers can tell a bad file from a runtime failure.
	ErrInvalidConfig = errors.New("invalid config")
)
