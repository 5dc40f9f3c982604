package vcs

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable reports that the backend binary is missing or a
	// query exited with a failure status.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrParse reports backend output that did not have the expected shape.
	ErrParse = errors.New("unexpected backend output")
)

type UnavailableError struct {
	Backend string
	Op      string
	Missing bool // binary not found or not executable
	Stderr  string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: %s not available: %v", e.Op, e.Backend, e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrBackendUnavailable }

type ParseError struct {
	Op     string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func parseErrorf(op, format string, args ...any) error {
	return &ParseError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// IsMissingBackend reports whether err was caused by the backend binary
// itself being unavailable, as opposed to a single failing query.
func IsMissingBackend(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue) && ue.Missing
}
