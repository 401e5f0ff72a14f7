package parser

import (
	"errors"
	"fmt"
)

// ErrNoData is reported when a response contained nothing matching the
// expected shape for its command. Callers surface it as a warning, not a
// crash.
var ErrNoData = errors.New("no data found")

// ParseError describes a malformed or empty device response. It is always
// returned as a value, never panicked, so accumulated state survives a bad
// poll.
type ParseError struct {
	Command Command
	Reason  string
	cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

func newNoData(cmd Command) *ParseError {
	return &ParseError{Command: cmd, Reason: "no data found", cause: ErrNoData}
}

func newParseError(cmd Command, format string, args ...any) *ParseError {
	return &ParseError{Command: cmd, Reason: fmt.Sprintf(format, args...)}
}
