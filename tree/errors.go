package tree

import "github.com/pkg/errors"

// Kind classifies a *Error into one of the core's small error surface.
type Kind int

const (
	// InvalidInput covers bad caller arguments: an absent target class
	// when extracting conditions, predicting before a fit, or a row-count
	// mismatch between X_bin and X_cont.
	InvalidInput Kind = iota
	// ConfigError covers an unknown criterion, split-choice, or
	// pred-choice enum value.
	ConfigError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case ConfigError:
		return "config error"
	default:
		return "error"
	}
}

// Error is the core's error type: a kind plus a causal chain built with
// github.com/pkg/errors, so callers can both switch on Kind and walk the
// wrapped cause with errors.Cause/errors.Unwrap.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Kind.String() + ": " + e.msg + ": " + e.err.Error()
	}
	return e.Kind.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.err }

func invalidInputf(format string, args ...interface{}) error {
	return &Error{Kind: InvalidInput, msg: errors.Errorf(format, args...).Error()}
}

func configErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ConfigError, msg: errors.Errorf(format, args...).Error()}
}

func wrapInvalidInput(err error, msg string) error {
	return &Error{Kind: InvalidInput, msg: msg, err: errors.WithStack(err)}
}
