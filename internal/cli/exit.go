package cli

import (
	"errors"
	"fmt"
)

// ExitError carries an explicit process exit code through cobra's error
// return path.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// exitErr creates an ExitError with a message.
func exitErr(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// exitWrap creates an ExitError that wraps an underlying cause.
func exitWrap(code int, msg string, cause error) error {
	if cause == nil {
		return exitErr(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

func normalize(code int) int {
	if code <= 0 {
		return 1
	}
	return code
}
