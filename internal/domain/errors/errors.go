// Package errors defines the error variants that request handling code returns
// and the API error middleware translates into response envelopes.
package errors

import (
	"fmt"
	"io"
	"runtime"

	"sba/internal/errors"
)

const maxStackDepth = 32

// BusinessError signals that a request violates a domain rule. It carries no
// HTTP semantics; the status code is chosen by the error middleware.
type BusinessError struct {
	message            string
	cause              error
	suppressionEnabled bool
	suppressed         []error
	stack              errors.StackTrace
}

// NewBusinessError creates a business error with the given message.
func NewBusinessError(message string) *BusinessError {
	return newBusinessError(message, nil, true, true)
}

// BusinessErrorFrom creates a business error whose message is the text of cause.
func BusinessErrorFrom(cause error) *BusinessError {
	var message string
	if cause != nil {
		message = cause.Error()
	}

	return newBusinessError(message, cause, true, true)
}

// WrapBusinessError creates a business error with a message and an underlying cause.
func WrapBusinessError(cause error, message string) *BusinessError {
	return newBusinessError(message, cause, true, true)
}

// NewBusinessErrorWithOptions creates a business error controlling whether
// secondary errors can be attached with Suppress and whether the origin stack
// trace is recorded.
func NewBusinessErrorWithOptions(message string, cause error, enableSuppression, writableStackTrace bool) *BusinessError {
	return newBusinessError(message, cause, enableSuppression, writableStackTrace)
}

func newBusinessError(message string, cause error, enableSuppression, writableStackTrace bool) *BusinessError {
	e := &BusinessError{
		message:            message,
		cause:              cause,
		suppressionEnabled: enableSuppression,
	}
	if writableStackTrace {
		// skip runtime.Callers, captureStack, newBusinessError and the exported constructor
		e.stack = captureStack(4)
	}

	return e
}

// Error implements the error interface
func (e *BusinessError) Error() string {
	return e.message
}

// Message returns the message given at construction, possibly empty.
func (e *BusinessError) Message() string {
	return e.message
}

// Unwrap returns the cause, if any.
func (e *BusinessError) Unwrap() error {
	return e.cause
}

// Suppress records err as a secondary failure that happened while handling e.
// It is a no-op when suppression was disabled at construction.
func (e *BusinessError) Suppress(err error) {
	if !e.suppressionEnabled || err == nil || err == error(e) {
		return
	}
	e.suppressed = append(e.suppressed, err)
}

// Suppressed returns the secondary failures recorded with Suppress.
func (e *BusinessError) Suppressed() []error {
	if len(e.suppressed) == 0 {
		return nil
	}

	out := make([]error, len(e.suppressed))
	copy(out, e.suppressed)

	return out
}

// StackTrace returns the origin stack trace, or nil when it was not recorded.
func (e *BusinessError) StackTrace() errors.StackTrace {
	return e.stack
}

// Format supports %s, %q and %v; %+v also prints the origin trace, the cause
// chain and any suppressed errors.
func (e *BusinessError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, e.message)
			e.stack.Format(s, verb)
			if e.cause != nil {
				_, _ = fmt.Fprintf(s, "\ncaused by: %+v", e.cause)
			}
			for _, err := range e.suppressed {
				_, _ = fmt.Fprintf(s, "\nsuppressed: %v", err)
			}

			return
		}

		_, _ = io.WriteString(s, e.message)
	case 's':
		_, _ = io.WriteString(s, e.message)
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.message)
	}
}

func captureStack(skip int) errors.StackTrace {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])

	stack := make(errors.StackTrace, n)
	for i := 0; i < n; i++ {
		stack[i] = errors.Frame(pcs[i])
	}

	return stack
}
