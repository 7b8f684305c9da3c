package lookup

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind is the user-facing category of a failed lookup.
type ErrorKind int

const (
	Unexpected ErrorKind = iota
	EmptyInput
	Timeout
	NotFound
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyInput:
		return "empty_input"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

const (
	msgEmptyInput = "Please enter a medicine name"
	msgTimeout    = "The medicine database took too long to respond, please try again later"
	msgUnexpected = "Error fetching medicine data"
)

// Error is a classified lookup failure. Message is safe to show to users;
// Err holds the underlying cause, if any, and is never rendered.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: NotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errEmptyInput() *Error {
	return &Error{Kind: EmptyInput, Message: msgEmptyInput}
}

func errNoData(name string) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("No data found for '%s'", name)}
}

func errNoResults(name string) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("No information available for '%s'", name)}
}

func errUnexpected(cause error) *Error {
	return &Error{Kind: Unexpected, Message: msgUnexpected, Err: cause}
}

// Classify maps any error raised during a lookup to an *Error.
// Errors that are already classified are returned unchanged; timeouts become
// Timeout and everything else becomes Unexpected with a generic message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var lookupErr *Error
	if errors.As(err, &lookupErr) {
		return lookupErr
	}

	if isTimeout(err) {
		return &Error{Kind: Timeout, Message: msgTimeout, Err: err}
	}

	return errUnexpected(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
