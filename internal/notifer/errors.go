package notifer

import (
	"errors"
	"fmt"
)

// StatusNoResponse marks failures where no HTTP response was received.
const StatusNoResponse = -1

var (
	// ErrTransport classifies network, timeout and decode failures.
	ErrTransport = errors.New("notifer: transport failure")
	// ErrRejected classifies non-2xx responses.
	ErrRejected = errors.New("notifer: remote rejection")
)

// SendError describes a failed send. StatusCode is StatusNoResponse for
// transport failures; Body holds the verbatim response text for rejections.
type SendError struct {
	StatusCode int
	Body       string

	kind  error
	cause error
}

func (e *SendError) Error() string {
	if e.kind == ErrRejected {
		return fmt.Sprintf("notifer API returned status %d: %s", e.StatusCode, e.Body)
	}
	if e.cause != nil {
		return "failed to send notification: " + e.cause.Error()
	}
	return "failed to send notification"
}

// Unwrap exposes both the classification sentinel and the underlying cause.
func (e *SendError) Unwrap() []error {
	errs := []error{e.kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func transportError(cause error) *SendError {
	return &SendError{StatusCode: StatusNoResponse, kind: ErrTransport, cause: cause}
}

func rejectedError(status int, body string) *SendError {
	return &SendError{StatusCode: status, Body: body, kind: ErrRejected}
}

// StatusCode extracts the status carried by a send failure, or
// StatusNoResponse when err is not a *SendError.
func StatusCode(err error) int {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.StatusCode
	}
	return StatusNoResponse
}
