package remote

import (
	"errors"
	"fmt"
)

// RemoteError is returned for every failed request. StatusCode is zero when
// no response was received, in which case Err holds the transport error.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func statusError(code int, message string) *RemoteError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", code)
	}
	return &RemoteError{StatusCode: code, Message: message}
}

func transportError(err error) *RemoteError {
	return &RemoteError{Message: fmt.Sprintf("request failed: %v", err), Err: err}
}

// StatusCode extracts the HTTP status from err, or 0 if err is not a RemoteError.
func StatusCode(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
