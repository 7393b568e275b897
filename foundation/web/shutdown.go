package web

import "errors"

// shutdownError is returned by a handler that detects an integrity issue
// severe enough that the process should stop accepting new work.
type shutdownError struct {
	Message string
}

// NewShutdownError wraps message as a shutdownError.
func NewShutdownError(message string) error {
	return &shutdownError{Message: message}
}

func (e *shutdownError) Error() string {
	return e.Message
}

// IsShutdown reports whether err is a shutdownError.
func IsShutdown(err error) bool {
	var se *shutdownError
	return errors.As(err, &se)
}
