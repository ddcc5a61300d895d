package motoripc

import (
	"errors"
	"fmt"
	"time"
)

type unrecoverableError struct {
	error
}

func (e unrecoverableError) Error() string {
	if e.error == nil {
		return "unrecoverable error"
	}
	return e.error.Error()
}

func (e unrecoverableError) Unwrap() error {
	return e.error
}

// Unrecoverable wraps an error in `unrecoverableError` struct
func Unrecoverable(err error) error {
	return unrecoverableError{err}
}

// IsRecoverable checks if error is an instance of `unrecoverableError`
func IsRecoverable(err error) bool {
	if _, ok := err.(unrecoverableError); ok {
		return false
	}
	return true
}

var (
	ErrNilTransport        = errors.New("transport is nil")
	ErrTransportClosed     = errors.New("transport closed")
	ErrRequestChannelFull  = errors.New("request channel full")
	ErrResponseChannelFull = errors.New("response channel full")
)

// ProtocolError is a violation of the daemon's wire protocol: a
// truncated frame, a bad length echo or a mismatched opcode echo.
type ProtocolError struct {
	Op     string
	Reason string
	Got    int
	Want   int
}

func (e *ProtocolError) Error() string {
	if e.Want != 0 {
		return fmt.Sprintf("%s: %s (%d of %d bytes)", e.Op, e.Reason, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ConnectError is a failure to establish the connection once the socket
// path exists. Fatal, never retried.
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("error connecting to motors process at %s - %v", e.Path, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timeout (%s)", e.Op, e.Timeout)
}
