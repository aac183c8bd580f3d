package xapi

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a command is issued before Connect or
// after Disconnect.
var ErrNotConnected = errors.New("xapi: not connected")

// ConnError is a transport-level failure: dialing, reading or writing the
// socket. The session cannot be reused after one; the caller must rebuild it.
type ConnError struct {
	Op  string // "connect", "read", "write"
	Err error
}

func (e *ConnError) Error() string { return fmt.Sprintf("xapi: %s: %v", e.Op, e.Err) }
func (e *ConnError) Unwrap() error { return e.Err }

// BrokerError is a command the venue received and rejected. The connection
// is still healthy.
type BrokerError struct {
	Command string
	Code    string
	Descr   string
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("xapi: %s rejected by broker: %s %s", e.Command, e.Code, e.Descr)
}

// ShapeError is a response that arrived but does not carry the fields the
// caller needs. It usually means an API change, not a transient fault.
type ShapeError struct {
	Command string
	Err     error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("xapi: %s: malformed response: %v", e.Command, e.Err)
}
func (e *ShapeError) Unwrap() error { return e.Err }
