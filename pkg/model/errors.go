package model

import "fmt"

// ErrorKind is the top-level error taxonomy shared by config loading, the
// irrd client, and the driver: InvalidConfig, Connect, Timeout, Protocol,
// ServerError, IO.
type ErrorKind string

const (
	KindInvalidConfig ErrorKind = "invalid_config"
	KindConnect       ErrorKind = "connect"
	KindTimeout       ErrorKind = "timeout"
	KindProtocol      ErrorKind = "protocol"
	KindServerError   ErrorKind = "server_error"
	KindIO            ErrorKind = "io"
)

// InvalidConfigError reports a malformed or inconsistent config file.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string { return "invalid config: " + e.Reason }

// ConnectError wraps a failure to establish the TCP session with the irrd
// server (all candidate addresses exhausted).
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
}
func (e *ConnectError) Unwrap() error { return e.Err }

// TimeoutError reports a read or write that exceeded the per-call deadline.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("%s timed out: %v", e.Op, e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }

// ProtocolError reports a reply the client could not make sense of: a bad
// status byte, a malformed length prefix, a short read, or a family
// mismatch between a query and its reply.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "protocol error: " + e.Reason }

// ServerError wraps an explicit 'F' (failure) reply from the irrd server,
// and the 'E' (multiple copies) reply, which the server also reports as a
// query-level failure rather than a transport problem.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return "server error: " + e.Message }

// ErrMultipleCopies is the distinguished ServerError raised for the 'E'
// status: "There are multiple copies of the key in one database".
func ErrMultipleCopies() error {
	return &ServerError{Message: "multiple copies of the key in one database"}
}

// IOError wraps an unclassified I/O failure (closed socket, filesystem
// error during output write, etc).
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// InvalidFilterError reports a filter name that classifies to neither an
// AS-set, a route-set, nor a bare AS number.
type InvalidFilterError struct {
	Name string
}

func (e *InvalidFilterError) Error() string { return "invalid filter name: " + e.Name }
