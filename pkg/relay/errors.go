package relay

import "fmt"

// ProtocolError reports a malformed or unexpected frame on the upstream
// link. It is always local to one exchange: the framing boundary is still
// intact, so the connection is kept and the next frame is awaited.
type ProtocolError struct {
	Expected string // frame kind the pump was waiting for
	Got      string // frame kind actually received
	Cause    error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol error [expected=%s, got=%s]: %v", e.Expected, e.Got, e.Cause)
	}
	return fmt.Sprintf("protocol error [expected=%s, got=%s]", e.Expected, e.Got)
}

// Unwrap returns the underlying cause error.
func (e *ProtocolError) Unwrap() error { return e.Cause }

// ConnectionError reports that the upstream connection is broken. Unlike
// every other error kind it is global: all queued and subsequently enqueued
// requests fail with it until a new connection exists, and this design does
// not reconnect.
type ConnectionError struct {
	Op    string // "dial", "send" or "receive"
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("upstream connection error [op=%s]: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConnectionError) Unwrap() error { return e.Cause }

// DestinationError reports a remote-side failure reaching the real target
// server. It never crosses the wire as a protocol failure: the offshore
// side converts it into a synthesized HTTP error response and frames that
// back like any other result.
type DestinationError struct {
	Address string // destination host:port, empty when resolution failed
	Op      string // "resolve", "dial", "send" or "receive"
	Cause   error
}

// Error implements the error interface.
func (e *DestinationError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("destination error [op=%s]: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("destination error [addr=%s, op=%s]: %v", e.Address, e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DestinationError) Unwrap() error { return e.Cause }

// TimeoutError reports that a dispatcher gave up waiting on its completion
// signal. It is surfaced to the client as a gateway timeout, distinct from
// an explicit error result.
type TimeoutError struct {
	Waited string // human-readable bound that elapsed
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for relayed response", e.Waited)
}
