// Package ship implements the local side of the relay: a plain HTTP proxy
// listener whose per-connection handlers funnel every client request into
// the shared correlation queue, then block until the upstream pump
// completes the round trip.
//
// The dispatcher never reinterprets the relayed response; whatever bytes
// the offshore executor produced are written back to the client socket
// verbatim via a hijacked connection.
package ship
