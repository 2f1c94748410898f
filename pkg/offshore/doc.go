// Package offshore implements the remote side of the relay: a single-peer
// TCP acceptor that reads framed requests off the one upstream
// connection, executes each against the real destination server, and
// frames the response back.
//
// The frame loop is strictly sequential — one request is handled to
// completion before the next frame is read — which mirrors the ship
// side's single-in-flight invariant. Destination failures are converted
// into synthesized HTTP error responses; they never tear down the shared
// upstream connection.
package offshore
