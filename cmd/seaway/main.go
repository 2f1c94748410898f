// Seaway relays HTTP(S) traffic from an environment with a single
// permitted outbound connection — the ship — through one persistent TCP
// link to an offshore executor that performs the real requests.
//
// It multiplexes many concurrent client requests onto that one link with
// a length-and-type framed protocol, preserving strict FIFO correlation
// between requests and responses.
//
// Usage:
//
//	# Start the local (ship) proxy
//	seaway ship --config config.yaml
//
//	# Start the remote (offshore) executor
//	seaway offshore --config config.yaml
//
//	# Validate a configuration file
//	seaway validate --config config.yaml
//
//	# Show version information
//	seaway version
package main

func main() {
	Execute()
}
