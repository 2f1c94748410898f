// Package relay contains the multiplexing core of the ship side: the
// correlation queue that orders client requests, the pending-request
// completion contract, and the upstream pump that owns the single
// persistent connection to the offshore executor.
//
// Many dispatcher goroutines enqueue concurrently; exactly one pump drains
// the queue. The queue's FIFO order is the only ordering authority in the
// system, and the pump never has more than one exchange in flight on the
// upstream link. Those two invariants are what make request/response
// correlation over a single shared byte stream correct without sequence
// numbers.
package relay
