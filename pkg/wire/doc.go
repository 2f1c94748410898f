// Package wire implements the framed wire protocol spoken on the single
// persistent link between the ship and offshore sides.
//
// Every frame is a 5-byte header followed by the payload:
//
//	0        4     5
//	┌────────┬─────┬────────────────┐
//	│ length │type │   payload ...  │
//	│ uint32 │ u8  │  length bytes  │
//	└────────┴─────┴────────────────┘
//
// The length is big-endian and counts payload bytes only. Type 0 carries a
// serialized HTTP/1.1 request, type 1 a serialized HTTP/1.1 response. The
// receiver reads the header first, then exactly length payload bytes, which
// keeps frame boundaries intact across TCP segmentation.
//
// The shared link is a scarce singleton, so an unrecognized frame type is
// surfaced as a recoverable error with the frame boundary preserved; callers
// log and keep reading rather than closing the connection.
package wire
