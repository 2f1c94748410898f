package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
)

// MsgType identifies what the payload of a frame carries.
type MsgType byte

const (
	// MsgTypeRequest is a serialized HTTP/1.1 request, ship → offshore.
	MsgTypeRequest MsgType = 0

	// MsgTypeResponse is a serialized HTTP/1.1 response (or a synthesized
	// error response), offshore → ship.
	MsgTypeResponse MsgType = 1
)

// HeaderSize is the fixed frame header size: 4 bytes length + 1 byte type.
const HeaderSize = 5

var (
	// ErrChannelClosed is returned when the peer closed the connection
	// before a complete frame could be read.
	ErrChannelClosed = errors.New("wire: channel closed by peer")

	// ErrUnknownType is returned when a frame carries a type other than
	// request or response. The frame payload has been fully consumed, so
	// the caller may skip the frame and keep reading.
	ErrUnknownType = errors.New("wire: unknown message type")

	// ErrFrameTooLarge is returned when a frame's declared length exceeds
	// the channel's payload limit. The payload has been drained from the
	// stream, so the caller may skip the frame and keep reading.
	ErrFrameTooLarge = errors.New("wire: frame exceeds payload limit")
)

// String returns a human-readable name for the message type.
func (t MsgType) String() string {
	switch t {
	case MsgTypeRequest:
		return "request"
	case MsgTypeResponse:
		return "response"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// Channel frames and deframes messages over a raw byte stream. It is the
// only place header encoding lives; both sides of the link use it.
//
// A Channel is owned by exactly one reader and one writer at a time. The
// write path is additionally guarded by a mutex so that a stray concurrent
// writer cannot interleave two frames and corrupt the stream.
type Channel struct {
	rw         io.ReadWriter
	writeMu    sync.Mutex
	maxPayload uint32
}

// NewChannel creates a Channel over rw with no payload limit beyond the
// 32-bit length field.
func NewChannel(rw io.ReadWriter) *Channel {
	return &Channel{rw: rw}
}

// NewBoundedChannel creates a Channel that rejects inbound frames whose
// declared payload exceeds maxPayload bytes. Oversized frames are drained
// and reported as ErrFrameTooLarge so the stream stays decodable.
func NewBoundedChannel(rw io.ReadWriter, maxPayload uint32) *Channel {
	return &Channel{rw: rw, maxPayload: maxPayload}
}

// WriteMessage writes one complete frame. The header and payload are
// written back to back under the channel's write lock, so a frame is never
// interleaved with another writer on the same channel.
func (c *Channel) WriteMessage(t MsgType, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("wire: payload of %d bytes exceeds frame length field", len(payload))
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	header[4] = byte(t)

	if _, err := c.rw.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := c.rw.Write(payload); err != nil {
			return fmt.Errorf("wire: write frame payload: %w", err)
		}
	}
	return nil
}

// ReadMessage blocks until one complete frame has been read and returns its
// type and payload. A clean close before the first header byte, or a close
// mid-frame, is reported as ErrChannelClosed; a short read is never
// silently returned as a short message.
func (c *Channel) ReadMessage() (MsgType, []byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(c.rw, header[:]); err != nil {
		return 0, nil, closedErr("read frame header", err)
	}

	length := binary.BigEndian.Uint32(header[0:4])
	t := MsgType(header[4])

	if c.maxPayload > 0 && length > c.maxPayload {
		if _, err := io.CopyN(io.Discard, c.rw, int64(length)); err != nil {
			return 0, nil, closedErr("drain oversized frame", err)
		}
		return t, nil, fmt.Errorf("wire: %d byte frame over %d byte limit: %w",
			length, c.maxPayload, ErrFrameTooLarge)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(c.rw, payload); err != nil {
			return 0, nil, closedErr("read frame payload", err)
		}
	}

	if t != MsgTypeRequest && t != MsgTypeResponse {
		return t, payload, fmt.Errorf("wire: type %d: %w", byte(t), ErrUnknownType)
	}
	return t, payload, nil
}

// closedErr maps read failures onto ErrChannelClosed where the peer went
// away, preserving the underlying error for logging.
func closedErr(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("wire: %s: %w", op, ErrChannelClosed)
	}
	return fmt.Errorf("wire: %s: %w", op, err)
}
