package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// rwPair glues a separate reader and writer into an io.ReadWriter.
type rwPair struct {
	io.Reader
	io.Writer
}

func TestChannel_RoundTrip(t *testing.T) {
	sizes := []int{0, 1, 65536}

	for _, size := range sizes {
		payload := bytes.Repeat([]byte{0xA5}, size)

		var buf bytes.Buffer
		ch := NewChannel(&buf)

		if err := ch.WriteMessage(MsgTypeRequest, payload); err != nil {
			t.Fatalf("size %d: write: %v", size, err)
		}
		if buf.Len() != HeaderSize+size {
			t.Errorf("size %d: wrote %d bytes, want %d", size, buf.Len(), HeaderSize+size)
		}

		gotType, gotPayload, err := ch.ReadMessage()
		if err != nil {
			t.Fatalf("size %d: read: %v", size, err)
		}
		if gotType != MsgTypeRequest {
			t.Errorf("size %d: type = %v, want %v", size, gotType, MsgTypeRequest)
		}
		if !bytes.Equal(gotPayload, payload) {
			t.Errorf("size %d: payload does not round-trip", size)
		}
	}
}

func TestChannel_LengthMatchesPayload(t *testing.T) {
	var buf bytes.Buffer
	ch := NewChannel(&buf)

	payload := []byte("GET / HTTP/1.1\r\n\r\n")
	if err := ch.WriteMessage(MsgTypeRequest, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw := buf.Bytes()
	length := binary.BigEndian.Uint32(raw[0:4])
	if int(length) != len(payload) {
		t.Errorf("header length = %d, want %d", length, len(payload))
	}
	if raw[4] != byte(MsgTypeRequest) {
		t.Errorf("header type = %d, want %d", raw[4], MsgTypeRequest)
	}
}

func TestChannel_PeerClose(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty stream", nil},
		{"truncated header", []byte{0x00, 0x00}},
		{"truncated payload", func() []byte {
			var buf bytes.Buffer
			ch := NewChannel(&buf)
			if err := ch.WriteMessage(MsgTypeResponse, []byte("hello")); err != nil {
				t.Fatal(err)
			}
			return buf.Bytes()[:HeaderSize+2]
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewChannel(rwPair{Reader: bytes.NewReader(tt.raw), Writer: io.Discard})
			_, _, err := ch.ReadMessage()
			if !errors.Is(err, ErrChannelClosed) {
				t.Errorf("err = %v, want ErrChannelClosed", err)
			}
		})
	}
}

func TestChannel_UnknownTypeIsRecoverable(t *testing.T) {
	var buf bytes.Buffer

	// Frame with type 7, followed by a valid response frame.
	payload := []byte("junk")
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	header[4] = 7
	buf.Write(header)
	buf.Write(payload)

	ch := NewChannel(&buf)
	if err := ch.WriteMessage(MsgTypeResponse, []byte("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}

	gotType, gotPayload, err := ch.ReadMessage()
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if gotType != MsgType(7) {
		t.Errorf("type = %v, want 7", gotType)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Errorf("unknown frame payload not consumed in full")
	}

	// The stream must stay decodable after the bad frame.
	gotType, gotPayload, err = ch.ReadMessage()
	if err != nil {
		t.Fatalf("read after unknown frame: %v", err)
	}
	if gotType != MsgTypeResponse || string(gotPayload) != "ok" {
		t.Errorf("got (%v, %q), want (response, ok)", gotType, gotPayload)
	}
}

func TestBoundedChannel_OversizedFrameIsDrained(t *testing.T) {
	var buf bytes.Buffer
	writer := NewChannel(&buf)

	big := bytes.Repeat([]byte{1}, 256)
	if err := writer.WriteMessage(MsgTypeRequest, big); err != nil {
		t.Fatalf("write big: %v", err)
	}
	if err := writer.WriteMessage(MsgTypeRequest, []byte("small")); err != nil {
		t.Fatalf("write small: %v", err)
	}

	reader := NewBoundedChannel(&buf, 64)

	_, _, err := reader.ReadMessage()
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}

	_, payload, err := reader.ReadMessage()
	if err != nil {
		t.Fatalf("read after oversized frame: %v", err)
	}
	if string(payload) != "small" {
		t.Errorf("payload = %q, want %q", payload, "small")
	}
}

func TestMsgType_String(t *testing.T) {
	if MsgTypeRequest.String() != "request" || MsgTypeResponse.String() != "response" {
		t.Error("recognized types should print their names")
	}
	if MsgType(9).String() != "unknown(9)" {
		t.Errorf("MsgType(9) = %q", MsgType(9).String())
	}
}
