package offshore

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/wire"
)

func testServeConn(t *testing.T) (*wire.Channel, net.Conn) {
	t.Helper()

	cfg := &config.OffshoreConfig{
		DialTimeout:         time.Second,
		ResponseIdleTimeout: 100 * time.Millisecond,
		MaxFrameBytes:       1 << 20,
	}
	srv := NewServer(cfg, NewExecutor(cfg, nil, nil), nil)

	local, remote := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	go srv.serveConn(remote)

	return wire.NewChannel(local), local
}

func TestServeConnFrameLoop(t *testing.T) {
	ship, _ := testServeConn(t)

	// A request with no resolvable host is synthesized into a 400, which
	// exercises the whole read-execute-respond loop without a network
	// destination.
	req := []byte("GET /index.html HTTP/1.1\r\nAccept: */*\r\n\r\n")
	if err := ship.WriteMessage(wire.MsgTypeRequest, req); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	msgType, payload, err := ship.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if msgType != wire.MsgTypeResponse {
		t.Errorf("response frame type = %v, want response", msgType)
	}
	if !strings.HasPrefix(string(payload), "HTTP/1.1 400 ") {
		t.Errorf("response = %q, want a synthesized 400", payload)
	}
}

func TestServeConnSequentialExchanges(t *testing.T) {
	ship, _ := testServeConn(t)

	for i := 0; i < 3; i++ {
		req := []byte("CONNECT example.com:443 HTTP/1.1\r\n\r\n")
		if err := ship.WriteMessage(wire.MsgTypeRequest, req); err != nil {
			t.Fatalf("exchange %d: WriteMessage() error = %v", i, err)
		}
		_, payload, err := ship.ReadMessage()
		if err != nil {
			t.Fatalf("exchange %d: ReadMessage() error = %v", i, err)
		}
		if string(payload) != string(connectEstablished) {
			t.Errorf("exchange %d: response = %q", i, payload)
		}
	}
}

func TestServeConnSkipsUnknownFrames(t *testing.T) {
	ship, _ := testServeConn(t)

	// Noise frames must be skipped without tearing down the link.
	if err := ship.WriteMessage(wire.MsgType(7), []byte("noise")); err != nil {
		t.Fatalf("WriteMessage(noise) error = %v", err)
	}
	if err := ship.WriteMessage(wire.MsgTypeResponse, []byte("wrong direction")); err != nil {
		t.Fatalf("WriteMessage(response) error = %v", err)
	}
	if err := ship.WriteMessage(wire.MsgTypeRequest, []byte("CONNECT example.com:443 HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("WriteMessage(request) error = %v", err)
	}

	_, payload, err := ship.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(payload) != string(connectEstablished) {
		t.Errorf("response after noise frames = %q", payload)
	}
}

func TestServeConnSkipsOversizedFrames(t *testing.T) {
	cfg := &config.OffshoreConfig{
		DialTimeout:         time.Second,
		ResponseIdleTimeout: 100 * time.Millisecond,
		MaxFrameBytes:       64,
	}
	srv := NewServer(cfg, NewExecutor(cfg, nil, nil), nil)

	local, remote := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	go srv.serveConn(remote)

	ship := wire.NewChannel(local)
	if err := ship.WriteMessage(wire.MsgTypeRequest, make([]byte, 128)); err != nil {
		t.Fatalf("WriteMessage(oversized) error = %v", err)
	}
	if err := ship.WriteMessage(wire.MsgTypeRequest, []byte("CONNECT a:1 HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("WriteMessage(request) error = %v", err)
	}

	_, payload, err := ship.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(payload) != string(connectEstablished) {
		t.Errorf("response after oversized frame = %q", payload)
	}
}

func TestServerStartAndShutdown(t *testing.T) {
	cfg := &config.OffshoreConfig{
		ListenAddress:       "127.0.0.1:0",
		DialTimeout:         time.Second,
		ResponseIdleTimeout: 100 * time.Millisecond,
		MaxFrameBytes:       1 << 20,
	}
	srv := NewServer(cfg, NewExecutor(cfg, nil, nil), nil)

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	srv.Shutdown()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error after Shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Shutdown")
	}
}
