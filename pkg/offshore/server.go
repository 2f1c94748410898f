package offshore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/telemetry/metrics"
	"harborlink/seaway/pkg/wire"
)

// Server accepts the one upstream connection from the ship side and runs
// the sequential frame loop over it. Peers are serviced one at a time; a
// second ship connecting queues in the accept backlog until the first
// disconnects.
type Server struct {
	config   *config.OffshoreConfig
	executor *Executor
	metrics  *metrics.ExecutorMetrics
	logger   *slog.Logger

	mu         sync.Mutex
	listener   net.Listener
	activeConn net.Conn

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates an offshore server. metrics may be nil.
func NewServer(cfg *config.OffshoreConfig, executor *Executor, m *metrics.ExecutorMetrics) *Server {
	return &Server{
		config:       cfg,
		executor:     executor,
		metrics:      m,
		logger:       slog.Default().With("component", "offshore.server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start listens for relay peers and blocks until shutdown (signal,
// context cancellation, or listener failure).
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("offshore listener error: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("offshore executor listening", "address", s.config.ListenAddress)

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(listener)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case <-s.shutdownChan:
	case <-acceptDone:
		return errors.New("offshore accept loop terminated unexpectedly")
	}

	s.close()
	<-acceptDone
	s.logger.Info("offshore executor stopped")
	return nil
}

// Addr returns the bound listener address, or "" before Start has
// listened. Useful when the configured address carries port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// acceptLoop services one relay peer at a time, in arrival order.
func (s *Server) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownChan:
			default:
				s.logger.Error("accept failed", "error", err)
			}
			return
		}

		s.mu.Lock()
		s.activeConn = conn
		s.mu.Unlock()

		s.logger.Info("relay peer connected", "remote", conn.RemoteAddr().String())
		s.serveConn(conn)

		s.mu.Lock()
		s.activeConn = nil
		s.mu.Unlock()
	}
}

// serveConn runs the sequential frame loop: read one request frame,
// execute it to completion, frame the response back, repeat. No
// per-request state survives an iteration.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	channel := wire.NewBoundedChannel(conn, s.config.MaxFrameBytes)
	for {
		msgType, payload, err := channel.ReadMessage()
		if errors.Is(err, wire.ErrUnknownType) || errors.Is(err, wire.ErrFrameTooLarge) {
			// Tolerated: the shared link is scarce, never close it over
			// a bad frame.
			s.logger.Warn("discarding inbound frame", "error", err)
			s.metrics.RecordSkippedFrame()
			continue
		}
		if err != nil {
			if errors.Is(err, wire.ErrChannelClosed) {
				s.logger.Info("relay peer disconnected")
			} else {
				s.logger.Error("upstream read failed", "error", err)
			}
			return
		}

		if msgType != wire.MsgTypeRequest {
			s.logger.Warn("discarding non-request frame", "type", msgType.String())
			s.metrics.RecordSkippedFrame()
			continue
		}

		response := s.executor.Execute(payload)
		if err := channel.WriteMessage(wire.MsgTypeResponse, response); err != nil {
			s.logger.Error("failed to write response frame", "error", err)
			return
		}
	}
}

// close shuts the listener and any active peer connection.
func (s *Server) close() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	if s.activeConn != nil {
		s.activeConn.Close()
	}
}

// Shutdown asks a running Start to unwind. Safe to call more than once.
func (s *Server) Shutdown() {
	s.close()
}
