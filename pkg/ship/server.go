package ship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/relay"
)

// Server is the ship-side proxy server. It owns the local HTTP listener
// and the upstream pump goroutine; Start dials the offshore executor
// first and refuses to serve clients if that single dial fails.
type Server struct {
	config     *config.ShipConfig
	pump       *relay.Pump
	dispatcher *Dispatcher
	httpServer *http.Server
	logger     *slog.Logger

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates a ship server.
func NewServer(cfg *config.ShipConfig, pump *relay.Pump, dispatcher *Dispatcher) *Server {
	return &Server{
		config:       cfg,
		pump:         pump,
		dispatcher:   dispatcher,
		logger:       slog.Default().With("component", "ship.server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start dials the upstream link, starts the pump and the HTTP listener,
// and blocks until shutdown (signal, context cancellation, or a listener
// error).
func (s *Server) Start(ctx context.Context) error {
	// Fail-fast: without the upstream link the ship side is useless, so
	// it must not start accepting clients it can only answer with 502s.
	if err := s.pump.Dial(); err != nil {
		return fmt.Errorf("ship refuses to start: %w", err)
	}

	pumpCtx, cancelPump := context.WithCancel(context.Background())
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.pump.Run(pumpCtx)
	}()

	s.httpServer = &http.Server{
		Addr:    s.config.ListenAddress,
		Handler: s.dispatcher,
		// ReadHeaderTimeout instead of ReadTimeout: a relayed exchange
		// may legitimately hold the connection for the full dispatch
		// timeout.
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("ship proxy listening",
			"address", s.config.ListenAddress,
			"offshore", s.config.OffshoreAddress,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ship listener error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case runErr = <-errChan:
	case <-s.shutdownChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("listener shutdown incomplete", "error", err)
	}

	cancelPump()
	<-pumpDone
	s.pump.Close()

	s.logger.Info("ship proxy stopped")
	return runErr
}

// Shutdown asks a running Start to unwind. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
}
