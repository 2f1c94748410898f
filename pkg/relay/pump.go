package relay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"harborlink/seaway/pkg/telemetry/metrics"
	"harborlink/seaway/pkg/wire"
)

// PumpConfig contains configuration for the upstream pump.
type PumpConfig struct {
	// OffshoreAddress is the host:port of the offshore executor.
	OffshoreAddress string

	// DialTimeout bounds the single startup dial.
	DialTimeout time.Duration

	// PollInterval bounds each blocking dequeue so the pump can notice
	// shutdown between requests. Default: 1s.
	PollInterval time.Duration
}

// Pump is the single dedicated worker that owns the one persistent
// upstream connection. It dequeues pending requests in FIFO order, writes
// each as a framed request, reads the framed response, and completes the
// matching pending request. At most one exchange is ever in flight.
//
// There is no reconnection: once the link breaks, the pump fails the
// in-flight request, closes the queue, and drains everything still queued
// with the same connection error.
type Pump struct {
	config  PumpConfig
	queue   *Queue
	logger  *slog.Logger
	metrics *metrics.RelayMetrics

	conn    net.Conn
	channel *wire.Channel

	// connected is read by dispatcher goroutines for fail-fast checks;
	// everything else on the pump is touched only by its own goroutine.
	connected atomic.Bool
}

// NewPump creates a pump draining q. The pump is not connected until Dial
// succeeds. metrics may be nil.
func NewPump(cfg PumpConfig, q *Queue, m *metrics.RelayMetrics) *Pump {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Pump{
		config:  cfg,
		queue:   q,
		logger:  slog.Default().With("component", "relay.pump"),
		metrics: m,
	}
}

// Dial establishes the one upstream connection. A failure here means the
// whole ship side refuses to become ready; there is no retry.
func (p *Pump) Dial() error {
	conn, err := net.DialTimeout("tcp", p.config.OffshoreAddress, p.config.DialTimeout)
	if err != nil {
		return &ConnectionError{Op: "dial", Cause: err}
	}
	p.conn = conn
	p.channel = wire.NewChannel(conn)
	p.connected.Store(true)
	p.metrics.SetConnected(true)
	p.logger.Info("connected to offshore executor", "address", p.config.OffshoreAddress)
	return nil
}

// Run drains the queue until ctx is cancelled. It must be called from
// exactly one goroutine, after a successful Dial.
func (p *Pump) Run(ctx context.Context) {
	defer p.metrics.SetConnected(false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, ok := p.queue.Dequeue(p.config.PollInterval)
		p.metrics.SetQueueDepth(p.queue.Len())
		if !ok {
			continue
		}

		if p.channel == nil {
			req.Fail(&ConnectionError{Op: "send", Cause: errors.New("upstream link is down")})
			p.metrics.RecordExchange("connection_error", 0)
			continue
		}
		p.exchange(req)
	}
}

// exchange performs one framed request/response round trip. The next
// WriteMessage never starts before this one's response has been fully
// read; that single-in-flight discipline is what the shared connection
// requires.
func (p *Pump) exchange(req *PendingRequest) {
	start := time.Now()
	payload := req.Serialize()

	if err := p.channel.WriteMessage(wire.MsgTypeRequest, payload); err != nil {
		p.disconnect("send", err, req)
		return
	}
	p.metrics.AddWireBytes("sent", wire.HeaderSize+len(payload))

	for {
		msgType, body, err := p.channel.ReadMessage()
		if errors.Is(err, wire.ErrUnknownType) || errors.Is(err, wire.ErrFrameTooLarge) {
			// Frame boundary is intact; skip it and keep waiting.
			p.logger.Warn("discarding unexpected frame on upstream link", "error", err)
			continue
		}
		if err != nil {
			p.disconnect("receive", err, req)
			return
		}
		p.metrics.AddWireBytes("received", wire.HeaderSize+len(body))

		if msgType != wire.MsgTypeResponse {
			// A recognized-but-wrong type is fatal for this exchange only.
			// The connection itself is still framed correctly, so keep it.
			perr := &ProtocolError{Expected: wire.MsgTypeResponse.String(), Got: msgType.String()}
			p.logger.Error("protocol violation on upstream link", "error", perr)
			req.Fail(perr)
			p.metrics.RecordExchange("protocol_error", time.Since(start))
			return
		}

		req.Complete(body)
		p.metrics.RecordExchange("success", time.Since(start))
		p.logger.Debug("exchange complete",
			"method", req.Method,
			"target", req.Target,
			"response_bytes", len(body),
			"duration", time.Since(start),
		)
		return
	}
}

// disconnect handles a broken upstream link: fail the in-flight request,
// close the queue so new enqueues fail fast, and drain-and-fail everything
// already queued. Nothing may hang waiting on a response that can no
// longer arrive.
func (p *Pump) disconnect(op string, cause error, inflight *PendingRequest) {
	connErr := &ConnectionError{Op: op, Cause: cause}
	p.logger.Error("upstream link broken", "op", op, "error", cause)

	inflight.Fail(connErr)
	p.connected.Store(false)
	p.metrics.RecordExchange("connection_error", 0)
	p.metrics.SetConnected(false)

	p.queue.Close()
	drained := 0
	for {
		req, ok := p.queue.TryDequeue()
		if !ok {
			break
		}
		req.Fail(connErr)
		p.metrics.RecordExchange("connection_error", 0)
		drained++
	}
	if drained > 0 {
		p.logger.Warn("failed queued requests after link loss", "count", drained)
	}
	p.metrics.SetQueueDepth(0)

	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = nil
	p.channel = nil
}

// Connected reports whether the upstream link is believed healthy. Safe
// to call from any goroutine.
func (p *Pump) Connected() bool {
	return p.connected.Load()
}

// Close tears down the upstream connection during shutdown.
func (p *Pump) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
