package ship

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"harborlink/seaway/pkg/audit"
	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/relay"
	"harborlink/seaway/pkg/telemetry/metrics"
)

// Dispatcher handles one client request per invocation: build the
// canonical pending request, enqueue it, wait for the completion signal,
// and deliver the result. The http.Server runs one handler goroutine per
// client connection; the correlation queue is the only thing they share.
type Dispatcher struct {
	queue    *relay.Queue
	timeout  time.Duration
	limiter  *rate.Limiter
	metrics  *metrics.DispatchMetrics
	recorder *audit.Recorder
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher feeding q. metrics and recorder may
// be nil.
func NewDispatcher(q *relay.Queue, timeout time.Duration, rl config.RateLimitConfig,
	m *metrics.DispatchMetrics, recorder *audit.Recorder) *Dispatcher {

	var limiter *rate.Limiter
	if rl.Enabled {
		limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.Burst)
	}

	return &Dispatcher{
		queue:    q,
		timeout:  timeout,
		limiter:  limiter,
		metrics:  m,
		recorder: recorder,
		logger:   slog.Default().With("component", "ship.dispatcher"),
	}
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if d.limiter != nil && !d.limiter.Allow() {
		d.metrics.RecordRequest(r.Method, "rate_limited", 0)
		http.Error(w, "relay request rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		d.metrics.RecordRequest(r.Method, "gateway_error", 0)
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusBadRequest)
		return
	}

	target := r.RequestURI
	if target == "" {
		target = r.URL.RequestURI()
	}

	pending := relay.NewPendingRequest(r.Method, target, buildHeaders(r, len(body)), body)
	d.queue.Enqueue(pending)
	d.logger.Debug("request enqueued", "method", r.Method, "target", target)

	raw, waitErr := pending.Wait(d.timeout)
	waited := time.Since(start)

	rec := &audit.Record{
		Side:     audit.SideShip,
		Method:   r.Method,
		Target:   target,
		BytesOut: int64(len(body)),
		Duration: waited,
	}

	var timeoutErr *relay.TimeoutError
	switch {
	case waitErr == nil:
		rec.Status = "relayed"
		rec.BytesIn = int64(len(raw))
		d.metrics.RecordRequest(r.Method, "relayed", waited)
		d.writeRaw(w, raw)

	case errors.As(waitErr, &timeoutErr):
		rec.Status = "timeout"
		rec.Error = waitErr.Error()
		d.metrics.RecordRequest(r.Method, "timeout", waited)
		d.logger.Warn("dispatch wait timed out", "method", r.Method, "target", target)
		http.Error(w, "no response from relay within the dispatch timeout", http.StatusGatewayTimeout)

	default:
		rec.Status = "gateway_error"
		rec.Error = waitErr.Error()
		d.metrics.RecordRequest(r.Method, "gateway_error", waited)
		d.logger.Warn("relay failed", "method", r.Method, "target", target, "error", waitErr)
		http.Error(w, fmt.Sprintf("relay error: %v", waitErr), http.StatusBadGateway)
	}

	d.recorder.Record(rec)
}

// writeRaw passes the relayed response bytes through to the client socket
// untouched. The connection is hijacked because the bytes already form a
// complete HTTP response; letting the http.Server frame them again would
// corrupt them.
func (d *Dispatcher) writeRaw(w http.ResponseWriter, raw []byte) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		// Non-hijackable writer (only seen under test recorders).
		w.Write(raw)
		return
	}

	conn, bufrw, err := hj.Hijack()
	if err != nil {
		d.logger.Error("failed to hijack client connection", "error", err)
		http.Error(w, "internal relay failure", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	if _, err := bufrw.Write(raw); err != nil {
		d.logger.Warn("failed to write response to client", "error", err)
		return
	}
	bufrw.Flush()
}

// buildHeaders renders the client request's headers for the wire. Host is
// always first, the rest follow in a stable order, and Content-Length is
// restored when a body is present (the http.Server promotes both out of
// the header map).
func buildHeaders(r *http.Request, bodyLen int) []relay.Header {
	headers := make([]relay.Header, 0, len(r.Header)+2)
	if r.Host != "" {
		headers = append(headers, relay.Header{Name: "Host", Value: r.Host})
	}

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range r.Header[name] {
			headers = append(headers, relay.Header{Name: name, Value: value})
		}
	}

	if bodyLen > 0 {
		headers = append(headers, relay.Header{Name: "Content-Length", Value: strconv.Itoa(bodyLen)})
	}
	return headers
}
