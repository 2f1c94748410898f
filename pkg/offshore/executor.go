package offshore

import (
	"bytes"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"harborlink/seaway/pkg/audit"
	"harborlink/seaway/pkg/config"
	"harborlink/seaway/pkg/relay"
	"harborlink/seaway/pkg/telemetry/metrics"
)

// Executor performs one relayed request against its destination server.
// It always produces response bytes to frame back — destination failures
// become synthesized HTTP error responses, never protocol failures.
type Executor struct {
	dialTimeout time.Duration
	idleTimeout time.Duration
	metrics     *metrics.ExecutorMetrics
	recorder    *audit.Recorder
	logger      *slog.Logger

	// dial is swappable for tests.
	dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// NewExecutor creates an executor. metrics and recorder may be nil.
func NewExecutor(cfg *config.OffshoreConfig, m *metrics.ExecutorMetrics, recorder *audit.Recorder) *Executor {
	return &Executor{
		dialTimeout: cfg.DialTimeout,
		idleTimeout: cfg.ResponseIdleTimeout,
		metrics:     m,
		recorder:    recorder,
		logger:      slog.Default().With("component", "offshore.executor"),
		dial:        net.DialTimeout,
	}
}

// Execute handles one framed request payload to completion and returns
// the response bytes to frame back.
func (e *Executor) Execute(payload []byte) []byte {
	start := time.Now()

	line, err := parseRequestLine(payload)
	if err != nil {
		e.logger.Error("unprocessable relayed request", "error", err)
		e.finish(requestLine{}, "internal_error", len(payload), 0, start, err.Error())
		return errorResponse(http.StatusInternalServerError, "Internal Server Error")
	}

	if line.Method == http.MethodConnect {
		// Canned acknowledgment only; no byte relay follows. Encrypted
		// traffic the client sends next is not forwarded anywhere.
		e.logger.Info("CONNECT acknowledged without tunnel", "target", line.Target)
		e.finish(line, "connect_tunnel", len(payload), len(connectEstablished), start, "")
		return connectEstablished
	}

	response := e.fetch(line, payload, start)
	return response
}

// fetch opens a fresh connection to the destination (no pooling), writes
// the relayed request text verbatim, and collects the response until the
// inactivity window closes.
func (e *Executor) fetch(line requestLine, payload []byte, start time.Time) []byte {
	addr, err := resolveTarget(line.Target, payload)
	if err != nil {
		destErr := &relay.DestinationError{Op: "resolve", Cause: err}
		e.logger.Warn("cannot resolve destination", "target", line.Target, "error", destErr)
		e.finish(line, "bad_request", len(payload), 0, start, destErr.Error())
		return errorResponse(http.StatusBadRequest, "Bad Request - No host specified")
	}

	conn, err := e.dial("tcp", addr, e.dialTimeout)
	if err != nil {
		destErr := &relay.DestinationError{Address: addr, Op: "dial", Cause: err}
		e.logger.Warn("destination unreachable", "error", destErr)
		e.finish(line, "connect_error", len(payload), 0, start, destErr.Error())
		return errorResponse(http.StatusBadGateway, "Bad Gateway")
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		destErr := &relay.DestinationError{Address: addr, Op: "send", Cause: err}
		e.logger.Warn("failed to forward request", "error", destErr)
		e.finish(line, "connect_error", len(payload), 0, start, destErr.Error())
		return errorResponse(http.StatusBadGateway, "Bad Gateway")
	}

	response, err := e.collect(conn)
	if err != nil {
		destErr := &relay.DestinationError{Address: addr, Op: "receive", Cause: err}
		e.logger.Warn("no response from destination", "error", destErr)
		e.finish(line, "connect_error", len(payload), 0, start, destErr.Error())
		return errorResponse(http.StatusBadGateway, "Bad Gateway")
	}

	e.logger.Debug("destination fetch complete",
		"method", line.Method,
		"address", addr,
		"response_bytes", len(response),
	)
	e.finish(line, "success", len(payload), len(response), start, "")
	return response
}

// collect reads the destination's response until the peer closes or the
// inactivity window elapses. An idle timeout after at least one byte
// means the response is complete; before the first byte it is a failure.
func (e *Executor) collect(conn net.Conn) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)

	for {
		conn.SetReadDeadline(time.Now().Add(e.idleTimeout))
		n, err := conn.Read(chunk)
		buf.Write(chunk[:n])
		if err == nil {
			continue
		}

		var netErr net.Error
		timedOut := errors.As(err, &netErr) && netErr.Timeout()
		if timedOut && buf.Len() == 0 {
			return nil, errors.New("destination sent no bytes within the inactivity window")
		}
		// Timeout with data, EOF, or a reset after data all terminate
		// collection with whatever arrived.
		if buf.Len() == 0 && !timedOut {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// finish records metrics and the audit row for one execution.
func (e *Executor) finish(line requestLine, status string, bytesIn, bytesOut int, start time.Time, errStr string) {
	duration := time.Since(start)
	e.metrics.RecordDestination(status, duration)
	e.recorder.Record(&audit.Record{
		Side:     audit.SideOffshore,
		Method:   line.Method,
		Target:   line.Target,
		Status:   status,
		BytesIn:  int64(bytesIn),
		BytesOut: int64(bytesOut),
		Duration: duration,
		Error:    errStr,
	})
}
