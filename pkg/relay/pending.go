package relay

import (
	"bytes"
	"sync"
	"time"
)

// Header is one request header line. Order is preserved and keys are not
// required to be unique, matching what will be written on the wire.
type Header struct {
	Name  string
	Value string
}

// PendingRequest is one client request travelling through the relay. The
// dispatcher that created it owns it until the completion signal fires;
// the pump completes it exactly once with either the relayed response
// bytes or an error.
type PendingRequest struct {
	Method  string
	Target  string
	Headers []Header
	Body    []byte

	enqueued time.Time

	// Write-once result slot. completeOnce guards it so that a late
	// completion after the waiter has given up is discarded safely.
	completeOnce sync.Once
	response     []byte
	err          error
	done         chan struct{}
}

// NewPendingRequest creates a pending request ready to be enqueued.
func NewPendingRequest(method, target string, headers []Header, body []byte) *PendingRequest {
	return &PendingRequest{
		Method:  method,
		Target:  target,
		Headers: headers,
		Body:    body,
		done:    make(chan struct{}),
	}
}

// Complete delivers the relayed response bytes and fires the completion
// signal. Only the first of Complete/Fail wins; later calls are no-ops.
func (p *PendingRequest) Complete(response []byte) {
	p.completeOnce.Do(func() {
		p.response = response
		close(p.done)
	})
}

// Fail delivers an error result and fires the completion signal. Only the
// first of Complete/Fail wins; later calls are no-ops.
func (p *PendingRequest) Fail(err error) {
	p.completeOnce.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Wait blocks until the completion signal fires or timeout elapses. On
// timeout it returns a TimeoutError; the request may still be completed
// later by the pump, and that late result is simply discarded.
func (p *PendingRequest) Wait(timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.response, p.err
	case <-timer.C:
		return nil, &TimeoutError{Waited: timeout.String()}
	}
}

// Serialize renders the canonical HTTP/1.1 request text the offshore side
// will forward verbatim: request line, headers in order, a blank line,
// then the body.
func (p *PendingRequest) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteString(p.Method)
	buf.WriteByte(' ')
	buf.WriteString(p.Target)
	buf.WriteString(" HTTP/1.1\r\n")
	for _, h := range p.Headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(p.Body)
	return buf.Bytes()
}
