package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Recorder accepts records from the relay path and writes them to storage
// from a background goroutine. All methods are safe on a nil receiver, so
// components built with auditing disabled simply record nothing.
type Recorder struct {
	storage Storage
	records chan *Record
	dropped atomic.Int64
	logger  *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRecorder creates a recorder writing to storage and starts its
// background writer. bufferSize bounds the number of records waiting to be
// written; overflow is dropped, not blocked on.
func NewRecorder(storage Storage, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	r := &Recorder{
		storage: storage,
		records: make(chan *Record, bufferSize),
		logger:  slog.Default().With("component", "audit.recorder"),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues one record for storage. It assigns the ID and timestamp
// and never blocks; when the buffer is full the record is dropped and
// counted. Safe on nil.
func (r *Recorder) Record(rec *Record) {
	if r == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	select {
	case r.records <- rec:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns the number of records lost to buffer overflow. Safe on
// nil.
func (r *Recorder) Dropped() int64 {
	if r == nil {
		return 0
	}
	return r.dropped.Load()
}

// run is the background writer.
func (r *Recorder) run() {
	defer close(r.doneCh)

	for {
		select {
		case rec := <-r.records:
			r.store(rec)
		case <-r.stopCh:
			// Drain what is already buffered before exiting.
			for {
				select {
				case rec := <-r.records:
					r.store(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) store(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.storage.Store(ctx, rec); err != nil {
		r.logger.Warn("failed to store audit record", "id", rec.ID, "error", err)
	}
}

// Close flushes buffered records and stops the writer. Safe on nil.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh

	if n := r.dropped.Load(); n > 0 {
		r.logger.Warn("audit records dropped during this run", "count", n)
	}
}
