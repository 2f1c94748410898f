package audit

import (
	"context"
	"time"
)

// Sides of the relay, for the Record.Side field.
const (
	SideShip     = "ship"
	SideOffshore = "offshore"
)

// Record is one relayed exchange as seen from one side.
type Record struct {
	// ID is a UUID assigned by the recorder.
	ID string

	// RecordedAt is when the exchange completed.
	RecordedAt time.Time

	// Side is SideShip or SideOffshore.
	Side string

	// Method and Target are taken from the relayed request line.
	Method string
	Target string

	// Status is the outcome label, matching the metric status labels.
	Status string

	// BytesIn and BytesOut count payload bytes received and sent for the
	// exchange, from this side's point of view.
	BytesIn  int64
	BytesOut int64

	// Duration is the exchange duration on this side.
	Duration time.Duration

	// Error holds the error string for failed exchanges, empty otherwise.
	Error string
}

// Storage persists audit records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, rec *Record) error

	// QueryRange returns records whose RecordedAt falls in [from, to),
	// newest first, up to limit.
	QueryRange(ctx context.Context, from, to time.Time, limit int) ([]*Record, error)

	// Prune deletes records older than cutoff, then trims the table to
	// maxRecords newest rows if maxRecords is positive. It returns the
	// number of deleted rows.
	Prune(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error)

	// Close releases the backend.
	Close() error
}
