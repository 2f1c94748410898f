package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// schema is the audit table layout. Timestamps are unix milliseconds so
// range scans stay on the index.
const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id          TEXT PRIMARY KEY,
	recorded_at INTEGER NOT NULL,
	side        TEXT NOT NULL,
	method      TEXT NOT NULL,
	target      TEXT NOT NULL,
	status      TEXT NOT NULL,
	bytes_in    INTEGER NOT NULL,
	bytes_out   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_exchanges_recorded_at ON exchanges(recorded_at);
`

// SQLiteConfig contains settings for the SQLite audit store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration
}

// SQLiteStorage implements Storage on a SQLite database file.
type SQLiteStorage struct {
	db     *sql.DB
	config SQLiteConfig
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the audit database and
// initializes its schema.
func NewSQLiteStorage(cfg SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit: database path must not be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}

	// SQLite supports a single writer; a larger pool just trades one
	// lock for another.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: slog.Default().With("component", "audit.storage"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("audit storage initialized", "path", cfg.Path, "wal_mode", cfg.WALMode)
	return s, nil
}

// initialize applies pragmas and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("audit: enable WAL: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("audit: set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("audit: create schema: %w", err)
	}

	insert, err := s.db.Prepare(`
		INSERT INTO exchanges (id, recorded_at, side, method, target, status, bytes_in, bytes_out, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("audit: prepare insert: %w", err)
	}
	s.insert = insert
	return nil
}

// Store persists one record.
func (s *SQLiteStorage) Store(ctx context.Context, rec *Record) error {
	_, err := s.insert.ExecContext(ctx,
		rec.ID,
		rec.RecordedAt.UnixMilli(),
		rec.Side,
		rec.Method,
		rec.Target,
		rec.Status,
		rec.BytesIn,
		rec.BytesOut,
		rec.Duration.Milliseconds(),
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("audit: insert record: %w", err)
	}
	return nil
}

// QueryRange returns records recorded in [from, to), newest first.
func (s *SQLiteStorage) QueryRange(ctx context.Context, from, to time.Time, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_at, side, method, target, status, bytes_in, bytes_out, duration_ms, error
		FROM exchanges
		WHERE recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at DESC
		LIMIT ?`,
		from.UnixMilli(), to.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query range: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var recordedAt, durationMs int64
		if err := rows.Scan(&rec.ID, &recordedAt, &rec.Side, &rec.Method, &rec.Target,
			&rec.Status, &rec.BytesIn, &rec.BytesOut, &durationMs, &rec.Error); err != nil {
			return nil, fmt.Errorf("audit: scan record: %w", err)
		}
		rec.RecordedAt = time.UnixMilli(recordedAt)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Prune deletes records older than cutoff and trims the table to
// maxRecords newest rows when maxRecords is positive.
func (s *SQLiteStorage) Prune(ctx context.Context, cutoff time.Time, maxRecords int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM exchanges WHERE recorded_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("audit: prune by age: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if maxRecords > 0 {
		res, err = s.db.ExecContext(ctx, `
			DELETE FROM exchanges WHERE id IN (
				SELECT id FROM exchanges
				ORDER BY recorded_at DESC
				LIMIT -1 OFFSET ?
			)`, maxRecords)
		if err != nil {
			return deleted, fmt.Errorf("audit: prune by count: %w", err)
		}
		trimmed, _ := res.RowsAffected()
		deleted += trimmed
	}
	return deleted, nil
}

// Close releases the database.
func (s *SQLiteStorage) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}
