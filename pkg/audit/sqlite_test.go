package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(SQLiteConfig{
		Path:    filepath.Join(t.TempDir(), "audit.db"),
		WALMode: true,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorageStoreAndQuery(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	rec := &Record{
		ID:         "rec-1",
		RecordedAt: now,
		Side:       SideShip,
		Method:     "GET",
		Target:     "http://example.com/index.html",
		Status:     "relayed",
		BytesIn:    512,
		BytesOut:   128,
		Duration:   250 * time.Millisecond,
	}
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.QueryRange(ctx, now.Add(-time.Minute), now.Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("QueryRange() returned %d records, want 1", len(got))
	}

	r := got[0]
	if r.ID != "rec-1" || r.Side != SideShip || r.Method != "GET" {
		t.Errorf("record mismatch: %+v", r)
	}
	if r.Target != "http://example.com/index.html" {
		t.Errorf("target = %q", r.Target)
	}
	if r.BytesIn != 512 || r.BytesOut != 128 {
		t.Errorf("bytes = %d/%d, want 512/128", r.BytesIn, r.BytesOut)
	}
	if r.Duration != 250*time.Millisecond {
		t.Errorf("duration = %v, want 250ms", r.Duration)
	}
}

func TestSQLiteStorageQueryOrderAndRange(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		err := s.Store(ctx, &Record{
			ID:         fmt.Sprintf("rec-%d", i),
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
			Side:       SideOffshore,
			Method:     "GET",
			Target:     "/",
			Status:     "success",
		})
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	// Half-open range excludes rec-4, newest first within the range.
	got, err := s.QueryRange(ctx, base.Add(time.Minute), base.Add(4*time.Minute), 10)
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("QueryRange() returned %d records, want 3", len(got))
	}
	if got[0].ID != "rec-3" || got[2].ID != "rec-1" {
		t.Errorf("order wrong: %s .. %s, want rec-3 .. rec-1", got[0].ID, got[2].ID)
	}

	// Limit applies after ordering.
	got, err = s.QueryRange(ctx, base.Add(-time.Minute), base.Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "rec-4" {
		t.Errorf("limited query = %d records starting at %s, want 2 starting at rec-4", len(got), got[0].ID)
	}
}

func TestSQLiteStoragePrune(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 10; i++ {
		err := s.Store(ctx, &Record{
			ID:         fmt.Sprintf("rec-%d", i),
			RecordedAt: now.Add(time.Duration(i-10) * 24 * time.Hour),
			Side:       SideShip,
			Method:     "GET",
			Target:     "/",
			Status:     "relayed",
		})
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	// Age pruning: drop everything older than 5 days (rec-0 .. rec-4).
	deleted, err := s.Prune(ctx, now.AddDate(0, 0, -5), 0)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 5 {
		t.Errorf("Prune() deleted %d, want 5", deleted)
	}

	// Count pruning: keep only the 2 newest of the remaining 5.
	deleted, err = s.Prune(ctx, time.Time{}, 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted %d, want 3", deleted)
	}

	got, err := s.QueryRange(ctx, now.AddDate(0, 0, -30), now.Add(time.Hour), 100)
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "rec-9" || got[1].ID != "rec-8" {
		t.Errorf("after pruning: %d records, want rec-9 and rec-8", len(got))
	}
}

func TestPruner(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	old := &Record{ID: "old", RecordedAt: now.AddDate(0, 0, -40), Side: SideShip, Method: "GET", Target: "/", Status: "relayed"}
	fresh := &Record{ID: "fresh", RecordedAt: now, Side: SideShip, Method: "GET", Target: "/", Status: "relayed"}
	if err := s.Store(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.Store(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	p := NewPruner(s, RetentionConfig{Days: 30})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d, want 1", deleted)
	}

	got, err := s.QueryRange(ctx, now.AddDate(0, 0, -60), now.Add(time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("surviving records = %+v, want only fresh", got)
	}
}
