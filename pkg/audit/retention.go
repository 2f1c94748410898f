package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig contains the pruning policy.
type RetentionConfig struct {
	// Days is how long records are kept. Zero disables age pruning.
	Days int

	// Schedule is a standard cron expression for pruning runs. Empty
	// disables the scheduler.
	Schedule string

	// MaxRecords caps the table size regardless of age. Zero disables.
	MaxRecords int64
}

// Pruner applies the retention policy to a storage backend.
type Pruner struct {
	storage Storage
	config  RetentionConfig
	logger  *slog.Logger
}

// NewPruner creates a pruner for storage.
func NewPruner(storage Storage, cfg RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default().With("component", "audit.pruner"),
	}
}

// Prune runs one pruning cycle and returns the number of deleted records.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Time{}
	if p.config.Days > 0 {
		cutoff = time.Now().AddDate(0, 0, -p.config.Days)
	}
	return p.storage.Prune(ctx, cutoff, p.config.MaxRecords)
}

// Scheduler runs the pruner on a cron schedule.
type Scheduler struct {
	pruner *Pruner
	cron   *cron.Cron
	mu     sync.Mutex
	logger *slog.Logger
}

// NewScheduler creates a scheduler for pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: slog.Default().With("component", "audit.scheduler"),
	}
}

// Start begins scheduled pruning and stops it when ctx is cancelled. An
// empty schedule disables the scheduler without error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pruner.config.Schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	_, err := s.cron.AddFunc(s.pruner.config.Schedule, func() {
		s.runPruning(ctx)
	})
	if err != nil {
		return fmt.Errorf("audit: invalid prune schedule %q: %w", s.pruner.config.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("retention scheduler started",
		"schedule", s.pruner.config.Schedule,
		"retention_days", s.pruner.config.Days,
		"max_records", s.pruner.config.MaxRecords,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// runPruning executes one scheduled cycle.
func (s *Scheduler) runPruning(ctx context.Context) {
	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}
	s.logger.Info("scheduled pruning complete", "deleted", deleted)
}

// Stop halts scheduled pruning, waiting for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
