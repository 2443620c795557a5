package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sentinel-hq/sentinel/pkg/config"
)

// Pruner enforces the audit retention policy: records older than the
// retention window are deleted, then the record-count cap is applied.
type Pruner struct {
	store  *Store
	cfg    config.AuditConfig
	logger *slog.Logger
}

// NewPruner creates a retention pruner.
func NewPruner(store *Store, cfg config.AuditConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "audit.pruner"),
	}
}

// Prune runs one retention cycle and reports how many records were
// deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.RetentionDays)

	byAge, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	byCap, err := p.store.DeleteOverCap(ctx, p.cfg.MaxRecords)
	if err != nil {
		return byAge, err
	}

	deleted := byAge + byCap
	if deleted > 0 {
		p.logger.Info("pruned audit records",
			"deleted", deleted,
			"by_age", byAge,
			"by_cap", byCap,
			"retention_days", p.cfg.RetentionDays,
		)
	}
	return deleted, nil
}

// Scheduler runs the pruner on a cron schedule (e.g. "0 3 * * *" for
// daily at 3 AM).
type Scheduler struct {
	pruner *Pruner
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: slog.Default().With("component", "audit.scheduler"),
	}
}

// Start begins scheduled pruning. An empty schedule disables the
// scheduler. The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.cfg.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.pruner.Prune(ctx); err != nil {
			s.logger.Error("scheduled pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("audit retention scheduler started",
		"schedule", schedule,
		"retention_days", s.pruner.cfg.RetentionDays,
		"max_records", s.pruner.cfg.MaxRecords,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled pruning. A running prune cycle finishes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("audit retention scheduler stopped")
}
