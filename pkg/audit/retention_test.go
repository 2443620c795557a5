package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sentinel-hq/sentinel/pkg/config"
)

func TestPrunerEnforcesCap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("eval-%d", i)
		if err := store.Save(ctx, sampleResult(id, "pol-1", true), nil); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	pruner := NewPruner(store, config.AuditConfig{
		RetentionDays: 90,
		MaxRecords:    4,
	}, nil)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}

func TestPrunerNoopWhenUnderLimits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleResult("eval-1", "pol-1", true), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	pruner := NewPruner(store, config.AuditConfig{
		RetentionDays: 90,
		MaxRecords:    100,
	}, nil)

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	store := newTestStore(t)
	pruner := NewPruner(store, config.AuditConfig{
		RetentionDays: 90,
		PruneSchedule: "not a schedule",
	}, nil)

	sched := NewScheduler(pruner)
	if err := sched.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron schedule")
	}
}

func TestSchedulerEmptyScheduleIsDisabled(t *testing.T) {
	store := newTestStore(t)
	pruner := NewPruner(store, config.AuditConfig{RetentionDays: 90}, nil)

	sched := NewScheduler(pruner)
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Stop on a never-started cron must not block.
	sched.Stop()
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	store := newTestStore(t)
	pruner := NewPruner(store, config.AuditConfig{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sched := NewScheduler(pruner)
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cancel()

	// Stop is idempotent; racing the cancellation goroutine is fine.
	deadline := time.After(2 * time.Second)
	for {
		sched.mu.Lock()
		running := sched.running
		sched.mu.Unlock()
		if !running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduler still running after context cancel")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
