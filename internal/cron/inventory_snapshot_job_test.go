package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/warehouse-backend/pkg/logger"
)

type fakeStatusCounter struct {
	counts map[string]int64
	err    error
}

func (f fakeStatusCounter) CountByStatus(context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

type fakePendingCounter struct {
	pending int64
	err     error
}

func (f fakePendingCounter) CountPending(context.Context) (int64, error) {
	return f.pending, f.err
}

type recordingGauges struct {
	items   map[string]int64
	pending int64
	calls   int
}

func (r *recordingGauges) SetItemsByStatus(counts map[string]int64) {
	r.items = counts
	r.calls++
}

func (r *recordingGauges) SetOutboxPending(count int64) {
	r.pending = count
	r.calls++
}

func TestInventorySnapshotJobFillsEveryStatus(t *testing.T) {
	gauges := &recordingGauges{}
	job, err := NewInventorySnapshotJob(InventorySnapshotJobParams{
		Logger:  logger.Nop(),
		Items:   fakeStatusCounter{counts: map[string]int64{"active": 4}},
		Outbox:  fakePendingCounter{pending: 3},
		Metrics: gauges,
	})
	if err != nil {
		t.Fatalf("NewInventorySnapshotJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gauges.items["active"] != 4 {
		t.Fatalf("expected 4 active items, got %d", gauges.items["active"])
	}
	if v, ok := gauges.items["deleted"]; !ok || v != 0 {
		t.Fatalf("expected zero sample for deleted, got %d (present=%v)", v, ok)
	}
	if gauges.pending != 3 {
		t.Fatalf("expected 3 pending, got %d", gauges.pending)
	}
}

func TestInventorySnapshotJobReportsPartialFailure(t *testing.T) {
	gauges := &recordingGauges{}
	job, err := NewInventorySnapshotJob(InventorySnapshotJobParams{
		Logger:  logger.Nop(),
		Items:   fakeStatusCounter{err: errors.New("db down")},
		Outbox:  fakePendingCounter{pending: 1},
		Metrics: gauges,
	})
	if err != nil {
		t.Fatalf("NewInventorySnapshotJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if gauges.pending != 1 {
		t.Fatal("outbox gauge should still be updated")
	}
}

func TestInventorySnapshotJobRequiresDependencies(t *testing.T) {
	if _, err := NewInventorySnapshotJob(InventorySnapshotJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error")
	}
}
