package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/logger"
)

func TestOutboxRetentionJobDeletesPublishedRows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	dlq := &fakeDLQRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, dlq)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.UTC().Add(-outboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.minAttempts != outboxMinAttempts {
		t.Fatalf("expected min attempts %d, got %d", outboxMinAttempts, repo.minAttempts)
	}
	if repo.called != 1 || dlq.called != 1 {
		t.Fatalf("expected both repos called once, got %d and %d", repo.called, dlq.called)
	}
	if !dlq.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected dlq cutoff %s, got %s", expectedCutoff, dlq.lastCutoff)
	}
}

func TestOutboxRetentionJobCombinesErrors(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{err: errors.New("outbox boom")}
	dlq := &fakeDLQRetentionRepo{err: errors.New("dlq boom")}
	job := newOutboxRetentionJob(t, repo, dlq)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "outbox boom") || !strings.Contains(err.Error(), "dlq boom") {
		t.Fatalf("expected both failures reported, got %v", err)
	}
	if dlq.called != 1 {
		t.Fatal("dlq cleanup should run even when the outbox cleanup fails")
	}
}

func TestOutboxRetentionJobWithoutDLQ(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo, dlq *fakeDLQRetentionRepo) *outboxRetentionJob {
	t.Helper()
	params := OutboxRetentionJobParams{
		Logger:     logger.Nop(),
		DB:         outboxRetentionTxRunner{},
		Repository: repo,
	}
	if dlq != nil {
		params.DLQ = dlq
	}
	jobIface, err := NewOutboxRetentionJob(params)
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := jobIface.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeOutboxRetentionRepo struct {
	lastCutoff  time.Time
	minAttempts int
	called      int
	err         error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	f.minAttempts = minAttemptCount
	if f.err != nil {
		return 0, f.err
	}
	return 7, nil
}

type fakeDLQRetentionRepo struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeDLQRetentionRepo) DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

type outboxRetentionTxRunner struct{}

func (outboxRetentionTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
