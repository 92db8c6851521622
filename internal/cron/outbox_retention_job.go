package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/logger"
)

const (
	outboxRetentionDays = 30
	outboxMinAttempts   = 10
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type OutboxRetentionJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repository  outboxRetentionRepo
	DLQ         dlqRetentionRepo
	Retention   int
	MinAttempts int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

type dlqRetentionRepo interface {
	DeleteFailedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewOutboxRetentionJob prunes relayed outbox rows, rows that exhausted their
// attempts, and dead letters older than the retention window. DLQ is optional.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	minAttempts := params.MinAttempts
	if minAttempts <= 0 {
		minAttempts = outboxMinAttempts
	}
	return &outboxRetentionJob{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repository,
		dlq:         params.DLQ,
		retention:   retention,
		minAttempts: minAttempts,
		now:         time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg        *logger.Logger
	db          txRunner
	repo        outboxRetentionRepo
	dlq         dlqRetentionRepo
	retention   int
	minAttempts int
	now         func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

// Run prunes the outbox and the DLQ in separate transactions so one failing
// table does not keep the other from shrinking.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)

	var outboxDeleted, dlqDeleted int64
	outboxErr := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeletePublishedBefore(ctx, tx, cutoff, j.minAttempts)
		if err != nil {
			return err
		}
		outboxDeleted = rows
		return nil
	})
	if outboxErr != nil {
		outboxErr = fmt.Errorf("outbox retention: %w", outboxErr)
	}

	var dlqErr error
	if j.dlq != nil {
		dlqErr = j.db.WithTx(ctx, func(tx *gorm.DB) error {
			rows, err := j.dlq.DeleteFailedBefore(ctx, tx, cutoff)
			if err != nil {
				return err
			}
			dlqDeleted = rows
			return nil
		})
		if dlqErr != nil {
			dlqErr = fmt.Errorf("dlq retention: %w", dlqErr)
		}
	}

	if err := multierr.Combine(outboxErr, dlqErr); err != nil {
		return err
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"min_attempts":   j.minAttempts,
		"rows_deleted":   outboxDeleted,
		"dlq_deleted":    dlqDeleted,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}
