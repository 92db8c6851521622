package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
)

type itemStatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type pendingOutboxCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

type snapshotGauges interface {
	SetItemsByStatus(counts map[string]int64)
	SetOutboxPending(count int64)
}

type InventorySnapshotJobParams struct {
	Logger  *logger.Logger
	Items   itemStatusCounter
	Outbox  pendingOutboxCounter
	Metrics snapshotGauges
}

// NewInventorySnapshotJob refreshes the item-status and outbox backlog gauges.
func NewInventorySnapshotJob(params InventorySnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("metrics required")
	}
	return &inventorySnapshotJob{
		logg:    params.Logger,
		items:   params.Items,
		outbox:  params.Outbox,
		metrics: params.Metrics,
	}, nil
}

type inventorySnapshotJob struct {
	logg    *logger.Logger
	items   itemStatusCounter
	outbox  pendingOutboxCounter
	metrics snapshotGauges
}

func (j *inventorySnapshotJob) Name() string { return "inventory-snapshot" }

func (j *inventorySnapshotJob) Run(ctx context.Context) error {
	fields := map[string]any{}

	counts, itemsErr := j.items.CountByStatus(ctx)
	if itemsErr == nil {
		// every status gets a sample so a drained status drops to zero
		full := make(map[string]int64, len(enums.ItemStatuses()))
		for _, status := range enums.ItemStatuses() {
			full[status.String()] = counts[status.String()]
			fields["items_"+status.String()] = full[status.String()]
		}
		j.metrics.SetItemsByStatus(full)
	} else {
		itemsErr = fmt.Errorf("count items by status: %w", itemsErr)
	}

	pending, outboxErr := j.outbox.CountPending(ctx)
	if outboxErr == nil {
		j.metrics.SetOutboxPending(pending)
		fields["outbox_pending"] = pending
	} else {
		outboxErr = fmt.Errorf("count pending outbox events: %w", outboxErr)
	}

	if err := multierr.Combine(itemsErr, outboxErr); err != nil {
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), "inventory snapshot recorded")
	return nil
}
