package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehouse-backend/pkg/errors"
)

type adjustmentRecorder interface {
	IncAdjustment(reason string)
	IncStockRejection(operation string)
}

// StockApplier applies signed quantity changes inside a caller-owned transaction.
type StockApplier interface {
	Apply(ctx context.Context, tx *gorm.DB, change StockChange) (*StockResult, error)
}

// Adjuster is the single write path for on-hand quantities. Every applied change
// is recorded as an inventory movement in the same transaction.
type Adjuster struct {
	repo    Repository
	metrics adjustmentRecorder
}

// NewAdjuster builds the stock adjuster. metrics may be nil.
func NewAdjuster(repo Repository, metrics adjustmentRecorder) (*Adjuster, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Adjuster{repo: repo, metrics: metrics}, nil
}

// Apply changes the on-hand quantity of change.ItemID by change.Delta. Decrements
// that would drive the quantity below zero are rejected with CONFLICT and leave
// the row untouched.
func (a *Adjuster) Apply(ctx context.Context, tx *gorm.DB, change StockChange) (*StockResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock changes require a transaction")
	}
	if !change.Reason.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeInternal, "unknown movement reason %q", change.Reason)
	}
	if err := CheckDecimal("quantity change", change.Delta); err != nil {
		return nil, err
	}
	repo := a.repo.WithTx(tx)

	item, err := loadItem(ctx, repo, change.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status == enums.ItemStatusDeleted && change.Reason != enums.MovementReasonOrderCanceled {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "item %s is deleted", item.ID)
	}
	if change.Delta.IsZero() {
		return &StockResult{ItemID: item.ID, Delta: decimal.Zero, QuantityAfter: item.Quantity}, nil
	}

	applied, err := repo.AddQuantity(ctx, item.ID, change.Delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust item quantity")
	}
	if !applied {
		return nil, a.rejectInsufficient(ctx, repo, item.ID, change)
	}

	updated, err := loadItem(ctx, repo, item.ID)
	if err != nil {
		return nil, err
	}

	movement := &models.InventoryMovement{
		ItemID:        item.ID,
		OrderID:       change.OrderID,
		Reason:        change.Reason,
		Delta:         change.Delta,
		QuantityAfter: updated.Quantity,
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.InsertMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record inventory movement")
	}
	if a.metrics != nil {
		a.metrics.IncAdjustment(change.Reason.String())
	}

	return &StockResult{ItemID: item.ID, Delta: change.Delta, QuantityAfter: updated.Quantity}, nil
}

func (a *Adjuster) rejectInsufficient(ctx context.Context, repo Repository, itemID string, change StockChange) error {
	if a.metrics != nil {
		a.metrics.IncStockRejection(change.Reason.String())
	}
	current, err := loadItem(ctx, repo, itemID)
	if err != nil {
		return err
	}
	requested := change.Delta.Neg()
	return InsufficientStock(itemID, current.Quantity, requested)
}

const decimalScale = 4

// quantity and price columns are numeric(18,4)
var decimalLimit = decimal.New(1, 18-decimalScale)

// CheckDecimal rejects values the quantity and price columns cannot store exactly.
func CheckDecimal(field string, value decimal.Decimal) error {
	if !value.Equal(value.Truncate(decimalScale)) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s must have at most %d decimal places", field, decimalScale)
	}
	if value.Abs().GreaterThanOrEqual(decimalLimit) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be less than %s", field, decimalLimit.String())
	}
	return nil
}

// InsufficientStock builds the CONFLICT error returned when a decrement exceeds on-hand stock.
func InsufficientStock(itemID string, available, requested decimal.Decimal) error {
	return pkgerrors.Newf(pkgerrors.CodeConflict,
		"insufficient stock for item %s: available %s, requested %s",
		itemID, available.String(), requested.String(),
	).WithDetails(map[string]any{
		"item_id":   itemID,
		"available": available,
		"requested": requested,
	})
}

func loadItem(ctx context.Context, repo Repository, id string) (*models.Item, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "item %s not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}
