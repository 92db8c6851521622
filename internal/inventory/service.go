package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/internal/sequence"
	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehouse-backend/pkg/errors"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/warehouse-backend/pkg/pagination"
)

const maxNameLength = 255

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes item reads and writes.
type Service interface {
	ListItems(ctx context.Context, filters ListFilters, params pagination.Params) (*ItemList, error)
	GetItem(ctx context.Context, id string) (*ItemView, error)
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemView, error)
	UpdateItem(ctx context.Context, id string, input UpdateItemInput) (*ItemView, error)
	DeleteItem(ctx context.Context, id string, hard bool) (*DeleteResult, error)
	ListMovements(ctx context.Context, itemID string, params pagination.Params) (*MovementList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	stock  StockApplier
	logg   *logger.Logger
}

// NewService builds the inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, stock StockApplier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock applier required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, outbox: outbox, stock: stock, logg: logg}, nil
}

func (s *service) ListItems(ctx context.Context, filters ListFilters, params pagination.Params) (*ItemList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *filters.Status)
	}
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		if isCursorError(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	views := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ToItemView(row))
	}
	return &ItemList{Items: views, NextCursor: next}, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*ItemView, error) {
	id, err := normalizeItemID(id)
	if err != nil {
		return nil, err
	}
	item, err := loadItem(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	view := ToItemView(*item)
	return &view, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemView, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	quantity := decimal.Zero
	if input.Quantity != nil {
		if input.Quantity.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or greater")
		}
		if err := CheckDecimal("quantity", *input.Quantity); err != nil {
			return nil, err
		}
		quantity = *input.Quantity
	}
	status := enums.ItemStatusIncoming
	if input.Status != nil {
		if !input.Status.IsValid() || *input.Status == enums.ItemStatusDeleted {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *input.Status)
		}
		status = *input.Status
	}

	var created models.Item
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := sequence.Next(ctx, tx, sequence.Items)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate item id")
		}
		created = models.Item{
			ID:       id,
			Name:     name,
			Price:    input.Price,
			Quantity: quantity,
			Status:   status,
		}
		if err := s.repo.WithTx(tx).Create(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		return s.emitItemChanged(ctx, tx, enums.EventItemCreated, created, "", !quantity.IsZero())
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "create item")
	}

	s.logg.Info(s.logg.WithItemID(ctx, created.ID), "item created")
	view := ToItemView(created)
	return &view, nil
}

func (s *service) UpdateItem(ctx context.Context, id string, input UpdateItemInput) (*ItemView, error) {
	id, err := normalizeItemID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		updates["price"] = *input.Price
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *input.Status)
		}
		updates["status"] = *input.Status
	}
	if input.Quantity != nil {
		if input.Quantity.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or greater")
		}
		if err := CheckDecimal("quantity", *input.Quantity); err != nil {
			return nil, err
		}
	}
	if len(updates) == 0 && input.Quantity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.Item
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadItem(ctx, repo, id)
		if err != nil {
			return err
		}

		applyFields := func() error {
			if len(updates) == 0 {
				return nil
			}
			if err := repo.Update(ctx, id, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
			}
			return nil
		}

		// stock changes are refused on deleted items: restore before adjusting,
		// adjust before deleting
		if current.Status == enums.ItemStatusDeleted {
			if err := applyFields(); err != nil {
				return err
			}
		}

		quantityChanged := false
		if input.Quantity != nil && !input.Quantity.Equal(current.Quantity) {
			_, err := s.stock.Apply(ctx, tx, StockChange{
				ItemID: id,
				Delta:  input.Quantity.Sub(current.Quantity),
				Reason: enums.MovementReasonManualAdjustment,
			})
			if err != nil {
				return err
			}
			quantityChanged = true
		}

		if current.Status != enums.ItemStatusDeleted {
			if err := applyFields(); err != nil {
				return err
			}
		}

		updated, err = loadItem(ctx, repo, id)
		if err != nil {
			return err
		}
		return s.emitItemChanged(ctx, tx, enums.EventItemUpdated, *updated, current.Status, quantityChanged)
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "update item")
	}

	view := ToItemView(*updated)
	return &view, nil
}

func (s *service) DeleteItem(ctx context.Context, id string, hard bool) (*DeleteResult, error) {
	id, err := normalizeItemID(id)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{ID: id, Hard: hard}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadItem(ctx, repo, id); err != nil {
			return err
		}

		if hard {
			lines, err := repo.CountOrderLines(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count order lines")
			}
			if lines > 0 {
				return pkgerrors.Newf(pkgerrors.CodeConflict, "item %s is referenced by %d order lines", id, lines).
					WithDetails(map[string]any{"item_id": id, "order_lines": lines})
			}
			if err := repo.Delete(ctx, id); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
			}
		} else {
			if err := repo.Update(ctx, id, map[string]any{"status": enums.ItemStatusDeleted}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
			}
			result.Status = enums.ItemStatusDeleted
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemDeleted,
			AggregateType: enums.AggregateItem,
			AggregateID:   id,
			Data: payloads.ItemDeletedEvent{
				ItemID:    id,
				Hard:      hard,
				DeletedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "delete item")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"item_id": id, "hard": hard}), "item deleted")
	return result, nil
}

func (s *service) ListMovements(ctx context.Context, itemID string, params pagination.Params) (*MovementList, error) {
	itemID, err := normalizeItemID(itemID)
	if err != nil {
		return nil, err
	}
	if _, err := loadItem(ctx, s.repo, itemID); err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListMovements(ctx, itemID, params)
	if err != nil {
		if isCursorError(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}
	views := make([]MovementView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toMovementView(row))
	}
	return &MovementList{Movements: views, NextCursor: next}, nil
}

func (s *service) emitItemChanged(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, item models.Item, previous enums.ItemStatus, quantityChanged bool) error {
	event := payloads.ItemChangedEvent{
		Item: payloads.ItemSnapshot{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Status:   item.Status,
		},
		QuantityChanged: quantityChanged,
	}
	if previous != "" && previous != item.Status {
		event.PreviousStatus = previous
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateItem,
		AggregateID:   item.ID,
		Data:          event,
	})
}

func normalizeItemID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	return id, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}
	return name, nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	return CheckDecimal("price", price)
}

func isCursorError(err error) bool {
	return errors.Is(err, pagination.ErrInvalidCursor)
}
