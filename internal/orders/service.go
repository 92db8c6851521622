package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/internal/inventory"
	"github.com/angelmondragon/warehouse-backend/internal/sequence"
	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehouse-backend/pkg/errors"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/warehouse-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type orderMetrics interface {
	IncOrderCreated(orderType string)
	IncStatusTransition(from, to string)
}

// Service defines the order transaction processor.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDetail, error)
	UpdateOrderItems(ctx context.Context, orderID string, lines []LineInput) (*OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*OrderDetail, error)
	CancelOrder(ctx context.Context, orderID string) (*OrderDetail, error)
	ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
	GetOrder(ctx context.Context, orderID string) (*OrderDetail, error)
}

// Options toggles optional order behavior.
type Options struct {
	// RestockOnCancel reverses the order's stock effect when it is canceled.
	RestockOnCancel bool
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	stock   inventory.StockApplier
	metrics orderMetrics
	logg    *logger.Logger
	opts    Options
}

// NewService builds the order service with the required dependencies. metrics may be nil.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, stock inventory.StockApplier, metrics orderMetrics, logg *logger.Logger, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		stock:   stock,
		metrics: metrics,
		logg:    logg,
		opts:    opts,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDetail, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order type %q", input.Type)
	}
	lines, err := normalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}

	var detail *OrderDetail
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderID, err := sequence.Next(ctx, tx, sequence.Orders)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order id")
		}

		order := &models.Order{
			ID:     orderID,
			Type:   input.Type,
			Status: enums.OrderStatusPending,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		stock := make([]payloads.StockChange, 0, len(lines))
		for _, line := range lines {
			result, err := s.stock.Apply(ctx, tx, inventory.StockChange{
				ItemID:  line.ItemID,
				Delta:   signed(input.Type, line.Quantity),
				OrderID: &orderID,
				Reason:  enums.MovementReasonOrderCreated,
			})
			if err != nil {
				return err
			}
			stock = append(stock, stockPayload(result))

			if err := repo.CreateLine(ctx, &models.OrderItem{
				OrderID:  orderID,
				ItemID:   line.ItemID,
				Quantity: line.Quantity,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line")
			}
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.OrderCreatedEvent{
				OrderID: orderID,
				Type:    input.Type,
				Status:  enums.OrderStatusPending,
				Lines:   linePayloads(lines),
				Stock:   stock,
			},
		}); err != nil {
			return err
		}

		detail, err = s.loadDetail(ctx, repo, orderID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "create order")
	}

	if s.metrics != nil {
		s.metrics.IncOrderCreated(input.Type.String())
	}
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, detail.ID), map[string]any{
		"order_type": input.Type,
		"line_count": len(lines),
	})
	s.logg.Info(logCtx, "order created")
	return detail, nil
}

func (s *service) UpdateOrderItems(ctx context.Context, orderID string, lines []LineInput) (*OrderDetail, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return nil, err
	}
	next, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}

	var detail *OrderDetail
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.findOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order %s is %s and cannot be edited", orderID, order.Status)
		}
		if len(order.Items) == 0 {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order %s has no items", orderID)
		}

		plan := diffLines(order.Items, next)
		stock := make([]payloads.StockChange, 0, len(plan.changes))
		for _, change := range plan.changes {
			result, err := s.stock.Apply(ctx, tx, inventory.StockChange{
				ItemID:  change.itemID,
				Delta:   signed(order.Type, change.delta),
				OrderID: &orderID,
				Reason:  enums.MovementReasonOrderItemsUpdated,
			})
			if err != nil {
				return err
			}
			stock = append(stock, stockPayload(result))
		}

		if err := repo.DeleteLines(ctx, orderID, plan.removed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove order lines")
		}
		for _, line := range plan.updated {
			if err := repo.UpdateLineQuantity(ctx, orderID, line.ItemID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
			}
		}
		for _, line := range plan.added {
			if err := repo.CreateLine(ctx, &models.OrderItem{OrderID: orderID, ItemID: line.ItemID, Quantity: line.Quantity}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line")
			}
		}
		if err := repo.TouchOrder(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderItemsUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.OrderItemsUpdatedEvent{
				OrderID: orderID,
				Lines:   linePayloads(next),
				Removed: plan.removed,
				Stock:   stock,
			},
		}); err != nil {
			return err
		}

		detail, err = s.loadDetail(ctx, repo, orderID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "update order items")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, orderID), "order items updated")
	return detail, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*OrderDetail, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", status)
	}
	if status == enums.OrderStatusCanceled {
		return s.CancelOrder(ctx, orderID)
	}

	var (
		detail  *OrderDetail
		from    enums.OrderStatus
		changed bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.findOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if from == status {
			detail = toOrderDetail(*order)
			return nil
		}
		if !from.CanTransitionTo(status) {
			return transitionError(orderID, from, status)
		}
		if err := s.transition(ctx, tx, repo, orderID, from, status); err != nil {
			return err
		}
		changed = true
		detail, err = s.loadDetail(ctx, repo, orderID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "update order status")
	}

	if changed {
		s.recordTransition(ctx, orderID, from, status)
	}
	return detail, nil
}

// CancelOrder marks a pending order canceled. Canceling an already canceled
// order is a no-op; completed orders cannot be canceled.
func (s *service) CancelOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return nil, err
	}

	var (
		detail  *OrderDetail
		from    enums.OrderStatus
		changed bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.findOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if from == enums.OrderStatusCanceled {
			detail = toOrderDetail(*order)
			return nil
		}
		if !from.CanTransitionTo(enums.OrderStatusCanceled) {
			return transitionError(orderID, from, enums.OrderStatusCanceled)
		}

		var stock []payloads.StockChange
		if s.opts.RestockOnCancel {
			for _, line := range order.Items {
				result, err := s.stock.Apply(ctx, tx, inventory.StockChange{
					ItemID:  line.ItemID,
					Delta:   signed(order.Type, line.Quantity).Neg(),
					OrderID: &orderID,
					Reason:  enums.MovementReasonOrderCanceled,
				})
				if err != nil {
					return err
				}
				stock = append(stock, stockPayload(result))
			}
		}

		if err := s.transition(ctx, tx, repo, orderID, from, enums.OrderStatusCanceled); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.OrderCanceledEvent{
				OrderID:    orderID,
				Restocked:  s.opts.RestockOnCancel,
				Stock:      stock,
				CanceledAt: time.Now().UTC(),
			},
		}); err != nil {
			return err
		}

		changed = true
		detail, err = s.loadDetail(ctx, repo, orderID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "cancel order")
	}

	if changed {
		s.recordTransition(ctx, orderID, from, enums.OrderStatusCanceled)
	}
	return detail, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", *filters.Status)
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order type %q", *filters.Type)
	}
	list, err := s.repo.ListOrders(ctx, filters, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	orderID, err := normalizeOrderID(orderID)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, s.repo, orderID)
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, repo Repository, orderID string, from, to enums.OrderStatus) error {
	ok, err := repo.UpdateStatus(ctx, orderID, from, to)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order %s is no longer %s", orderID, from)
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Data: payloads.OrderStatusChangedEvent{
			OrderID: orderID,
			From:    from,
			To:      to,
		},
	})
}

func (s *service) recordTransition(ctx context.Context, orderID string, from, to enums.OrderStatus) {
	if s.metrics != nil {
		s.metrics.IncStatusTransition(from.String(), to.String())
	}
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID), map[string]any{
		"from": from,
		"to":   to,
	})
	s.logg.Info(logCtx, "order status changed")
}

func (s *service) findOrder(ctx context.Context, repo Repository, orderID string) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadDetail(ctx context.Context, repo Repository, orderID string) (*OrderDetail, error) {
	order, err := s.findOrder(ctx, repo, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderDetail(*order), nil
}

func transitionError(orderID string, from, to enums.OrderStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order %s cannot move from %s to %s", orderID, from, to).
		WithDetails(map[string]any{"order_id": orderID, "from": from, "to": to})
}

// signed maps a line quantity to the stock delta for the order direction.
func signed(orderType enums.OrderType, quantity decimal.Decimal) decimal.Decimal {
	if orderType == enums.OrderTypeOutgoing {
		return quantity.Neg()
	}
	return quantity
}

// normalizeLines validates requested lines and returns them sorted by item id
// so concurrent orders touch item rows in the same order.
func normalizeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line is required")
	}
	seen := make(map[string]struct{}, len(lines))
	out := make([]LineInput, 0, len(lines))
	for i, line := range lines {
		itemID := strings.TrimSpace(line.ItemID)
		if itemID == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "lines[%d]: item id required", i)
		}
		if !line.Quantity.IsPositive() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "lines[%d]: quantity must be greater than zero", i)
		}
		if err := inventory.CheckDecimal(fmt.Sprintf("lines[%d].quantity", i), line.Quantity); err != nil {
			return nil, err
		}
		if _, dup := seen[itemID]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "item %s appears more than once", itemID)
		}
		seen[itemID] = struct{}{}
		out = append(out, LineInput{ItemID: itemID, Quantity: line.Quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func normalizeOrderID(orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return orderID, nil
}

type lineDelta struct {
	itemID string
	delta  decimal.Decimal
}

type linePlan struct {
	changes []lineDelta
	removed []string
	updated []LineInput
	added   []LineInput
}

// diffLines compares the persisted lines with the requested set. Deltas are
// unsigned line quantity changes; callers apply the order direction.
func diffLines(current []models.OrderItem, next []LineInput) linePlan {
	existing := make(map[string]decimal.Decimal, len(current))
	for _, line := range current {
		existing[line.ItemID] = line.Quantity
	}

	var plan linePlan
	requested := make(map[string]struct{}, len(next))
	for _, line := range next {
		requested[line.ItemID] = struct{}{}
		prev, ok := existing[line.ItemID]
		switch {
		case !ok:
			plan.added = append(plan.added, line)
			plan.changes = append(plan.changes, lineDelta{itemID: line.ItemID, delta: line.Quantity})
		case !prev.Equal(line.Quantity):
			plan.updated = append(plan.updated, line)
			plan.changes = append(plan.changes, lineDelta{itemID: line.ItemID, delta: line.Quantity.Sub(prev)})
		}
	}
	for _, line := range current {
		if _, ok := requested[line.ItemID]; ok {
			continue
		}
		plan.removed = append(plan.removed, line.ItemID)
		plan.changes = append(plan.changes, lineDelta{itemID: line.ItemID, delta: line.Quantity.Neg()})
	}
	sort.Slice(plan.changes, func(i, j int) bool { return plan.changes[i].itemID < plan.changes[j].itemID })
	sort.Strings(plan.removed)
	return plan
}

func linePayloads(lines []LineInput) []payloads.OrderLine {
	out := make([]payloads.OrderLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, payloads.OrderLine{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return out
}

func stockPayload(result *inventory.StockResult) payloads.StockChange {
	return payloads.StockChange{
		ItemID:        result.ItemID,
		Delta:         result.Delta,
		QuantityAfter: result.QuantityAfter,
	}
}
