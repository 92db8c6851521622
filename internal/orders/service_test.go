package orders

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehouse-backend/pkg/errors"
	"github.com/angelmondragon/warehouse-backend/pkg/pagination"
)

func TestCreateOutgoingOrderDecrementsStock(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "2", "50")
	ctx := context.Background()

	detail, err := h.svc.CreateOrder(ctx, CreateOrderInput{
		Type:  enums.OrderTypeOutgoing,
		Lines: []LineInput{line("INV-00001", "10")},
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-00001", detail.ID)
	require.Equal(t, enums.OrderStatusPending, detail.Status)
	require.Len(t, detail.Lines, 1)
	requireDecimal(t, "20", detail.Total)
	requireDecimal(t, "40", h.quantity(t, "INV-00001"))

	require.Equal(t, []enums.OutboxEventType{enums.EventOrderCreated}, h.eventTypes(t))
	require.EqualValues(t, 1, h.countRows(t, &models.InventoryMovement{}))

	created, err := testutil.GatherAndCount(h.reg, "warehouse_orders_created_total")
	require.NoError(t, err)
	require.Equal(t, 1, created)
}

func TestCreateIncomingOrderIncrementsStock(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "1", "5")
	h.seedItem(t, "INV-00002", "1", "0")

	detail, err := h.svc.CreateOrder(context.Background(), CreateOrderInput{
		Type:  enums.OrderTypeIncoming,
		Lines: []LineInput{line("INV-00002", "3.5"), line("INV-00001", "5")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, detail.ItemCount)
	require.Equal(t, "INV-00001", detail.Lines[0].ItemID)
	requireDecimal(t, "10", h.quantity(t, "INV-00001"))
	requireDecimal(t, "3.5", h.quantity(t, "INV-00002"))
}

func TestCreateOrderIsAtomic(t *testing.T) {
	cases := map[string]struct {
		lines []LineInput
		code  pkgerrors.Code
	}{
		"insufficient stock": {
			lines: []LineInput{line("INV-00001", "1"), line("INV-00002", "99")},
			code:  pkgerrors.CodeConflict,
		},
		"unknown item": {
			lines: []LineInput{line("INV-00001", "1"), line("INV-00404", "1")},
			code:  pkgerrors.CodeNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.seedItem(t, "INV-00001", "1", "10")
			h.seedItem(t, "INV-00002", "1", "10")

			_, err := h.svc.CreateOrder(context.Background(), CreateOrderInput{Type: enums.OrderTypeOutgoing, Lines: tc.lines})
			require.True(t, pkgerrors.IsCode(err, tc.code), err)

			requireDecimal(t, "10", h.quantity(t, "INV-00001"))
			requireDecimal(t, "10", h.quantity(t, "INV-00002"))
			require.Zero(t, h.countRows(t, &models.Order{}))
			require.Zero(t, h.countRows(t, &models.OrderItem{}))
			require.Zero(t, h.countRows(t, &models.InventoryMovement{}))
			require.Zero(t, h.countRows(t, &models.OutboxEvent{}))
		})
	}
}

func TestCreateOrderRollsBackWhenOutboxFails(t *testing.T) {
	h := newHarness(t, withEmitter(func(*gorm.DB) outboxPublisher { return failingEmitter{} }))
	h.seedItem(t, "INV-00001", "1", "10")

	_, err := h.svc.CreateOrder(context.Background(), CreateOrderInput{
		Type:  enums.OrderTypeOutgoing,
		Lines: []LineInput{line("INV-00001", "4")},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	requireDecimal(t, "10", h.quantity(t, "INV-00001"))
	require.Zero(t, h.countRows(t, &models.Order{}))
}

func TestCreateOrderValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cases := map[string]CreateOrderInput{
		"bad type":      {Type: "sideways", Lines: []LineInput{line("INV-00001", "1")}},
		"no lines":      {Type: enums.OrderTypeIncoming},
		"zero quantity": {Type: enums.OrderTypeIncoming, Lines: []LineInput{line("INV-00001", "0")}},
		"blank item":    {Type: enums.OrderTypeIncoming, Lines: []LineInput{line(" ", "1")}},
		"excess scale":  {Type: enums.OrderTypeIncoming, Lines: []LineInput{line("INV-00001", "0.00001")}},
		"duplicate": {Type: enums.OrderTypeIncoming, Lines: []LineInput{
			line("INV-00001", "1"), line("INV-00001", "2"),
		}},
	}
	for name, input := range cases {
		_, err := h.svc.CreateOrder(ctx, input)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), name)
	}
}

func TestUpdateOrderItemsRebalancesStock(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "1", "50")
	h.seedItem(t, "INV-00002", "1", "50")
	h.seedItem(t, "INV-00003", "1", "50")
	h.seedItem(t, "INV-00004", "1", "50")
	ctx := context.Background()

	order, err := h.svc.CreateOrder(ctx, CreateOrderInput{
		Type:  enums.OrderTypeOutgoing,
		Lines: []LineInput{line("INV-00001", "10"), line("INV-00002", "10"), line("INV-00003", "10")},
	})
	require.NoError(t, err)

	detail, err := h.svc.UpdateOrderItems(ctx, order.ID, []LineInput{
		line("INV-00001", "15"),
		line("INV-00003", "10"),
		line("INV-00004", "5"),
	})
	require.NoError(t, err)
	require.Len(t, detail.Lines, 3)

	requireDecimal(t, "35", h.quantity(t, "INV-00001"))
	requireDecimal(t, "50", h.quantity(t, "INV-00002"))
	requireDecimal(t, "40", h.quantity(t, "INV-00003"))
	requireDecimal(t, "45", h.quantity(t, "INV-00004"))

	var lines []models.OrderItem
	require.NoError(t, h.db.Where("order_id = ?", order.ID).Order("item_id").Find(&lines).Error)
	require.Len(t, lines, 3)
	require.Equal(t, "INV-00004", lines[2].ItemID)

	require.Equal(t, []enums.OutboxEventType{enums.EventOrderCreated, enums.EventOrderItemsUpdated}, h.eventTypes(t))
}

func TestUpdateOrderItemsRejectsInsufficientStock(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "1", "10")
	ctx := context.Background()

	order, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeOutgoing, Lines: []LineInput{line("INV-00001", "5")}})
	require.NoError(t, err)

	_, err = h.svc.UpdateOrderItems(ctx, order.ID, []LineInput{line("INV-00001", "11")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	requireDecimal(t, "5", h.quantity(t, "INV-00001"))

	got, err := h.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	requireDecimal(t, "5", got.Lines[0].Quantity)
}

func TestUpdateOrderItemsStateChecks(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "1", "10")
	ctx := context.Background()

	_, err := h.svc.UpdateOrderItems(ctx, "ORD-00404", []LineInput{line("INV-00001", "1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, h.db.Create(&models.Order{ID: "ORD-00050", Type: enums.OrderTypeIncoming, Status: enums.OrderStatusPending}).Error)
	_, err = h.svc.UpdateOrderItems(ctx, "ORD-00050", []LineInput{line("INV-00001", "1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "empty order")

	order, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeIncoming, Lines: []LineInput{line("INV-00001", "1")}})
	require.NoError(t, err)
	_, err = h.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	_, err = h.svc.UpdateOrderItems(ctx, order.ID, []LineInput{line("INV-00001", "2")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "canceled order")
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "1", "10")
	ctx := context.Background()

	order, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeOutgoing, Lines: []LineInput{line("INV-00001", "4")}})
	require.NoError(t, err)

	same, err := h.svc.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPending)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, same.Status)

	done, err := h.svc.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, done.Status)
	requireDecimal(t, "6", h.quantity(t, "INV-00001"))

	_, err = h.svc.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPending)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	_, err = h.svc.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCanceled)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = h.svc.UpdateOrderStatus(ctx, order.ID, "shipped")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.Equal(t, []enums.OutboxEventType{enums.EventOrderCreated, enums.EventOrderStatusChanged}, h.eventTypes(t))
}

func TestCancelOrderKeepsStockByDefault(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "1", "10")
	ctx := context.Background()

	order, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeOutgoing, Lines: []LineInput{line("INV-00001", "4")}})
	require.NoError(t, err)

	canceled, err := h.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, canceled.Status)
	requireDecimal(t, "6", h.quantity(t, "INV-00001"))

	again, err := h.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, again.Status)

	require.Equal(t, []enums.OutboxEventType{
		enums.EventOrderCreated,
		enums.EventOrderStatusChanged,
		enums.EventOrderCanceled,
	}, h.eventTypes(t))
}

func TestCancelOrderRestocksWhenEnabled(t *testing.T) {
	h := newHarness(t, withRestock())
	h.seedItem(t, "INV-00001", "1", "10")
	ctx := context.Background()

	order, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeOutgoing, Lines: []LineInput{line("INV-00001", "4")}})
	require.NoError(t, err)
	requireDecimal(t, "6", h.quantity(t, "INV-00001"))

	_, err = h.svc.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCanceled)
	require.NoError(t, err)
	requireDecimal(t, "10", h.quantity(t, "INV-00001"))

	var movement models.InventoryMovement
	require.NoError(t, h.db.Where("reason = ?", enums.MovementReasonOrderCanceled).Take(&movement).Error)
	requireDecimal(t, "4", movement.Delta)
}

func TestListOrdersFiltersAndPaginates(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "2.5", "100")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeIncoming, Lines: []LineInput{line("INV-00001", "2")}})
		require.NoError(t, err)
	}
	_, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeOutgoing, Lines: []LineInput{line("INV-00001", "1")}})
	require.NoError(t, err)
	_, err = h.svc.UpdateOrderStatus(ctx, "ORD-00001", enums.OrderStatusCompleted)
	require.NoError(t, err)

	page, err := h.svc.ListOrders(ctx, ListFilters{}, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Orders, 3)
	require.Equal(t, "ORD-00004", page.Orders[0].ID)
	require.Equal(t, 1, page.Orders[0].ItemCount)
	requireDecimal(t, "2.5", page.Orders[0].Total)
	require.NotEmpty(t, page.NextCursor)

	rest, err := h.svc.ListOrders(ctx, ListFilters{}, pagination.Params{Limit: 3, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	require.Equal(t, "ORD-00001", rest.Orders[0].ID)
	require.Empty(t, rest.NextCursor)

	incoming := enums.OrderTypeIncoming
	filtered, err := h.svc.ListOrders(ctx, ListFilters{Type: &incoming}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 3)

	completed := enums.OrderStatusCompleted
	filtered, err = h.svc.ListOrders(ctx, ListFilters{Status: &completed}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 1)
	requireDecimal(t, "5", filtered.Orders[0].Total)

	bad := enums.OrderType("sideways")
	_, err = h.svc.ListOrders(ctx, ListFilters{Type: &bad}, pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetOrder(t *testing.T) {
	h := newHarness(t)
	h.seedItem(t, "INV-00001", "3", "10")
	ctx := context.Background()

	_, err := h.svc.GetOrder(ctx, "ORD-00404")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	created, err := h.svc.CreateOrder(ctx, CreateOrderInput{Type: enums.OrderTypeIncoming, Lines: []LineInput{line("INV-00001", "2")}})
	require.NoError(t, err)

	detail, err := h.svc.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Item INV-00001", detail.Lines[0].Name)
	requireDecimal(t, "3", detail.Lines[0].Price)
	requireDecimal(t, "6", detail.Total)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil, Options{})
	require.Error(t, err)
}
