package payloads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

// ItemSnapshot is the item state carried by item_created and item_updated.
type ItemSnapshot struct {
	ItemID   string           `json:"item_id"`
	Name     string           `json:"name"`
	Price    decimal.Decimal  `json:"price"`
	Quantity decimal.Decimal  `json:"quantity"`
	Status   enums.ItemStatus `json:"status"`
}

// ItemChangedEvent is emitted when an item is created or edited.
type ItemChangedEvent struct {
	Item            ItemSnapshot     `json:"item"`
	PreviousStatus  enums.ItemStatus `json:"previous_status,omitempty"`
	QuantityChanged bool             `json:"quantity_changed"`
}

// ItemDeletedEvent is emitted when an item is soft or hard deleted.
type ItemDeletedEvent struct {
	ItemID    string    `json:"item_id"`
	Hard      bool      `json:"hard"`
	DeletedAt time.Time `json:"deleted_at"`
}

// OrderLine is a single order line as carried on order events.
type OrderLine struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// StockChange reports a resulting on-hand quantity after an order touched an item.
type StockChange struct {
	ItemID        string          `json:"item_id"`
	Delta         decimal.Decimal `json:"delta"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
}

// OrderCreatedEvent is emitted once an order and its stock effect are committed.
type OrderCreatedEvent struct {
	OrderID string            `json:"order_id"`
	Type    enums.OrderType   `json:"type"`
	Status  enums.OrderStatus `json:"status"`
	Lines   []OrderLine       `json:"lines"`
	Stock   []StockChange     `json:"stock"`
}

// OrderItemsUpdatedEvent is emitted when an order's line set is replaced.
type OrderItemsUpdatedEvent struct {
	OrderID string        `json:"order_id"`
	Lines   []OrderLine   `json:"lines"`
	Removed []string      `json:"removed,omitempty"`
	Stock   []StockChange `json:"stock"`
}

// OrderStatusChangedEvent is emitted for every persisted status transition.
type OrderStatusChangedEvent struct {
	OrderID string            `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// OrderCanceledEvent is emitted when an order is canceled.
type OrderCanceledEvent struct {
	OrderID    string        `json:"order_id"`
	Restocked  bool          `json:"restocked"`
	Stock      []StockChange `json:"stock,omitempty"`
	CanceledAt time.Time     `json:"canceled_at"`
}
