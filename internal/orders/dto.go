package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

// LineInput is a requested order line.
type LineInput struct {
	ItemID   string
	Quantity decimal.Decimal
}

// CreateOrderInput carries the payload for a new order.
type CreateOrderInput struct {
	Type  enums.OrderType
	Lines []LineInput
}

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	Status *enums.OrderStatus
	Type   *enums.OrderType
}

// OrderSummary exposes the aggregated fields returned in the orders list.
type OrderSummary struct {
	ID        string            `json:"id"`
	Type      enums.OrderType   `json:"type"`
	Status    enums.OrderStatus `json:"status"`
	ItemCount int               `json:"item_count"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderLineView is a single order line with the item's current name and price.
type OrderLineView struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// OrderDetail is the full order view.
type OrderDetail struct {
	ID        string            `json:"id"`
	Type      enums.OrderType   `json:"type"`
	Status    enums.OrderStatus `json:"status"`
	Lines     []OrderLineView   `json:"lines"`
	ItemCount int               `json:"item_count"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toOrderDetail(order models.Order) *OrderDetail {
	detail := &OrderDetail{
		ID:        order.ID,
		Type:      order.Type,
		Status:    order.Status,
		Lines:     make([]OrderLineView, 0, len(order.Items)),
		ItemCount: len(order.Items),
		Total:     decimal.Zero,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, line := range order.Items {
		view := OrderLineView{ItemID: line.ItemID, Quantity: line.Quantity, Price: decimal.Zero}
		if line.Item != nil {
			view.Name = line.Item.Name
			view.Price = line.Item.Price
		}
		view.Total = view.Price.Mul(line.Quantity)
		detail.Total = detail.Total.Add(view.Total)
		detail.Lines = append(detail.Lines, view)
	}
	return detail
}
