package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

// ListFilters narrow the item list. Deleted items are hidden unless Status asks for them.
type ListFilters struct {
	Name   string
	Status *enums.ItemStatus
}

// ItemView is the API representation of an item.
type ItemView struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Status    enums.ItemStatus `json:"status"`
	Total     decimal.Decimal  `json:"total"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ItemList wraps a page of items plus the next page cursor.
type ItemList struct {
	Items      []ItemView `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CreateItemInput carries the fields accepted when creating an item.
type CreateItemInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity *decimal.Decimal
	Status   *enums.ItemStatus
}

// UpdateItemInput carries a partial item edit. Nil fields are left untouched.
type UpdateItemInput struct {
	Name     *string
	Price    *decimal.Decimal
	Quantity *decimal.Decimal
	Status   *enums.ItemStatus
}

// DeleteResult reports how an item was removed.
type DeleteResult struct {
	ID     string           `json:"id"`
	Hard   bool             `json:"hard"`
	Status enums.ItemStatus `json:"status,omitempty"`
}

// MovementView is the API representation of an inventory movement.
type MovementView struct {
	ID            uuid.UUID            `json:"id"`
	ItemID        string               `json:"item_id"`
	OrderID       *string              `json:"order_id,omitempty"`
	Reason        enums.MovementReason `json:"reason"`
	Delta         decimal.Decimal      `json:"delta"`
	QuantityAfter decimal.Decimal      `json:"quantity_after"`
	CreatedAt     time.Time            `json:"created_at"`
}

// MovementList wraps a page of movements plus the next page cursor.
type MovementList struct {
	Movements  []MovementView `json:"movements"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// StockChange requests a signed quantity change on one item.
type StockChange struct {
	ItemID  string
	Delta   decimal.Decimal
	OrderID *string
	Reason  enums.MovementReason
}

// StockResult reports the applied change and the resulting on-hand quantity.
type StockResult struct {
	ItemID        string
	Delta         decimal.Decimal
	QuantityAfter decimal.Decimal
}

// ToItemView maps a persisted item to its API shape.
func ToItemView(item models.Item) ItemView {
	return ItemView{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Status:    item.Status,
		Total:     item.Total(),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toMovementView(m models.InventoryMovement) MovementView {
	return MovementView{
		ID:            m.ID,
		ItemID:        m.ItemID,
		OrderID:       m.OrderID,
		Reason:        m.Reason,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		CreatedAt:     m.CreatedAt,
	}
}
