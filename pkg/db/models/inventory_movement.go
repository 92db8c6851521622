package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

// InventoryMovement is an append-only record of a quantity change on an item.
type InventoryMovement struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ItemID        string               `gorm:"column:item_id;type:varchar(32);not null;index"`
	OrderID       *string              `gorm:"column:order_id;type:varchar(32)"`
	Reason        enums.MovementReason `gorm:"column:reason;type:varchar(32);not null"`
	Delta         decimal.Decimal      `gorm:"column:delta;type:numeric(18,4);not null"`
	QuantityAfter decimal.Decimal      `gorm:"column:quantity_after;type:numeric(18,4);not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an identifier when the caller did not.
func (m *InventoryMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
