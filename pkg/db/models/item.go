package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

// Item is a stock-keeping unit held in the warehouse.
type Item struct {
	ID        string           `gorm:"column:id;type:varchar(32);primaryKey"`
	Name      string           `gorm:"column:name;type:varchar(255);not null"`
	Price     decimal.Decimal  `gorm:"column:price;type:numeric(18,4);not null"`
	Quantity  decimal.Decimal  `gorm:"column:quantity;type:numeric(18,4);not null;default:0"`
	Status    enums.ItemStatus `gorm:"column:status;type:varchar(16);not null;default:incoming"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Total returns the on-hand value of the item.
func (i Item) Total() decimal.Decimal {
	return i.Price.Mul(i.Quantity)
}
