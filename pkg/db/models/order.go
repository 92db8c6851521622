package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

// Order groups order lines moving stock in a single direction.
type Order struct {
	ID        string            `gorm:"column:id;type:varchar(32);primaryKey"`
	Type      enums.OrderType   `gorm:"column:type;type:varchar(16);not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:varchar(16);not null;default:pending"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a single order line keyed by (order_id, item_id).
type OrderItem struct {
	OrderID  string          `gorm:"column:order_id;type:varchar(32);primaryKey"`
	ItemID   string          `gorm:"column:item_id;type:varchar(32);primaryKey"`
	Quantity decimal.Decimal `gorm:"column:quantity;type:numeric(18,4);not null"`
	Item     *Item           `gorm:"foreignKey:ItemID;references:ID"`
}

// TableName pins the order line table name.
func (OrderItem) TableName() string {
	return "order_items"
}
