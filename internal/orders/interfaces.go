package orders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	"github.com/angelmondragon/warehouse-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and order lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLine(ctx context.Context, line *models.OrderItem) error
	UpdateLineQuantity(ctx context.Context, orderID, itemID string, quantity decimal.Decimal) error
	DeleteLines(ctx context.Context, orderID string, itemIDs []string) error
	FindOrder(ctx context.Context, orderID string) (*models.Order, error)
	TouchOrder(ctx context.Context, orderID string) error
	UpdateStatus(ctx context.Context, orderID string, from, to enums.OrderStatus) (bool, error)
	ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
}
