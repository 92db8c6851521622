package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	"github.com/angelmondragon/warehouse-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.OrderItem) error {
	return r.db.WithContext(ctx).Omit("Item").Create(line).Error
}

func (r *repository) UpdateLineQuantity(ctx context.Context, orderID, itemID string, quantity decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND item_id = ?", orderID, itemID).
		UpdateColumn("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteLines(ctx context.Context, orderID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("order_id = ? AND item_id IN ?", orderID, itemIDs).
		Delete(&models.OrderItem{}).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_id ASC")
		}).
		Preload("Items.Item").
		Where("id = ?", orderID).
		Take(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) TouchOrder(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}

// UpdateStatus moves the order to `to` only while it is still in `from`.
func (r *repository) UpdateStatus(ctx context.Context, orderID string, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		UpdateColumns(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type orderSummaryRow struct {
	ID        string
	Type      enums.OrderType
	Status    enums.OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	ItemCount int
	Total     decimal.Decimal
}

func (r *repository) ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	pageSize := pagination.NormalizeLimit(params.Limit)

	qb := r.db.WithContext(ctx).
		Table("orders AS o").
		Select(`o.id, o.type, o.status, o.created_at, o.updated_at,
			COUNT(oi.item_id) AS item_count,
			COALESCE(SUM(oi.quantity * i.price), 0) AS total`).
		Joins("LEFT JOIN order_items oi ON oi.order_id = o.id").
		Joins("LEFT JOIN items i ON i.id = oi.item_id")

	if filters.Status != nil {
		qb = qb.Where("o.status = ?", *filters.Status)
	}
	if filters.Type != nil {
		qb = qb.Where("o.type = ?", *filters.Type)
	}
	if cursor != nil {
		qb = qb.Where("o.id < ?", cursor.ID)
	}

	var rows []orderSummaryRow
	err = qb.
		Group("o.id, o.type, o.status, o.created_at, o.updated_at").
		Order("o.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}
	for _, row := range rows {
		list.Orders = append(list.Orders, OrderSummary{
			ID:        row.ID,
			Type:      row.Type,
			Status:    row.Status,
			ItemCount: row.ItemCount,
			Total:     row.Total,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return list, nil
}
