package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	"github.com/angelmondragon/warehouse-backend/pkg/pagination"
)

// Repository defines persistence operations for items and their movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Item, string, error)
	FindByID(ctx context.Context, id string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, id string, updates map[string]any) error
	AddQuantity(ctx context.Context, id string, delta decimal.Decimal) (bool, error)
	InsertMovement(ctx context.Context, movement *models.InventoryMovement) error
	ListMovements(ctx context.Context, itemID string, params pagination.Params) ([]models.InventoryMovement, string, error)
	CountOrderLines(ctx context.Context, itemID string) (int64, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Item, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	pageSize := pagination.NormalizeLimit(params.Limit)

	qb := r.db.WithContext(ctx).Model(&models.Item{})
	if name := strings.TrimSpace(filters.Name); name != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	} else {
		qb = qb.Where("status <> ?", enums.ItemStatusDeleted)
	}
	if cursor != nil {
		qb = qb.Where("id > ?", cursor.ID)
	}

	var rows []models.Item
	if err := qb.Order("id ASC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		next = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}
	return rows, next, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddQuantity applies delta to the on-hand quantity. A negative delta only
// applies when enough stock is on hand; false means no row matched.
func (r *repository) AddQuantity(ctx context.Context, id string, delta decimal.Decimal) (bool, error) {
	qb := r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id)
	if delta.IsNegative() {
		qb = qb.Where("quantity >= ?", delta.Neg())
	}
	res := qb.UpdateColumns(map[string]any{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) InsertMovement(ctx context.Context, movement *models.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, itemID string, params pagination.Params) ([]models.InventoryMovement, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil && cursor.CreatedAt.IsZero() {
		return nil, "", fmt.Errorf("%w: movement cursor requires a timestamp", pagination.ErrInvalidCursor)
	}
	pageSize := pagination.NormalizeLimit(params.Limit)

	qb := r.db.WithContext(ctx).Where("item_id = ?", itemID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryMovement
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID.String()})
	}
	return rows, next, nil
}

func (r *repository) CountOrderLines(ctx context.Context, itemID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, err
}

// Delete removes the item row together with its movement history.
func (r *repository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("item_id = ?", id).Delete(&models.InventoryMovement{}).Error; err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
