package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db"
	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
	"github.com/angelmondragon/warehouse-backend/pkg/metrics"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox"
)

type harness struct {
	db      *gorm.DB
	repo    Repository
	stock   *Adjuster
	svc     Service
	metrics *metrics.WarehouseMetrics
	reg     *prometheus.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	reg := prometheus.NewRegistry()
	m := metrics.NewWarehouseMetrics(reg)
	repo := NewRepository(conn)
	stock, err := NewAdjuster(repo, m)
	require.NoError(t, err)
	emitter := outbox.NewService(outbox.NewRepository(conn), logger.Nop(), "test")
	svc, err := NewService(repo, db.NewFromConn(conn), emitter, stock, logger.Nop())
	require.NoError(t, err)

	return &harness{db: conn, repo: repo, stock: stock, svc: svc, metrics: m, reg: reg}
}

func (h *harness) seedItem(t *testing.T, id string, price, qty string, status enums.ItemStatus) models.Item {
	t.Helper()
	item := models.Item{
		ID:       id,
		Name:     "Item " + id,
		Price:    decimal.RequireFromString(price),
		Quantity: decimal.RequireFromString(qty),
		Status:   status,
	}
	require.NoError(t, h.db.Create(&item).Error)
	return item
}

func (h *harness) quantity(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	item, err := h.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func (h *harness) outboxEvents(t *testing.T) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, h.db.Order("rowid ASC").Find(&rows).Error)
	return rows
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}
