package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/internal/inventory"
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
	svc     Service
	reg     *prometheus.Registry
	emitter outboxPublisher
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	opts    Options
	emitter func(conn *gorm.DB) outboxPublisher
}

func withRestock() harnessOption {
	return func(c *harnessConfig) { c.opts.RestockOnCancel = true }
}

func withEmitter(fn func(conn *gorm.DB) outboxPublisher) harnessOption {
	return func(c *harnessConfig) { c.emitter = fn }
}

func newHarness(t *testing.T, options ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{
		emitter: func(conn *gorm.DB) outboxPublisher {
			return outbox.NewService(outbox.NewRepository(conn), logger.Nop(), "test")
		},
	}
	for _, opt := range options {
		opt(&cfg)
	}

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	reg := prometheus.NewRegistry()
	m := metrics.NewWarehouseMetrics(reg)
	stock, err := inventory.NewAdjuster(inventory.NewRepository(conn), m)
	require.NoError(t, err)

	repo := NewRepository(conn)
	emitter := cfg.emitter(conn)
	svc, err := NewService(repo, db.NewFromConn(conn), emitter, stock, m, logger.Nop(), cfg.opts)
	require.NoError(t, err)

	return &harness{db: conn, repo: repo, svc: svc, reg: reg, emitter: emitter}
}

func (h *harness) seedItem(t *testing.T, id, price, qty string) {
	t.Helper()
	require.NoError(t, h.db.Create(&models.Item{
		ID:       id,
		Name:     "Item " + id,
		Price:    decimal.RequireFromString(price),
		Quantity: decimal.RequireFromString(qty),
		Status:   enums.ItemStatusActive,
	}).Error)
}

func (h *harness) quantity(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	var item models.Item
	require.NoError(t, h.db.Where("id = ?", id).Take(&item).Error)
	return item.Quantity
}

func (h *harness) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Model(model).Count(&count).Error)
	return count
}

func (h *harness) eventTypes(t *testing.T) []enums.OutboxEventType {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, h.db.Order("rowid ASC").Find(&rows).Error)
	out := make([]enums.OutboxEventType, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.EventType)
	}
	return out
}

func line(itemID, qty string) LineInput {
	return LineInput{ItemID: itemID, Quantity: decimal.RequireFromString(qty)}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox unavailable")
}
