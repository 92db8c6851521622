package sequence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:sequence_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestFormatAndParse(t *testing.T) {
	require.Equal(t, "INV-00001", Format(ItemPrefix, 1))
	require.Equal(t, "ORD-99999", Format(OrderPrefix, 99999))
	require.Equal(t, "ORD-100000", Format(OrderPrefix, 100000))

	n, err := Parse(ItemPrefix, "INV-00042")
	require.NoError(t, err)
	require.EqualValues(t, 42, n)

	n, err = Parse(OrderPrefix, "ORD-123456")
	require.NoError(t, err)
	require.EqualValues(t, 123456, n)

	for _, bad := range []string{"", "INV", "INV-", "ORD-00001", "INV-12a", "INV--1"} {
		_, err := Parse(ItemPrefix, bad)
		require.Error(t, err, bad)
	}
	require.True(t, Valid(ItemPrefix, "INV-00001"))
	require.False(t, Valid(ItemPrefix, "nope"))
}

func TestNextStartsAtOneOnEmptyTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := Next(ctx, db, Items)
	require.NoError(t, err)
	require.Equal(t, "INV-00001", id)

	id, err = Next(ctx, db, Items)
	require.NoError(t, err)
	require.Equal(t, "INV-00002", id)

	id, err = Next(ctx, db, Orders)
	require.NoError(t, err)
	require.Equal(t, "ORD-00001", id, "each counter is independent")
}

func TestNextSeedsFromExistingRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"INV-00003", "INV-00005", "INV-00001"} {
		require.NoError(t, db.Create(&models.Item{
			ID:       id,
			Name:     "seed " + id,
			Price:    decimal.NewFromInt(1),
			Quantity: decimal.Zero,
			Status:   enums.ItemStatusActive,
		}).Error)
	}

	id, err := Next(ctx, db, Items)
	require.NoError(t, err)
	require.Equal(t, "INV-00006", id)

	var seq models.IDSequence
	require.NoError(t, db.First(&seq, "name = ?", Items.Name).Error)
	require.EqualValues(t, 6, seq.LastValue)
}

func TestNextRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := Next(ctx, db, Orders)
	require.NoError(t, err)
	require.Equal(t, "ORD-00001", id)

	err = db.Transaction(func(tx *gorm.DB) error {
		reserved, err := Next(ctx, tx, Orders)
		require.NoError(t, err)
		require.Equal(t, "ORD-00002", reserved)
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	id, err = Next(ctx, db, Orders)
	require.NoError(t, err)
	require.Equal(t, "ORD-00002", id, "a rolled back reservation is reissued")
}

func TestNextRequiresTransaction(t *testing.T) {
	_, err := Next(context.Background(), nil, Items)
	require.Error(t, err)
}
