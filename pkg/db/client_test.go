package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/warehouse-backend/pkg/config"
)

type testModel struct {
	ID   int
	Code string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromConn(db)

	ctx := context.Background()
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Code: "committed"}).Error
	}))

	var count int64
	require.NoError(t, db.Model(&testModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Code: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	require.NoError(t, db.Model(&testModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "rollback should leave one record")
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	client := NewFromConn(db)

	require.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Code: "panic"}).Error; err != nil {
				return err
			}
			panic("kaboom")
		})
	})

	var count int64
	require.NoError(t, db.Model(&testModel{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPing(t *testing.T) {
	client := NewFromConn(newTestDB(t))
	require.NoError(t, client.Ping(context.Background()))
	require.Equal(t, config.DriverSQLite, client.Driver())
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{DSN: "x", Driver: "mysql"}, nil)
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: config.DriverSQLite}, nil)
	require.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&testModel{Code: "dup"}).Error)
	err := db.Create(&testModel{Code: "dup"}).Error
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err, ""))
	require.True(t, IsUniqueViolation(err, "test_models.code"))
	require.False(t, IsUniqueViolation(err, "other_constraint"))

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "items_pkey"}
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), "items_pkey"))
	require.False(t, IsUniqueViolation(pgErr, "orders_pkey"))

	require.False(t, IsUniqueViolation(nil, ""))
	require.False(t, IsUniqueViolation(errors.New("connection refused"), ""))
}
