// Package sequence issues the prefixed, zero-padded identifiers used for items
// and orders (INV-00001, ORD-00001).
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/angelmondragon/warehouse-backend/pkg/db"
	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
)

const (
	// Width is the minimum number of digits after the prefix.
	Width = 5

	ItemPrefix  = "INV"
	OrderPrefix = "ORD"
)

// Spec names a counter row and the table whose ids it issues.
type Spec struct {
	Name   string
	Prefix string
	Table  string
}

var (
	Items  = Spec{Name: "item", Prefix: ItemPrefix, Table: "items"}
	Orders = Spec{Name: "order", Prefix: OrderPrefix, Table: "orders"}
)

const maxSeedRetries = 3

// Next reserves and returns the next identifier for spec inside tx. The counter
// row is created on first use, seeded from the highest id already present in the
// target table so pre-existing data keeps counting up from where it left off.
func Next(ctx context.Context, tx *gorm.DB, spec Spec) (string, error) {
	if tx == nil {
		return "", errors.New("transaction required")
	}
	db := tx.WithContext(ctx)

	for attempt := 0; attempt < maxSeedRetries; attempt++ {
		value, ok, err := increment(db, spec.Name)
		if err != nil {
			return "", err
		}
		if ok {
			return Format(spec.Prefix, value), nil
		}

		seed, err := lastIssued(db, spec)
		if err != nil {
			return "", err
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.IDSequence{
			Name:      spec.Name,
			LastValue: seed + 1,
		})
		if res.Error != nil {
			if dbpkg.IsUniqueViolation(res.Error, "") {
				continue
			}
			return "", fmt.Errorf("seed %s sequence: %w", spec.Name, res.Error)
		}
		if res.RowsAffected == 1 {
			return Format(spec.Prefix, seed+1), nil
		}
	}
	return "", fmt.Errorf("could not reserve %s id after %d attempts", spec.Name, maxSeedRetries)
}

func increment(db *gorm.DB, name string) (int64, bool, error) {
	res := db.Model(&models.IDSequence{}).
		Where("name = ?", name).
		UpdateColumns(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return 0, false, fmt.Errorf("increment %s sequence: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	var row models.IDSequence
	if err := db.Where("name = ?", name).Take(&row).Error; err != nil {
		return 0, false, fmt.Errorf("read %s sequence: %w", name, err)
	}
	return row.LastValue, true, nil
}

// lastIssued returns the numeric suffix of the lexicographically greatest id
// in the target table, or 0 when the table is empty.
func lastIssued(db *gorm.DB, spec Spec) (int64, error) {
	var ids []string
	err := db.Table(spec.Table).
		Where("id LIKE ?", spec.Prefix+"-%").
		Order("id DESC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("read last %s id: %w", spec.Name, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := Parse(spec.Prefix, ids[0])
	if err != nil {
		return 0, fmt.Errorf("seed %s sequence from %q: %w", spec.Name, ids[0], err)
	}
	return n, nil
}

// Format renders prefix and n as PREFIX-NNNNN.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, Width, n)
}

// Parse extracts the numeric suffix from an id carrying the given prefix.
func Parse(prefix, id string) (int64, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(id), prefix+"-")
	if !ok || rest == "" {
		return 0, fmt.Errorf("id %q does not start with %s-", id, prefix)
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("id %q has a non-numeric suffix", id)
	}
	return n, nil
}

// Valid reports whether id is a well-formed identifier for prefix.
func Valid(prefix, id string) bool {
	_, err := Parse(prefix, id)
	return err == nil
}
