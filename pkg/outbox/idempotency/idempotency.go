package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/warehouse-backend/pkg/redis"
)

// DefaultTTL bounds how long a delivery marker survives in Redis.
const DefaultTTL = 72 * time.Hour

// Manager records which outbox events a relay has already delivered, using Redis
// SETNX with a TTL. Keys follow `wh:idempotency:evt:delivered:<relay>:<event_id>`.
// It closes the window where a publish succeeds but the row is not yet marked
// published, so a retried batch does not deliver the same event twice.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a delivery guard that keeps markers for the given TTL.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		ttl:   ttl,
	}, nil
}

// Claim returns true if the event was already delivered by the relay; otherwise
// it records the delivery and returns false.
func (m *Manager) Claim(ctx context.Context, relay string, eventID uuid.UUID) (bool, error) {
	key, err := m.deliveredKey(relay, eventID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release drops the marker so a failed delivery can be retried.
func (m *Manager) Release(ctx context.Context, relay string, eventID uuid.UUID) error {
	key, err := m.deliveredKey(relay, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) deliveredKey(relay string, eventID uuid.UUID) (string, error) {
	if relay == "" {
		return "", errors.New("relay name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	scope := fmt.Sprintf("evt:delivered:%s", relay)
	return m.store.IdempotencyKey(scope, eventID.String()), nil
}
