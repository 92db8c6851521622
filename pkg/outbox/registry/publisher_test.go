package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warehouse-backend/pkg/config"
	"github.com/angelmondragon/warehouse-backend/pkg/db/models"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveOrderCreated(t *testing.T) {
	reg := newTestEventRegistry(t)

	payloadBytes := mustMarshal(t, payloads.OrderCreatedEvent{
		OrderID: "ORD-00001",
		Type:    enums.OrderTypeOutgoing,
		Status:  enums.OrderStatusPending,
		Lines:   []payloads.OrderLine{{ItemID: "INV-00001", Quantity: decimal.NewFromInt(10)}},
	})

	event := models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   "ORD-00001",
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	require.Equal(t, "orders-topic", resolved.Descriptor.Topic)
	require.Equal(t, enums.EventOrderCreated, resolved.Descriptor.EventType)

	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok, "unexpected payload type %T", resolved.Payload)
	require.Len(t, payload.Lines, 1)
	require.Equal(t, "INV-00001", payload.Lines[0].ItemID)
	require.True(t, payload.Lines[0].Quantity.Equal(decimal.NewFromInt(10)))
	require.NotEmpty(t, resolved.Envelope.EventID)
	require.False(t, resolved.Envelope.OccurredAt.IsZero())
}

func TestEventRegistryRoutesItemEventsToInventoryTopic(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     enums.EventItemDeleted,
		AggregateType: enums.AggregateItem,
		AggregateID:   "INV-00003",
		Payload:       mustEnvelope(t, mustMarshal(t, payloads.ItemDeletedEvent{ItemID: "INV-00003"})),
	}

	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	require.Equal(t, "inventory-topic", resolved.Descriptor.Topic)
	require.ElementsMatch(t, []string{"orders-topic", "inventory-topic"}, reg.Topics())
}

func TestEventRegistryResolveUnknownEvent(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     "item_teleported",
		AggregateType: enums.AggregateItem,
		AggregateID:   "INV-00001",
		Payload:       mustEnvelope(t, []byte(`{"reason":"none"}`)),
	}

	_, err := reg.Resolve(event)
	require.Error(t, err)
	var nonRetry NonRetryableError
	require.True(t, errors.As(err, &nonRetry))
	var unknown UnknownEventError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, enums.OutboxEventType("item_teleported"), unknown.EventType)
}

func TestEventRegistryResolveRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"aggregate mismatch": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateItem,
			AggregateID:   "ORD-00001",
			Payload:       mustEnvelope(t, []byte(`{"order_id":"ORD-00001"}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"null payload": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "ORD-00001",
			Payload:       mustEnvelope(t, []byte("null")),
		},
		"broken envelope": {
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "ORD-00001",
			Payload:       json.RawMessage(`{"data":`),
		},
	}

	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			require.Error(t, err)
			var nonRetry NonRetryableError
			require.True(t, errors.As(err, &nonRetry))
		})
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{InventoryTopic: "inv"})
	require.Error(t, err)
	_, err = NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.Error(t, err)
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		OrdersTopic:    "orders-topic",
		InventoryTopic: "inventory-topic",
	})
	require.NoError(t, err)
	return reg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	return data
}
