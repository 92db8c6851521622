package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemStatus(t *testing.T) {
	status, err := ParseItemStatus("arrived")
	require.NoError(t, err)
	assert.Equal(t, ItemStatusArrived, status)

	_, err = ParseItemStatus("Arrived")
	assert.Error(t, err)
	assert.False(t, ItemStatus("lost").IsValid())
	assert.Len(t, ItemStatuses(), 4)
}

func TestParseOrderType(t *testing.T) {
	kind, err := ParseOrderType("outgoing")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeOutgoing, kind)

	_, err = ParseOrderType("sideways")
	assert.Error(t, err)
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCanceled, false},
		{OrderStatusCanceled, OrderStatusCompleted, false},
		{OrderStatusCanceled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatus("shipped"), false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.want, got)
		}
	}
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCanceled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
}

func TestOutboxEnums(t *testing.T) {
	eventType, err := ParseOutboxEventType("order_created")
	require.NoError(t, err)
	assert.Equal(t, EventOrderCreated, eventType)
	assert.True(t, AggregateOrder.IsValid())
	assert.False(t, OutboxAggregateType("store").IsValid())
	assert.True(t, OutboxDLQReasonUnknownEvent.IsValid())
}
