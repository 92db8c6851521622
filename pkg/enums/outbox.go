package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateItem  OutboxAggregateType = "item"
	AggregateOrder OutboxAggregateType = "order"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateItem,
	AggregateOrder,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event written to the outbox.
type OutboxEventType string

const (
	EventItemCreated        OutboxEventType = "item_created"
	EventItemUpdated        OutboxEventType = "item_updated"
	EventItemDeleted        OutboxEventType = "item_deleted"
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderItemsUpdated  OutboxEventType = "order_items_updated"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderCanceled      OutboxEventType = "order_canceled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventItemCreated,
	EventItemUpdated,
	EventItemDeleted,
	EventOrderCreated,
	EventOrderItemsUpdated,
	EventOrderStatusChanged,
	EventOrderCanceled,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
