package enums

import "fmt"

// ItemStatus tracks where an inventory item sits in the warehouse lifecycle.
type ItemStatus string

const (
	ItemStatusDeleted  ItemStatus = "deleted"
	ItemStatusActive   ItemStatus = "active"
	ItemStatusArrived  ItemStatus = "arrived"
	ItemStatusIncoming ItemStatus = "incoming"
)

var validItemStatuses = []ItemStatus{
	ItemStatusDeleted,
	ItemStatusActive,
	ItemStatusArrived,
	ItemStatusIncoming,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}

// ItemStatuses returns every known item status.
func ItemStatuses() []ItemStatus {
	out := make([]ItemStatus, len(validItemStatuses))
	copy(out, validItemStatuses)
	return out
}
