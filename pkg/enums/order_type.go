package enums

import "fmt"

// OrderType is the direction of stock movement an order represents.
type OrderType string

const (
	OrderTypeIncoming OrderType = "incoming"
	OrderTypeOutgoing OrderType = "outgoing"
)

var validOrderTypes = []OrderType{
	OrderTypeIncoming,
	OrderTypeOutgoing,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderType.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
