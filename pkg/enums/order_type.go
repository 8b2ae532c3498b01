package enums

import "fmt"

// OrderType separates online cart checkouts from point-of-sale sales.
type OrderType string

const (
	OrderTypeOnline OrderType = "online"
	OrderTypePOS    OrderType = "pos"
)

var validOrderTypes = []OrderType{OrderTypeOnline, OrderTypePOS}

func (t OrderType) String() string {
	return string(t)
}

func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
