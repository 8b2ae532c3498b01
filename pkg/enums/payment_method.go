package enums

import "fmt"

// PaymentMethod identifies how an order is settled.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMidtrans     PaymentMethod = "midtrans"
	PaymentMethodXendit       PaymentMethod = "xendit"
	PaymentMethodPayLater     PaymentMethod = "pay_later"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBankTransfer,
	PaymentMethodMidtrans,
	PaymentMethodXendit,
	PaymentMethodPayLater,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsDeferred reports whether the method settles later instead of at capture.
func (m PaymentMethod) IsDeferred() bool {
	return m == PaymentMethodPayLater
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
