package enums

import "fmt"

// PaymentMethod describes how an interpreter is paid out. The set accepted for
// new roster rows is owned by the active schema revision; this list is every
// value any revision has known.
type PaymentMethod string

const (
	PaymentMethodBCheck       PaymentMethod = "BCheck"
	PaymentMethodBTransfer    PaymentMethod = "BTransfer"
	PaymentMethodCheck        PaymentMethod = "Check"
	PaymentMethodGusto        PaymentMethod = "Gusto"
	PaymentMethodMichaelKings PaymentMethod = "Michael Kings OPI Services"
	PaymentMethodQBD          PaymentMethod = "QBD"
	PaymentMethodSergio       PaymentMethod = "Sergio Call Center"
	PaymentMethodTrolly       PaymentMethod = "Trolly"
	PaymentMethodVIP          PaymentMethod = "VIP Call Center"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodBCheck,
	PaymentMethodBTransfer,
	PaymentMethodCheck,
	PaymentMethodGusto,
	PaymentMethodMichaelKings,
	PaymentMethodQBD,
	PaymentMethodSergio,
	PaymentMethodTrolly,
	PaymentMethodVIP,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
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
