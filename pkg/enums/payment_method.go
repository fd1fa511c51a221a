package enums

import "fmt"

// PaymentMethod enumerates the supported settlement channels.
type PaymentMethod string

const (
	// PaymentMethodRazorpay settles through the Razorpay gateway callback.
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	// PaymentMethodDirect settles immediately at checkout (cash/offline).
	PaymentMethodDirect PaymentMethod = "direct"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodRazorpay,
	PaymentMethodDirect,
}

// IsValid reports whether the value matches the canonical payment method enum.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts the raw string to PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
