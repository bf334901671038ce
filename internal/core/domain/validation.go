package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationKind identifies which rule a request broke.
type ValidationKind string

const (
	ValidationMissingField        ValidationKind = "MISSING_FIELD"
	ValidationNoPaymentMethod     ValidationKind = "NO_PAYMENT_METHOD"
	ValidationMissingChequeNumber ValidationKind = "MISSING_CHEQUE_NUMBER"
	ValidationInvalidAmount       ValidationKind = "INVALID_AMOUNT"
)

// ValidationError is a user-correctable problem with a ReceiptRequest.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return string(e.Kind)
}

// Validate returns the first failing rule in display order, or nil.
// Rules: required fields, payment method, cheque number, amount.
func (r ReceiptRequest) Validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"date", r.Date},
		{"received_from", r.ReceivedFrom},
		{"for_field", r.ForField},
		{"amount", r.Amount},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Kind: ValidationMissingField, Field: f.name}
		}
	}

	if !r.PaymentCash && !r.PaymentCheque {
		return &ValidationError{Kind: ValidationNoPaymentMethod}
	}

	if r.PaymentCheque && strings.TrimSpace(r.ChequeNo) == "" {
		return &ValidationError{Kind: ValidationMissingChequeNumber, Field: "cheque_no"}
	}

	if _, err := ParseAmount(r.Amount); err != nil {
		return &ValidationError{Kind: ValidationInvalidAmount, Field: "amount"}
	}

	return nil
}

// ParseAmount parses a decimal amount string and requires it to be > 0.
// The parsed value is only used for checking; the raw string is what gets
// drawn on the receipt.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %s is not positive", d.String())
	}
	return d, nil
}
