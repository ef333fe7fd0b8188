// Package payment defines the charge abstraction the checkout flow settles
// through.
package payment

import "context"

// ChargeInput carries everything a provider needs for one charge attempt.
// Amount is in cents.
type ChargeInput struct {
	CardNumber string
	CardName   string
	ExpMonth   string
	ExpYear    string
	CVV        string
	Amount     int64
	Currency   string
	OrderRef   string
}

// ChargeResult is returned on a successful charge.
type ChargeResult struct {
	TransactionID string `json:"transaction_id"`
	AuthCode      string `json:"auth_code"`
}

// Provider authorizes and captures a charge in one call. Declines are
// returned as errors carrying a machine-readable code. Name identifies the
// gateway in log lines.
type Provider interface {
	Name() string
	Charge(ctx context.Context, in ChargeInput) (*ChargeResult, error)
}
