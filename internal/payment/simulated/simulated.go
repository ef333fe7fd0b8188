// Package simulated implements a deterministic payment provider whose
// outcome is selected by the card number's last four digits. It exists so
// the full checkout flow, including every decline path, can be exercised
// without a real gateway.
package simulated

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/payment"
)

// Outcome is the deterministic result for a card number, before it is
// shaped into a charge result or an error.
type Outcome struct {
	Approved   bool
	StatusCode int
	Code       string
	Message    string
}

var declineTable = map[string]Outcome{
	"0002": {StatusCode: http.StatusBadRequest, Code: "card_declined", Message: "Your card was declined."},
	"0003": {StatusCode: http.StatusPaymentRequired, Code: "insufficient_funds", Message: "Your card has insufficient funds."},
	"0004": {StatusCode: http.StatusBadRequest, Code: "expired_card", Message: "Your card has expired."},
	"0005": {StatusCode: http.StatusUnprocessableEntity, Code: "invalid_card", Message: "Your card number is invalid."},
	"0006": {StatusCode: http.StatusBadRequest, Code: "card_limit_exceeded", Message: "Your card's limit has been exceeded."},
	"0007": {StatusCode: http.StatusServiceUnavailable, Code: "gateway_unavailable", Message: "The payment gateway is temporarily unavailable. Please try again."},
}

// Evaluate maps a card number to its fixed outcome. Malformed numbers are
// rejected before the suffix table is consulted; any well-formed number not
// in the table approves.
func Evaluate(cardNumber string) Outcome {
	digits := strings.ReplaceAll(strings.ReplaceAll(cardNumber, " ", ""), "-", "")
	if len(digits) < 13 || len(digits) > 19 || !allDigits(digits) {
		return Outcome{StatusCode: http.StatusUnprocessableEntity, Code: "invalid_card", Message: "Your card number is invalid."}
	}
	suffix := digits[len(digits)-4:]
	if outcome, ok := declineTable[suffix]; ok {
		return outcome
	}
	return Outcome{Approved: true, StatusCode: http.StatusOK}
}

// Provider is the simulated gateway. It is safe for concurrent use.
type Provider struct {
	logger *slog.Logger
	delay  time.Duration
}

// New creates a simulated provider. A non-zero delay approximates gateway
// latency.
func New(logger *slog.Logger, delay time.Duration) *Provider {
	return &Provider{logger: logger, delay: delay}
}

// Name identifies this gateway in log lines.
func (p *Provider) Name() string {
	return "simulated"
}

// Charge resolves the deterministic outcome for the card. Approvals return
// a fresh transaction id and auth code; declines return a PaymentFailed
// error carrying the gateway status and code.
func (p *Provider) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.delay):
		}
	}

	outcome := Evaluate(in.CardNumber)
	if !outcome.Approved {
		p.logger.Info("charge declined",
			slog.String("provider", p.Name()),
			slog.String("order_ref", in.OrderRef),
			slog.String("code", outcome.Code),
			slog.Int64("amount", in.Amount),
		)
		return nil, apperrors.PaymentFailed(outcome.StatusCode, outcome.Code, outcome.Message)
	}

	result := &payment.ChargeResult{
		TransactionID: newTransactionID(),
		AuthCode:      newAuthCode(),
	}
	p.logger.Info("charge approved",
		slog.String("provider", p.Name()),
		slog.String("order_ref", in.OrderRef),
		slog.String("transaction_id", result.TransactionID),
		slog.Int64("amount", in.Amount),
	)
	return result, nil
}

func newTransactionID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "TXN_" + strings.ToUpper(hex.EncodeToString(b))
}

func newAuthCode() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("AUTH%s", strings.ToUpper(hex.EncodeToString(b)))
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
