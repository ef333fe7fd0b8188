package simulated

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/payment"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ============================================================================
// Evaluate
// ============================================================================

func TestEvaluate_DeclineTable(t *testing.T) {
	cases := []struct {
		suffix string
		status int
		code   string
	}{
		{"0002", http.StatusBadRequest, "card_declined"},
		{"0003", http.StatusPaymentRequired, "insufficient_funds"},
		{"0004", http.StatusBadRequest, "expired_card"},
		{"0005", http.StatusUnprocessableEntity, "invalid_card"},
		{"0006", http.StatusBadRequest, "card_limit_exceeded"},
		{"0007", http.StatusServiceUnavailable, "gateway_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.suffix, func(t *testing.T) {
			outcome := Evaluate("400000000000" + tc.suffix)
			assert.False(t, outcome.Approved)
			assert.Equal(t, tc.status, outcome.StatusCode)
			assert.Equal(t, tc.code, outcome.Code)
			assert.NotEmpty(t, outcome.Message)
		})
	}
}

func TestEvaluate_DefaultIsApproval(t *testing.T) {
	for _, number := range []string{
		"4111111111111111",
		"4111 1111 1111 1111",
		"4111-1111-1111-1111",
		"5555555555554444",
	} {
		outcome := Evaluate(number)
		assert.True(t, outcome.Approved, "%s should approve", number)
		assert.Equal(t, http.StatusOK, outcome.StatusCode)
	}
}

func TestEvaluate_FormattingStripped(t *testing.T) {
	outcome := Evaluate("4000-0000-0000 0002")
	assert.False(t, outcome.Approved)
	assert.Equal(t, "card_declined", outcome.Code)
}

func TestEvaluate_MalformedNumbers(t *testing.T) {
	for _, number := range []string{"", "1234", "41111111111111111111111", "4111x11111111111"} {
		outcome := Evaluate(number)
		assert.False(t, outcome.Approved, "%q should be rejected", number)
		assert.Equal(t, "invalid_card", outcome.Code)
		assert.Equal(t, http.StatusUnprocessableEntity, outcome.StatusCode)
	}
}

// ============================================================================
// Provider
// ============================================================================

func TestName(t *testing.T) {
	var p payment.Provider = New(newTestLogger(), 0)
	assert.Equal(t, "simulated", p.Name())
}

func TestCharge_Approval(t *testing.T) {
	p := New(newTestLogger(), 0)

	result, err := p.Charge(context.Background(), payment.ChargeInput{
		CardNumber: "4111111111111111",
		Amount:     9764,
		Currency:   "USD",
		OrderRef:   "sess-1",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.TransactionID, "TXN_"))
	assert.NotEmpty(t, result.AuthCode)
}

func TestCharge_TransactionIDsAreUnique(t *testing.T) {
	p := New(newTestLogger(), 0)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := p.Charge(context.Background(), payment.ChargeInput{
			CardNumber: "4111111111111111",
			Amount:     100,
		})
		require.NoError(t, err)
		assert.False(t, seen[result.TransactionID])
		seen[result.TransactionID] = true
	}
}

func TestCharge_Decline(t *testing.T) {
	p := New(newTestLogger(), 0)

	_, err := p.Charge(context.Background(), payment.ChargeInput{
		CardNumber: "4000000000000002",
		Amount:     9764,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "card_declined", appErr.Code)
}

func TestCharge_ContextCanceledDuringDelay(t *testing.T) {
	p := New(newTestLogger(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Charge(ctx, payment.ChargeInput{CardNumber: "4111111111111111", Amount: 100})
	assert.ErrorIs(t, err, context.Canceled)
}
