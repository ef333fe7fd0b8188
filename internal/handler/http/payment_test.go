package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMPHP00100/cetera-storefront/internal/payment/simulated"
)

func setupPaymentRouter(t *testing.T) *chi.Mux {
	t.Helper()
	handler := NewPaymentHandler(simulated.New(testLogger(), 0), testLogger())

	r := chi.NewRouter()
	r.Post("/api/v1/payments/charge", handler.Charge)
	return r
}

func chargeJSON(cardNumber string, amount int64) []byte {
	b, _ := json.Marshal(ChargeRequest{
		PaymentData: PaymentData{
			CardNumber: cardNumber,
			CardName:   "Jane Smith",
			ExpMonth:   "12",
			ExpYear:    "2030",
			CVV:        "123",
		},
		OrderData: OrderData{
			Amount:   amount,
			Currency: "USD",
			OrderRef: "sess-1",
		},
	})
	return b
}

func postCharge(t *testing.T, router *chi.Mux, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/charge", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCharge_Approved(t *testing.T) {
	router := setupPaymentRouter(t)

	rec := postCharge(t, router, chargeJSON("4111111111111111", 9764))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ChargeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.TransactionID)
	assert.NotEmpty(t, resp.AuthCode)
}

func TestCharge_DeclineTableMapsToGatewayStatus(t *testing.T) {
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

	router := setupPaymentRouter(t)
	for _, tc := range cases {
		t.Run(tc.suffix, func(t *testing.T) {
			rec := postCharge(t, router, chargeJSON("400000000000"+tc.suffix, 9764))
			assert.Equal(t, tc.status, rec.Code)

			var resp ChargeFailure
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCharge_MalformedCardNumber(t *testing.T) {
	router := setupPaymentRouter(t)

	rec := postCharge(t, router, chargeJSON("1234", 9764))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ChargeFailure
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_card", resp.Code)
}

func TestCharge_InvalidJSON(t *testing.T) {
	router := setupPaymentRouter(t)

	rec := postCharge(t, router, []byte(`{broken`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCharge_MissingFields_ValidationError(t *testing.T) {
	router := setupPaymentRouter(t)

	b, _ := json.Marshal(map[string]any{
		"payment_data": map[string]any{"card_number": ""},
		"order_data":   map[string]any{"amount": 0},
	})
	rec := postCharge(t, router, b)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
