package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"
	"github.com/CMPHP00100/cetera-storefront/pkg/httputil"
	"github.com/CMPHP00100/cetera-storefront/pkg/validator"

	"github.com/CMPHP00100/cetera-storefront/internal/payment"
)

// PaymentHandler exposes the simulated gateway as a standalone endpoint.
// The checkout flow charges through the service layer; this surface exists
// for direct gateway exercising and mirrors its wire contract.
type PaymentHandler struct {
	provider payment.Provider
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(provider payment.Provider, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		provider: provider,
		logger:   logger,
	}
}

// ChargeRequest is the JSON request body for a charge.
type ChargeRequest struct {
	PaymentData PaymentData `json:"payment_data" validate:"required"`
	OrderData   OrderData   `json:"order_data" validate:"required"`
}

// PaymentData carries the card details for a charge.
type PaymentData struct {
	CardNumber string `json:"card_number" validate:"required"`
	CardName   string `json:"card_name" validate:"required"`
	ExpMonth   string `json:"exp_month" validate:"required"`
	ExpYear    string `json:"exp_year" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// OrderData carries the amount being charged.
type OrderData struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency"`
	OrderRef string `json:"order_ref"`
}

// ChargeResponse is the gateway's success shape.
type ChargeResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	AuthCode      string `json:"auth_code"`
}

// ChargeFailure is the gateway's failure shape.
type ChargeFailure struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Charge handles POST /api/v1/payments/charge
func (h *PaymentHandler) Charge(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, ChargeFailure{Message: "invalid request body: " + err.Error()})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	currency := req.OrderData.Currency
	if currency == "" {
		currency = "USD"
	}

	result, err := h.provider.Charge(r.Context(), payment.ChargeInput{
		CardNumber: req.PaymentData.CardNumber,
		CardName:   req.PaymentData.CardName,
		ExpMonth:   req.PaymentData.ExpMonth,
		ExpYear:    req.PaymentData.ExpYear,
		CVV:        req.PaymentData.CVV,
		Amount:     req.OrderData.Amount,
		Currency:   currency,
		OrderRef:   req.OrderData.OrderRef,
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperrors.ErrPaymentFailed) {
			httputil.WriteJSON(w, appErr.Status, ChargeFailure{
				Code:    appErr.Code,
				Message: appErr.Message,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "charge failed",
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, ChargeFailure{Message: "an internal error occurred"})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ChargeResponse{
		Success:       true,
		TransactionID: result.TransactionID,
		AuthCode:      result.AuthCode,
	})
}
