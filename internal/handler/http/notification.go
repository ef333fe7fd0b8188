package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CMPHP00100/cetera-storefront/pkg/httputil"
	"github.com/CMPHP00100/cetera-storefront/pkg/validator"

	"github.com/CMPHP00100/cetera-storefront/internal/service"
)

// NotificationHandler handles HTTP requests for confirmation emails.
type NotificationHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewNotificationHandler creates a new notification HTTP handler.
func NewNotificationHandler(svc *service.OrderService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: svc,
		logger:  logger,
	}
}

// OrderConfirmationRequest is the JSON request body for resending a
// confirmation email.
type OrderConfirmationRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// OrderConfirmation handles POST /api/v1/notifications/order-confirmation
func (h *NotificationHandler) OrderConfirmation(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req OrderConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ResendConfirmation(r.Context(), userID, req.OrderID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "sent"}})
}
