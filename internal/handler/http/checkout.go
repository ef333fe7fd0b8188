package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CMPHP00100/cetera-storefront/pkg/httputil"

	"github.com/CMPHP00100/cetera-storefront/internal/service"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// Begin handles POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	session, err := h.service.Begin(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: checkoutView(session)})
}

// Get handles GET /api/v1/checkout/{id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	session, err := h.service.Get(r.Context(), userID, sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: checkoutView(session)})
}

// Next handles POST /api/v1/checkout/{id}/next
//
// The response always carries the session; a submission that fails field
// validation comes back 200 with the session's errors populated and the
// step unchanged.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	var input service.StepInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	session, err := h.service.Next(r.Context(), userID, sessionID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: checkoutView(session)})
}

// Previous handles POST /api/v1/checkout/{id}/previous
func (h *CheckoutHandler) Previous(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	session, err := h.service.Previous(r.Context(), userID, sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: checkoutView(session)})
}

// Cancel handles POST /api/v1/checkout/{id}/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	if err := h.service.Cancel(r.Context(), userID, sessionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "canceled"}})
}
