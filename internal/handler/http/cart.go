package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CMPHP00100/cetera-storefront/pkg/httputil"
	"github.com/CMPHP00100/cetera-storefront/pkg/validator"

	"github.com/CMPHP00100/cetera-storefront/internal/service"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddLineRequest is the JSON request body for adding a selection to the
// cart. The server resolves the unit price; clients never send one.
type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	TierQty   int    `json:"tier_qty" validate:"gte=0"`
}

// ChangeTierRequest is the JSON request body for moving a line to another
// quantity tier.
type ChangeTierRequest struct {
	TierQty int `json:"tier_qty" validate:"required,gt=0"`
}

// ApplyCouponRequest is the JSON request body for applying a coupon code.
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// AddLine handles POST /api/v1/cart/items
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req AddLineRequest
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

	cart, err := h.service.AddLine(r.Context(), userID, service.AddLineInput{
		ProductID: req.ProductID,
		Color:     req.Color,
		TierQty:   req.TierQty,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// IncrementLine handles POST /api/v1/cart/items/{productId}/{color}/{tierQty}/increment
func (h *CartHandler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID, color, tierQty, ok := lineParams(w, r)
	if !ok {
		return
	}

	cart, err := h.service.IncrementLine(r.Context(), userID, productID, color, tierQty)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// DecrementLine handles POST /api/v1/cart/items/{productId}/{color}/{tierQty}/decrement
func (h *CartHandler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID, color, tierQty, ok := lineParams(w, r)
	if !ok {
		return
	}

	cart, err := h.service.DecrementLine(r.Context(), userID, productID, color, tierQty)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// ChangeTier handles PUT /api/v1/cart/items/{productId}/{color}/{tierQty}/tier
func (h *CartHandler) ChangeTier(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID, color, tierQty, ok := lineParams(w, r)
	if !ok {
		return
	}

	var req ChangeTierRequest
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

	cart, err := h.service.ChangeTier(r.Context(), userID, productID, color, tierQty, req.TierQty)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// RemoveLine handles DELETE /api/v1/cart/items/{productId}/{color}/{tierQty}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID, color, tierQty, ok := lineParams(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveLine(r.Context(), userID, productID, color, tierQty)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// ApplyCoupon handles POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req ApplyCouponRequest
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

	cart, err := h.service.ApplyCoupon(r.Context(), userID, req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// RemoveCoupon handles DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	cart, err := h.service.RemoveCoupon(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	if err := h.service.ClearCart(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// --- Helpers ---

// noColor is the URL segment standing in for an empty color, since path
// segments cannot be empty.
const noColor = "-"

func lineParams(w http.ResponseWriter, r *http.Request) (productID, color string, tierQty int, ok bool) {
	productID = chi.URLParam(r, "productId")
	color = chi.URLParam(r, "color")
	tierStr := chi.URLParam(r, "tierQty")

	if productID == "" || color == "" || tierStr == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "productId, color and tierQty are required"},
		})
		return "", "", 0, false
	}
	if color == noColor {
		color = ""
	}

	tierQty, err := strconv.Atoi(tierStr)
	if err != nil || tierQty <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "tierQty must be a positive integer"},
		})
		return "", "", 0, false
	}

	return productID, color, tierQty, true
}
