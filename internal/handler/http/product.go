package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CMPHP00100/cetera-storefront/pkg/httputil"

	"github.com/CMPHP00100/cetera-storefront/internal/catalog"
	"github.com/CMPHP00100/cetera-storefront/internal/pricing"
)

// ProductHandler serves the catalog read surface.
type ProductHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(cat *catalog.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		logger:  logger,
	}
}

// PriceRangeResponse is the price-range response shape, in cents.
type PriceRangeResponse struct {
	ProductID string `json:"product_id"`
	Low       int64  `json:"low"`
	High      int64  `json:"high"`
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.catalog.List()})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// PriceRange handles GET /api/v1/products/{id}/price-range
func (h *ProductHandler) PriceRange(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	low, high := pricing.PriceRange(product)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: PriceRangeResponse{
		ProductID: product.ID,
		Low:       low,
		High:      high,
	}})
}
