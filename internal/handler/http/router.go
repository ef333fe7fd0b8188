package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CMPHP00100/cetera-storefront/pkg/health"
	"github.com/CMPHP00100/cetera-storefront/pkg/middleware"

	"github.com/CMPHP00100/cetera-storefront/internal/catalog"
	"github.com/CMPHP00100/cetera-storefront/internal/payment"
	"github.com/CMPHP00100/cetera-storefront/internal/service"
)

// RouterConfig carries the knobs the router needs beyond its handlers.
type RouterConfig struct {
	// JWTSecret enables bearer-token auth on order history when non-empty.
	JWTSecret string
	// ChargeRPS and ChargeBurst bound the per-IP rate on the charge endpoint.
	ChargeRPS   int
	ChargeBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	orderService *service.OrderService,
	provider payment.Provider,
	cat *catalog.Catalog,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	orderHandler := NewOrderHandler(orderService, logger)
	paymentHandler := NewPaymentHandler(provider, logger)
	notificationHandler := NewNotificationHandler(orderService, logger)
	productHandler := NewProductHandler(cat, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
			r.Get("/{id}/price-range", productHandler.PriceRange)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(UserIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddLine)
			r.Post("/items/{productId}/{color}/{tierQty}/increment", cartHandler.IncrementLine)
			r.Post("/items/{productId}/{color}/{tierQty}/decrement", cartHandler.DecrementLine)
			r.Put("/items/{productId}/{color}/{tierQty}/tier", cartHandler.ChangeTier)
			r.Delete("/items/{productId}/{color}/{tierQty}", cartHandler.RemoveLine)

			r.Post("/coupon", cartHandler.ApplyCoupon)
			r.Delete("/coupon", cartHandler.RemoveCoupon)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(UserIDFromHeader)

			r.Post("/", checkoutHandler.Begin)
			r.Get("/{id}", checkoutHandler.Get)
			r.Post("/{id}/next", checkoutHandler.Next)
			r.Post("/{id}/previous", checkoutHandler.Previous)
			r.Post("/{id}/cancel", checkoutHandler.Cancel)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.ChargeRPS, cfg.ChargeBurst, logger))
			r.Post("/charge", paymentHandler.Charge)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(UserIDFromHeader)
			r.Post("/order-confirmation", notificationHandler.OrderConfirmation)
		})

		r.Route("/orders", func(r chi.Router) {
			if cfg.JWTSecret != "" {
				r.Use(middleware.JWTAuth(cfg.JWTSecret, logger))
			}
			r.Use(UserIDFromHeader)

			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.Get)
		})
	})

	return r
}
