package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
	"github.com/CMPHP00100/cetera-storefront/internal/email"
	"github.com/CMPHP00100/cetera-storefront/internal/payment/simulated"
	"github.com/CMPHP00100/cetera-storefront/internal/repository/memory"
	"github.com/CMPHP00100/cetera-storefront/internal/service"
)

// ============================================================================
// Mock OrderRepository
// ============================================================================

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

type checkoutHandlerFixture struct {
	router *chi.Mux
	carts  *mockCartRepository
	orders *mockOrderRepository
}

func setupCheckoutRouter(t *testing.T) *checkoutHandlerFixture {
	t.Helper()
	logger := testLogger()

	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	sessions := memory.NewSessionStore()
	t.Cleanup(sessions.Close)

	svc := service.NewCheckoutService(
		sessions,
		carts,
		orders,
		simulated.New(logger, 0),
		testEventProducer(),
		email.NewMockSender(logger),
		service.NewTestMetrics(),
		logger,
	)
	handler := NewCheckoutHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(UserIDFromHeader)

		r.Post("/", handler.Begin)
		r.Get("/{id}", handler.Get)
		r.Post("/{id}/next", handler.Next)
		r.Post("/{id}/previous", handler.Previous)
		r.Post("/{id}/cancel", handler.Cancel)
	})

	return &checkoutHandlerFixture{router: r, carts: carts, orders: orders}
}

func decodeCheckoutView(t *testing.T, rec *httptest.ResponseRecorder) CheckoutView {
	t.Helper()
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var view CheckoutView
	require.NoError(t, json.Unmarshal(raw, &view))
	return view
}

func (f *checkoutHandlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *checkoutHandlerFixture) begin(t *testing.T) CheckoutView {
	t.Helper()
	f.carts.On("Get", mock.Anything, "user-123").Return(sampleCart(), nil)
	rec := f.do(t, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeCheckoutView(t, rec)
}

func validStepCustomer() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"first_name": "Jane",
			"last_name":  "Smith",
			"email":      "jane@example.com",
		},
	}
}

func validStepShipping() map[string]any {
	return map[string]any{
		"shipping": map[string]any{
			"address":     "742 Evergreen Terrace",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62704",
			"country":     "US",
			"method":      "standard",
		},
	}
}

func stepPayment(cardNumber string) map[string]any {
	return map[string]any{
		"payment": map[string]any{
			"card_number":              cardNumber,
			"card_name":                "Jane Smith",
			"exp_month":                "12",
			"exp_year":                 "2030",
			"cvv":                      "123",
			"billing_same_as_shipping": true,
		},
	}
}

// ============================================================================
// POST /api/v1/checkout - Begin
// ============================================================================

func TestCheckoutBegin_Returns201WithSnapshot(t *testing.T) {
	f := setupCheckoutRouter(t)

	view := f.begin(t)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, domain.StepCustomer, view.Step)
	assert.Equal(t, domain.CheckoutInProgress, view.Status)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, int64(10000), view.Subtotal)
	f.carts.AssertExpectations(t)
}

func TestCheckoutBegin_EmptyCartRejected(t *testing.T) {
	f := setupCheckoutRouter(t)

	f.carts.On("Get", mock.Anything, "user-123").Return(domain.NewCart("user-123"), nil)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCheckoutBegin_MissingUserID_Returns401(t *testing.T) {
	f := setupCheckoutRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// GET /api/v1/checkout/{id}
// ============================================================================

func TestCheckoutGet_Success(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodGet, "/api/v1/checkout/"+view.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, view.ID, got.ID)
}

func TestCheckoutGet_UnknownSession_Returns404(t *testing.T) {
	f := setupCheckoutRouter(t)

	rec := f.do(t, http.MethodGet, "/api/v1/checkout/no-such-session", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// POST /api/v1/checkout/{id}/next
// ============================================================================

func TestCheckoutNext_ValidCustomerAdvances(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepCustomer())
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.StepShipping, got.Step)
	assert.Empty(t, got.Errors)
}

func TestCheckoutNext_InvalidCustomer_Returns200WithFieldErrors(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	body := map[string]any{
		"customer": map[string]any{
			"first_name": "Jane",
			"last_name":  "",
			"email":      "not-an-email",
		},
	}
	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.StepCustomer, got.Step)
	assert.Contains(t, got.Errors, "last_name")
	assert.Contains(t, got.Errors, "email")
}

func TestCheckoutNext_ShippingCostReflectsMethod(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepCustomer())
	require.Equal(t, http.StatusOK, rec.Code)

	body := validStepShipping()
	body["shipping"].(map[string]any)["method"] = "express"
	rec = f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.StepPayment, got.Step)
	assert.Equal(t, int64(1999), got.ShippingCost)
}

func TestCheckoutNext_ApprovedPayment_Completes(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.carts.On("Delete", mock.Anything, "user-123").Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepCustomer())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepShipping())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", stepPayment("4111111111111111"))
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.CheckoutCompleted, got.Status)
	assert.NotEmpty(t, got.OrderID)
	f.orders.AssertExpectations(t)
	f.carts.AssertExpectations(t)
}

func TestCheckoutNext_DeclinedPayment_StaysRetryable(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepCustomer())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepShipping())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", stepPayment("4000000000000002"))
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.CheckoutPaymentFailed, got.Status)
	assert.Equal(t, domain.StepPayment, got.Step)
	assert.NotEmpty(t, got.FailureReason)
	assert.Empty(t, got.OrderID)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutNext_InvalidJSON(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", bytes.NewReader([]byte(`{bad`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// POST /api/v1/checkout/{id}/previous
// ============================================================================

func TestCheckoutPrevious_StepsBack(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/next", validStepCustomer())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/previous", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.StepCustomer, got.Step)
	// Submitted data is retained when stepping back.
	assert.Equal(t, "Jane", got.Customer.FirstName)
}

func TestCheckoutPrevious_FloorsAtFirstStep(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/previous", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeCheckoutView(t, rec)
	assert.Equal(t, domain.StepCustomer, got.Step)
}

// ============================================================================
// POST /api/v1/checkout/{id}/cancel
// ============================================================================

func TestCheckoutCancel_RetiresSession(t *testing.T) {
	f := setupCheckoutRouter(t)
	view := f.begin(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout/"+view.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/checkout/"+view.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
