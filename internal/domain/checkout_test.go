package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Email validation
// ============================================================================

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "jane.doe@example.com", "x+tag@sub.domain.org"}
	for _, e := range valid {
		assert.True(t, ValidEmail(e), "%q should be valid", e)
	}

	invalid := []string{"", "plain", "a@b", "a b@c.com", "@example.com", "a@.com "}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), "%q should be invalid", e)
	}
}

// ============================================================================
// Step validation
// ============================================================================

func TestCustomerInfo_Validate(t *testing.T) {
	c := CustomerInfo{}
	errs := c.Validate()
	assert.Contains(t, errs, "first_name")
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "email")

	c = CustomerInfo{FirstName: "Jane", LastName: "Doe", Email: "not-an-email"}
	errs = c.Validate()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "email")

	c.Email = "jane@example.com"
	assert.Empty(t, c.Validate())
}

func TestShippingInfo_Validate(t *testing.T) {
	s := ShippingInfo{}
	errs := s.Validate()
	for _, field := range []string{"address", "city", "state", "postal_code", "country", "method"} {
		assert.Contains(t, errs, field)
	}

	s = ShippingInfo{
		Address: "1 Main St", City: "Springfield", State: "IL",
		PostalCode: "62701", Country: "US", Method: "teleport",
	}
	errs = s.Validate()
	assert.Len(t, errs, 1)
	assert.Equal(t, "unknown shipping method", errs["method"])

	s.Method = ShippingExpress
	assert.Empty(t, s.Validate())
}

func TestPaymentInfo_Validate(t *testing.T) {
	p := PaymentInfo{BillingSameAsShipping: true}
	errs := p.Validate()
	assert.Contains(t, errs, "card_number")
	assert.Contains(t, errs, "card_name")
	assert.Contains(t, errs, "exp_month")
	assert.Contains(t, errs, "exp_year")
	assert.Contains(t, errs, "cvv")

	p = PaymentInfo{
		CardNumber:            "4111 1111 1111 1111",
		CardName:              "Jane Doe",
		ExpMonth:              "12",
		ExpYear:               "2030",
		CVV:                   "123",
		BillingSameAsShipping: true,
	}
	assert.Empty(t, p.Validate())
}

func TestPaymentInfo_Validate_BillingRequiredWhenNotSame(t *testing.T) {
	p := PaymentInfo{
		CardNumber: "4111111111111111",
		CardName:   "Jane Doe",
		ExpMonth:   "6",
		ExpYear:    "2029",
		CVV:        "9999",
	}
	errs := p.Validate()
	assert.Contains(t, errs, "billing_address")
	assert.Contains(t, errs, "billing_city")
	assert.Contains(t, errs, "billing_state")
	assert.Contains(t, errs, "billing_postal_code")
}

func TestPaymentInfo_NormalizedCardNumber(t *testing.T) {
	p := PaymentInfo{CardNumber: "4111-1111 1111-1111"}
	assert.Equal(t, "4111111111111111", p.NormalizedCardNumber())
}

// ============================================================================
// Session money derivations
// ============================================================================

func sessionWithSubtotal(subtotal int64, method string) *CheckoutSession {
	return &CheckoutSession{
		Subtotal: subtotal,
		Shipping: ShippingInfo{Method: method},
	}
}

func TestShippingCost_Table(t *testing.T) {
	cases := map[string]int64{
		ShippingStandard:  999,
		ShippingExpress:   1999,
		ShippingOvernight: 3999,
	}
	for method, want := range cases {
		cost, ok := ShippingCost(method)
		require.True(t, ok)
		assert.Equal(t, want, cost)
	}

	_, ok := ShippingCost("carrier-pigeon")
	assert.False(t, ok)
}

func TestTaxAndGrandTotal(t *testing.T) {
	// Discounted subtotal 8000, standard shipping 999:
	// tax = round(8999 * 0.085) = round(764.915) = 765
	// grand total = 8000 + 999 + 765 = 9764
	s := sessionWithSubtotal(8000, ShippingStandard)
	assert.Equal(t, int64(999), s.ShippingCost())
	assert.Equal(t, int64(765), s.Tax())
	assert.Equal(t, int64(9764), s.GrandTotal())
}

func TestTax_BeforeShippingSelected(t *testing.T) {
	s := sessionWithSubtotal(10000, "")
	assert.Equal(t, int64(0), s.ShippingCost())
	assert.Equal(t, int64(850), s.Tax())
}

// ============================================================================
// Session lifecycle
// ============================================================================

func TestNewCheckoutSession_FreezesCart(t *testing.T) {
	cart := NewCart("user-1")
	line := CartLine{ProductID: "a", TierQty: 50, UnitPrice: 200, Count: 1, Name: "Cards"}
	cart.Lines[line.Key()] = line
	cart.Coupon = &Coupon{Code: "DISCOUNT20", Percent: 20}

	s := NewCheckoutSession("sess-1", cart)

	assert.Equal(t, StepCustomer, s.Step)
	assert.Equal(t, CheckoutInProgress, s.Status)
	assert.Equal(t, int64(8000), s.Subtotal)
	assert.Equal(t, 20, s.DiscountPercent)
	assert.Equal(t, "DISCOUNT20", s.CouponCode)
	require.Len(t, s.Lines, 1)

	// Cart edits after Begin do not leak into the session.
	delete(cart.Lines, line.Key())
	assert.Len(t, s.Lines, 1)
}

func TestSession_Expired(t *testing.T) {
	cart := NewCart("user-1")
	s := NewCheckoutSession("sess-1", cart)

	assert.False(t, s.Expired(time.Now().UTC()))
	assert.True(t, s.Expired(time.Now().UTC().Add(SessionTTL+time.Minute)))
}

func TestSession_Active(t *testing.T) {
	s := &CheckoutSession{Status: CheckoutInProgress}
	assert.True(t, s.Active())

	s.Status = CheckoutPaymentFailed
	assert.True(t, s.Active(), "a declined payment leaves the session retryable")

	s.Status = CheckoutCompleted
	assert.False(t, s.Active())

	s.Status = CheckoutCanceled
	assert.False(t, s.Active())
}
