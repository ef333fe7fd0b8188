package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Checkout steps, in order. A session starts at StepCustomer and can only
// move one step at a time.
const (
	StepCustomer = 1
	StepShipping = 2
	StepPayment  = 3
)

// Checkout session lifecycle states.
const (
	CheckoutInProgress    = "in_progress"
	CheckoutPaymentFailed = "payment_failed"
	CheckoutCompleted     = "completed"
	CheckoutCanceled      = "canceled"
)

// Shipping methods and their flat costs in cents.
const (
	ShippingStandard  = "standard"
	ShippingExpress   = "express"
	ShippingOvernight = "overnight"
)

var shippingCosts = map[string]int64{
	ShippingStandard:  999,
	ShippingExpress:   1999,
	ShippingOvernight: 3999,
}

// TaxRate is applied to the discounted subtotal plus shipping.
const TaxRate = 0.085

// SessionTTL bounds how long an abandoned checkout stays resumable.
const SessionTTL = 30 * time.Minute

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address matches the accepted shape:
// non-empty local part, @, non-empty domain with at least one dot.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ShippingCost returns the flat cost for a method, or false for an unknown
// method.
func ShippingCost(method string) (int64, bool) {
	cost, ok := shippingCosts[method]
	return cost, ok
}

// CustomerInfo is collected at step 1.
type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Validate returns field-keyed error messages; an empty map means valid.
func (c *CustomerInfo) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(c.FirstName) == "" {
		errs["first_name"] = "first name is required"
	}
	if strings.TrimSpace(c.LastName) == "" {
		errs["last_name"] = "last name is required"
	}
	if strings.TrimSpace(c.Email) == "" {
		errs["email"] = "email is required"
	} else if !ValidEmail(c.Email) {
		errs["email"] = "email is not a valid address"
	}
	return errs
}

// ShippingInfo is collected at step 2.
type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Method     string `json:"method"`
}

// Validate returns field-keyed error messages; an empty map means valid.
func (s *ShippingInfo) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(s.Address) == "" {
		errs["address"] = "address is required"
	}
	if strings.TrimSpace(s.City) == "" {
		errs["city"] = "city is required"
	}
	if strings.TrimSpace(s.State) == "" {
		errs["state"] = "state is required"
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		errs["postal_code"] = "postal code is required"
	}
	if strings.TrimSpace(s.Country) == "" {
		errs["country"] = "country is required"
	}
	if s.Method == "" {
		errs["method"] = "shipping method is required"
	} else if _, ok := shippingCosts[s.Method]; !ok {
		errs["method"] = "unknown shipping method"
	}
	return errs
}

// PaymentInfo is collected at step 3. The card number is held only for the
// duration of the charge attempt and never persisted.
type PaymentInfo struct {
	CardNumber            string `json:"card_number"`
	CardName              string `json:"card_name"`
	ExpMonth              string `json:"exp_month"`
	ExpYear               string `json:"exp_year"`
	CVV                   string `json:"cvv"`
	BillingSameAsShipping bool   `json:"billing_same_as_shipping"`
	BillingAddress        string `json:"billing_address,omitempty"`
	BillingCity           string `json:"billing_city,omitempty"`
	BillingState          string `json:"billing_state,omitempty"`
	BillingPostalCode     string `json:"billing_postal_code,omitempty"`
}

// Validate returns field-keyed error messages; an empty map means valid.
func (p *PaymentInfo) Validate() map[string]string {
	errs := make(map[string]string)

	digits := strings.ReplaceAll(strings.ReplaceAll(p.CardNumber, " ", ""), "-", "")
	if digits == "" {
		errs["card_number"] = "card number is required"
	} else if len(digits) < 13 || len(digits) > 19 || !allDigits(digits) {
		errs["card_number"] = "card number is not valid"
	}

	if strings.TrimSpace(p.CardName) == "" {
		errs["card_name"] = "name on card is required"
	}

	if month, err := strconv.Atoi(p.ExpMonth); err != nil || month < 1 || month > 12 {
		errs["exp_month"] = "expiration month is not valid"
	}
	if year, err := strconv.Atoi(p.ExpYear); err != nil || year < 2000 {
		errs["exp_year"] = "expiration year is not valid"
	}

	if len(p.CVV) < 3 || len(p.CVV) > 4 || !allDigits(p.CVV) {
		errs["cvv"] = "security code is not valid"
	}

	if !p.BillingSameAsShipping {
		if strings.TrimSpace(p.BillingAddress) == "" {
			errs["billing_address"] = "billing address is required"
		}
		if strings.TrimSpace(p.BillingCity) == "" {
			errs["billing_city"] = "billing city is required"
		}
		if strings.TrimSpace(p.BillingState) == "" {
			errs["billing_state"] = "billing state is required"
		}
		if strings.TrimSpace(p.BillingPostalCode) == "" {
			errs["billing_postal_code"] = "billing postal code is required"
		}
	}
	return errs
}

// NormalizedCardNumber returns the card number with spaces and dashes
// stripped.
func (p *PaymentInfo) NormalizedCardNumber() string {
	return strings.ReplaceAll(strings.ReplaceAll(p.CardNumber, " ", ""), "-", "")
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CheckoutSession freezes the cart at the moment checkout begins and walks
// the customer through the three collection steps. Pricing inside the
// session is immutable; cart edits after Begin do not affect it.
type CheckoutSession struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Step            int               `json:"step"`
	Status          string            `json:"status"`
	Customer        CustomerInfo      `json:"customer"`
	Shipping        ShippingInfo      `json:"shipping"`
	Payment         PaymentInfo       `json:"-"`
	Lines           []CartLine        `json:"lines"`
	Subtotal        int64             `json:"subtotal"`
	DiscountPercent int               `json:"discount_percent"`
	CouponCode      string            `json:"coupon_code,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
	FailureReason   string            `json:"failure_reason,omitempty"`
	OrderID         string            `json:"order_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ExpiresAt       time.Time         `json:"expires_at"`
}

// NewCheckoutSession snapshots the cart into a fresh session at step 1.
// Subtotal is the cart's discounted aggregate.
func NewCheckoutSession(id string, cart *Cart) *CheckoutSession {
	now := time.Now().UTC()
	s := &CheckoutSession{
		ID:              id,
		UserID:          cart.UserID,
		Step:            StepCustomer,
		Status:          CheckoutInProgress,
		Lines:           cart.SnapshotLines(),
		Subtotal:        cart.Total(),
		DiscountPercent: cart.DiscountPercent(),
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(SessionTTL),
	}
	if cart.Coupon != nil {
		s.CouponCode = cart.Coupon.Code
	}
	return s
}

// Expired reports whether the session has passed its TTL.
func (s *CheckoutSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Active reports whether the session can still advance. Failed payments keep
// the session active so the customer can retry with a different card.
func (s *CheckoutSession) Active() bool {
	return s.Status == CheckoutInProgress || s.Status == CheckoutPaymentFailed
}

// ShippingCost returns the cost of the selected method, or 0 before step 2
// data is captured.
func (s *CheckoutSession) ShippingCost() int64 {
	cost, ok := shippingCosts[s.Shipping.Method]
	if !ok {
		return 0
	}
	return cost
}

// Tax is computed on the discounted subtotal plus shipping, rounded to the
// nearest cent.
func (s *CheckoutSession) Tax() int64 {
	return int64(math.Round(float64(s.Subtotal+s.ShippingCost()) * TaxRate))
}

// GrandTotal is the amount charged: subtotal + shipping + tax.
func (s *CheckoutSession) GrandTotal() int64 {
	return s.Subtotal + s.ShippingCost() + s.Tax()
}
