package domain

import (
	"fmt"
	"strings"
	"time"
)

// Order statuses. Orders are only recorded after a successful charge, so
// they enter the ledger already paid.
const (
	OrderStatusPaid = "paid"
)

// OrderItem is one line of a recorded order, denormalized from the checkout
// snapshot so the order survives catalog changes.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	TierQty   int    `json:"tier_qty"`
	UnitPrice int64  `json:"unit_price"`
	Count     int    `json:"count"`
	LineTotal int64  `json:"line_total"`
}

// Order is the immutable record of a completed checkout. Card data is
// reduced to the masked number before the order is constructed.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
	Subtotal        int64       `json:"subtotal"`
	DiscountPercent int         `json:"discount_percent"`
	CouponCode      string      `json:"coupon_code,omitempty"`
	ShippingMethod  string      `json:"shipping_method"`
	ShippingCost    int64       `json:"shipping_cost"`
	Tax             int64       `json:"tax"`
	GrandTotal      int64       `json:"grand_total"`
	Currency        string      `json:"currency"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	ShippingAddress string      `json:"shipping_address"`
	MaskedCard      string      `json:"masked_card"`
	TransactionID   string      `json:"transaction_id"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewOrderID derives an order identifier from the current time in
// milliseconds.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// MaskCard reduces a card number to its last four digits. Shorter inputs are
// masked entirely.
func MaskCard(cardNumber string) string {
	digits := strings.ReplaceAll(strings.ReplaceAll(cardNumber, " ", ""), "-", "")
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// NewOrder assembles an order from a paid checkout session.
func NewOrder(id string, s *CheckoutSession, transactionID string, now time.Time) *Order {
	items := make([]OrderItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Name:      l.DisplayName(),
			Color:     l.Color,
			TierQty:   l.TierQty,
			UnitPrice: l.UnitPrice,
			Count:     l.Count,
			LineTotal: l.LineTotal(),
		})
	}
	address := fmt.Sprintf("%s, %s, %s %s, %s",
		s.Shipping.Address, s.Shipping.City, s.Shipping.State, s.Shipping.PostalCode, s.Shipping.Country)
	return &Order{
		ID:              id,
		UserID:          s.UserID,
		Status:          OrderStatusPaid,
		Items:           items,
		Subtotal:        s.Subtotal,
		DiscountPercent: s.DiscountPercent,
		CouponCode:      s.CouponCode,
		ShippingMethod:  s.Shipping.Method,
		ShippingCost:    s.ShippingCost(),
		Tax:             s.Tax(),
		GrandTotal:      s.GrandTotal(),
		Currency:        "USD",
		CustomerName:    strings.TrimSpace(s.Customer.FirstName + " " + s.Customer.LastName),
		CustomerEmail:   s.Customer.Email,
		ShippingAddress: address,
		MaskedCard:      MaskCard(s.Payment.CardNumber),
		TransactionID:   transactionID,
		CreatedAt:       now,
	}
}
