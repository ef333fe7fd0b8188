package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID(t *testing.T) {
	now := time.UnixMilli(1724800000000).UTC()
	assert.Equal(t, "ORD-1724800000000", NewOrderID(now))
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "**** **** **** 1111", MaskCard("4111 1111 1111 1111"))
	assert.Equal(t, "**** **** **** 0002", MaskCard("4000-0000-0000-0002"))
	assert.Equal(t, "****", MaskCard("12"))
}

func TestNewOrder(t *testing.T) {
	cart := NewCart("user-1")
	line := CartLine{ProductID: "business-cards", Color: "Navy", TierQty: 50, UnitPrice: 200, Count: 1, Name: "Business Cards"}
	cart.Lines[line.Key()] = line
	cart.Coupon = &Coupon{Code: "DISCOUNT20", Percent: 20}

	s := NewCheckoutSession("sess-1", cart)
	s.Customer = CustomerInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	s.Shipping = ShippingInfo{
		Address: "1 Main St", City: "Springfield", State: "IL",
		PostalCode: "62701", Country: "US", Method: ShippingStandard,
	}
	s.Payment = PaymentInfo{CardNumber: "4111111111111111"}

	now := time.Now().UTC()
	order := NewOrder(NewOrderID(now), s, "TXN_ABC123", now)

	assert.True(t, strings.HasPrefix(order.ID, "ORD-"))
	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, int64(8000), order.Subtotal)
	assert.Equal(t, int64(999), order.ShippingCost)
	assert.Equal(t, int64(765), order.Tax)
	assert.Equal(t, int64(9764), order.GrandTotal)
	assert.Equal(t, "Jane Doe", order.CustomerName)
	assert.Equal(t, "jane@example.com", order.CustomerEmail)
	assert.Equal(t, "**** **** **** 1111", order.MaskedCard)
	assert.Equal(t, "TXN_ABC123", order.TransactionID)
	assert.Contains(t, order.ShippingAddress, "Springfield")

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "business-cards", item.ProductID)
	assert.Equal(t, "Business Cards - Navy (qty 50)", item.Name)
	assert.Equal(t, int64(10000), item.LineTotal)
}
