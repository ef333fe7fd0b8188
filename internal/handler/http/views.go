package http

import (
	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// CartView is the cart response shape. Totals are derived at render time so
// the stored cart never carries stale aggregates.
type CartView struct {
	UserID          string            `json:"user_id"`
	Lines           []CartLineView    `json:"lines"`
	Coupon          *domain.Coupon    `json:"coupon,omitempty"`
	Currency        string            `json:"currency"`
	ItemCount       int               `json:"item_count"`
	Subtotal        int64             `json:"subtotal"`
	DiscountPercent int               `json:"discount_percent"`
	DiscountAmount  int64             `json:"discount_amount"`
	Total           int64             `json:"total"`
}

// CartLineView is one rendered cart line.
type CartLineView struct {
	ProductID   string `json:"product_id"`
	Color       string `json:"color,omitempty"`
	TierQty     int    `json:"tier_qty"`
	UnitPrice   int64  `json:"unit_price"`
	Count       int    `json:"count"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url,omitempty"`
	LineTotal   int64  `json:"line_total"`
}

func cartView(cart *domain.Cart) CartView {
	snapshot := cart.SnapshotLines()
	lines := make([]CartLineView, len(snapshot))
	for i, l := range snapshot {
		lines[i] = CartLineView{
			ProductID:   l.ProductID,
			Color:       l.Color,
			TierQty:     l.TierQty,
			UnitPrice:   l.UnitPrice,
			Count:       l.Count,
			Name:        l.Name,
			DisplayName: l.DisplayName(),
			ImageURL:    l.ImageURL,
			LineTotal:   l.LineTotal(),
		}
	}
	return CartView{
		UserID:          cart.UserID,
		Lines:           lines,
		Coupon:          cart.Coupon,
		Currency:        cart.Currency,
		ItemCount:       cart.ItemCount(),
		Subtotal:        cart.Subtotal(),
		DiscountPercent: cart.DiscountPercent(),
		DiscountAmount:  cart.DiscountAmount(),
		Total:           cart.Total(),
	}
}

// CheckoutView is the checkout session response shape. The payment block is
// never rendered.
type CheckoutView struct {
	ID              string              `json:"id"`
	Step            int                 `json:"step"`
	Status          string              `json:"status"`
	Customer        domain.CustomerInfo `json:"customer"`
	Shipping        domain.ShippingInfo `json:"shipping"`
	Lines           []CartLineView      `json:"lines"`
	Subtotal        int64               `json:"subtotal"`
	DiscountPercent int                 `json:"discount_percent"`
	CouponCode      string              `json:"coupon_code,omitempty"`
	ShippingCost    int64               `json:"shipping_cost"`
	Tax             int64               `json:"tax"`
	GrandTotal      int64               `json:"grand_total"`
	Errors          map[string]string   `json:"errors,omitempty"`
	FailureReason   string              `json:"failure_reason,omitempty"`
	OrderID         string              `json:"order_id,omitempty"`
}

func checkoutView(s *domain.CheckoutSession) CheckoutView {
	lines := make([]CartLineView, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = CartLineView{
			ProductID:   l.ProductID,
			Color:       l.Color,
			TierQty:     l.TierQty,
			UnitPrice:   l.UnitPrice,
			Count:       l.Count,
			Name:        l.Name,
			DisplayName: l.DisplayName(),
			ImageURL:    l.ImageURL,
			LineTotal:   l.LineTotal(),
		}
	}
	return CheckoutView{
		ID:              s.ID,
		Step:            s.Step,
		Status:          s.Status,
		Customer:        s.Customer,
		Shipping:        s.Shipping,
		Lines:           lines,
		Subtotal:        s.Subtotal,
		DiscountPercent: s.DiscountPercent,
		CouponCode:      s.CouponCode,
		ShippingCost:    s.ShippingCost(),
		Tax:             s.Tax(),
		GrandTotal:      s.GrandTotal(),
		Errors:          s.Errors,
		FailureReason:   s.FailureReason,
		OrderID:         s.OrderID,
	}
}
