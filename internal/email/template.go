package email

import (
	"fmt"
	"strings"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

func renderConfirmationBody(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "Thanks for your order %s. Here is your summary:\n\n", order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d - %s\n", item.Name, item.Count, formatCents(item.LineTotal))
	}
	fmt.Fprintf(&b, "\nSubtotal:  %s\n", formatCents(order.Subtotal))
	if order.DiscountPercent > 0 {
		fmt.Fprintf(&b, "Discount:  %d%% applied (%s)\n", order.DiscountPercent, order.CouponCode)
	}
	fmt.Fprintf(&b, "Shipping:  %s (%s)\n", formatCents(order.ShippingCost), order.ShippingMethod)
	fmt.Fprintf(&b, "Tax:       %s\n", formatCents(order.Tax))
	fmt.Fprintf(&b, "Total:     %s\n\n", formatCents(order.GrandTotal))
	fmt.Fprintf(&b, "Paid with card %s.\n", order.MaskedCard)
	fmt.Fprintf(&b, "Shipping to: %s\n", order.ShippingAddress)
	return b.String()
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
