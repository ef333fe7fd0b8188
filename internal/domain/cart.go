package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LineKey builds the composite identity for a cart line. A product selected
// in two different colors, or at two different quantity tiers, produces two
// distinct lines.
func LineKey(productID, color string, tierQty int) string {
	return productID + "|" + color + "|" + strconv.Itoa(tierQty)
}

// ParseLineKey splits a composite line key back into its parts.
func ParseLineKey(key string) (productID, color string, tierQty int, err error) {
	parts := strings.Split(key, "|")
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("malformed line key %q", key)
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", "", 0, fmt.Errorf("malformed tier quantity in line key %q: %w", key, err)
	}
	return parts[0], parts[1], qty, nil
}

// CartLine is one distinct selection in the cart. TierQty is the number of
// units per pack from the selected tier; Count is how many packs of that
// selection are in the cart. The two are never conflated: a line's value is
// TierQty × UnitPrice × Count.
type CartLine struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color,omitempty"`
	TierQty   int    `json:"tier_qty"`
	UnitPrice int64  `json:"unit_price"`
	Count     int    `json:"count"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Key returns the line's composite identity.
func (l *CartLine) Key() string {
	return LineKey(l.ProductID, l.Color, l.TierQty)
}

// DisplayName derives the customer-facing label from the selection.
func (l *CartLine) DisplayName() string {
	name := l.Name
	if l.Color != "" {
		name = fmt.Sprintf("%s - %s", name, l.Color)
	}
	if l.TierQty > 1 {
		name = fmt.Sprintf("%s (qty %d)", name, l.TierQty)
	}
	return name
}

// LineTotal is TierQty × UnitPrice × Count in cents.
func (l *CartLine) LineTotal() int64 {
	return int64(l.TierQty) * l.UnitPrice * int64(l.Count)
}

// Cart maps line identity to line. Totals are always derived from the lines
// plus the active coupon; they are never stored.
type Cart struct {
	UserID    string              `json:"user_id"`
	Lines     map[string]CartLine `json:"lines"`
	Coupon    *Coupon             `json:"coupon,omitempty"`
	Currency  string              `json:"currency"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewCart creates an empty cart for the given user.
func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Lines:     make(map[string]CartLine),
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subtotal is the pre-discount aggregate: Σ(tierQty × unitPrice × count).
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// DiscountPercent returns the active coupon's percentage, or 0.
func (c *Cart) DiscountPercent() int {
	if c.Coupon == nil {
		return 0
	}
	return c.Coupon.Percent
}

// DiscountAmount is the coupon's cut of the subtotal in cents, rounded to
// the nearest cent.
func (c *Cart) DiscountAmount() int64 {
	pct := c.DiscountPercent()
	if pct == 0 {
		return 0
	}
	return int64(math.Round(float64(c.Subtotal()) * float64(pct) / 100))
}

// Total is the discounted aggregate: subtotal × (1 − discount/100).
func (c *Cart) Total() int64 {
	return c.Subtotal() - c.DiscountAmount()
}

// ItemCount is the total pack count across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Count
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// SnapshotLines returns a deep copy of the lines in deterministic key order,
// for freezing into a checkout session or order.
func (c *Cart) SnapshotLines() []CartLine {
	keys := make([]string, 0, len(c.Lines))
	for k := range c.Lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]CartLine, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, c.Lines[k])
	}
	return lines
}
