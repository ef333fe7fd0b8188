package domain

// PriceTier is a quantity/unit-price pair offered for a product. Quantity is
// the number of units per pack at that tier (e.g. 50 business cards), and
// UnitPrice is the per-unit price in cents at that tier.
type PriceTier struct {
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// Valid reports whether the tier is selectable: both quantity and price must
// be positive. Feeds with empty or zero tier fields produce invalid tiers
// that are filtered out before selection.
func (t PriceTier) Valid() bool {
	return t.Quantity > 0 && t.UnitPrice > 0
}

// Product is catalog data: read-only from the cart's perspective.
type Product struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	BasePrice int64       `json:"base_price"`
	Tiers     []PriceTier `json:"tiers,omitempty"`
	Colors    []string    `json:"colors,omitempty"`
	ImageURL  string      `json:"image_url,omitempty"`
}

// ValidTiers returns the selectable tiers, preserving order.
func (p *Product) ValidTiers() []PriceTier {
	out := make([]PriceTier, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		if t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// HasColor reports whether the product offers the given color variant.
// Products without variants accept only the empty color.
func (p *Product) HasColor(color string) bool {
	if len(p.Colors) == 0 {
		return color == ""
	}
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
