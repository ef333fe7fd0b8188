// Package pricing resolves unit prices from tier tables and normalizes the
// heterogeneous price representations found in catalog feeds into integer
// cents.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// ResolveUnitPrice returns the per-unit price in cents for the requested
// tier quantity. An exact tier match wins; otherwise the base price applies.
// Invalid tiers never match.
func ResolveUnitPrice(p *domain.Product, tierQty int) int64 {
	for _, t := range p.Tiers {
		if !t.Valid() {
			continue
		}
		if t.Quantity == tierQty {
			return t.UnitPrice
		}
	}
	return p.BasePrice
}

// DefaultTierQty returns the quantity a selection falls back to when the
// product has no valid tiers.
func DefaultTierQty(p *domain.Product) int {
	if len(p.ValidTiers()) == 0 {
		return 1
	}
	return p.ValidTiers()[0].Quantity
}

// PriceRange returns the lowest and highest per-unit prices across the
// product's valid tiers. Products without valid tiers range over the base
// price alone.
func PriceRange(p *domain.Product) (low, high int64) {
	tiers := p.ValidTiers()
	if len(tiers) == 0 {
		return p.BasePrice, p.BasePrice
	}
	low, high = tiers[0].UnitPrice, tiers[0].UnitPrice
	for _, t := range tiers[1:] {
		if t.UnitPrice < low {
			low = t.UnitPrice
		}
		if t.UnitPrice > high {
			high = t.UnitPrice
		}
	}
	return low, high
}

// NormalizePrice coerces a raw feed value into integer cents. Feeds carry
// prices as numbers, as strings with currency symbols and thousands
// separators, or wrapped in arrays where the first parseable entry wins.
// Unparseable or non-positive values normalize to 0, which marks the price
// as absent.
func NormalizePrice(raw any) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return clampCents(math.Round(v * 100))
	case float32:
		return clampCents(math.Round(float64(v) * 100))
	case int:
		return clampCents(float64(v) * 100)
	case int64:
		return clampCents(float64(v) * 100)
	case string:
		return normalizeString(v)
	case []any:
		for _, entry := range v {
			if cents := NormalizePrice(entry); cents > 0 {
				return cents
			}
		}
		return 0
	default:
		return 0
	}
}

func normalizeString(s string) int64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return clampCents(math.Round(f * 100))
}

func clampCents(cents float64) int64 {
	if cents <= 0 || math.IsNaN(cents) || math.IsInf(cents, 0) {
		return 0
	}
	return int64(cents)
}
