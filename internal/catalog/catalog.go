// Package catalog serves product data from an embedded seed feed. The feed
// mirrors the upstream CMS export, so prices arrive in mixed shapes and are
// normalized into cents at load time.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
	"github.com/CMPHP00100/cetera-storefront/internal/pricing"
)

//go:embed seed.json
var seedData []byte

// rawProduct matches the feed's schema. Price fields are typed as any and
// normalized on load.
type rawProduct struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BasePrice any       `json:"base_price"`
	Tiers     []rawTier `json:"tiers"`
	Colors    []string  `json:"colors"`
	ImageURL  string    `json:"image_url"`
}

type rawTier struct {
	Quantity  int `json:"quantity"`
	UnitPrice any `json:"unit_price"`
}

// Catalog is an in-memory, read-only product index.
type Catalog struct {
	byID  map[string]*domain.Product
	order []string
}

// Load parses and normalizes the embedded seed feed.
func Load(logger *slog.Logger) (*Catalog, error) {
	return LoadFrom(seedData, logger)
}

// LoadFrom builds a catalog from raw feed bytes.
func LoadFrom(data []byte, logger *slog.Logger) (*Catalog, error) {
	var raw []rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog feed: %w", err)
	}

	c := &Catalog{byID: make(map[string]*domain.Product, len(raw))}
	for _, rp := range raw {
		if rp.ID == "" {
			logger.Warn("skipping catalog entry without id", slog.String("name", rp.Name))
			continue
		}
		p := &domain.Product{
			ID:        rp.ID,
			Name:      rp.Name,
			BasePrice: pricing.NormalizePrice(rp.BasePrice),
			Colors:    rp.Colors,
			ImageURL:  rp.ImageURL,
		}
		for _, rt := range rp.Tiers {
			p.Tiers = append(p.Tiers, domain.PriceTier{
				Quantity:  rt.Quantity,
				UnitPrice: pricing.NormalizePrice(rt.UnitPrice),
			})
		}
		if p.BasePrice == 0 && len(p.ValidTiers()) == 0 {
			logger.Warn("catalog entry has no usable price", slog.String("product_id", p.ID))
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	sort.Strings(c.order)
	logger.Info("catalog loaded", slog.Int("products", len(c.byID)))
	return c, nil
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (*domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return p, nil
}

// List returns all products in stable id order.
func (c *Catalog) List() []*domain.Product {
	out := make([]*domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
