package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/catalog"
	"github.com/CMPHP00100/cetera-storefront/internal/domain"
	"github.com/CMPHP00100/cetera-storefront/internal/event"
	"github.com/CMPHP00100/cetera-storefront/internal/pricing"
	"github.com/CMPHP00100/cetera-storefront/internal/repository"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxCountPerLine is the maximum pack count allowed for a single line.
	MaxCountPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines allowed.
	MaxLinesPerCart = 50
)

// AddLineInput holds the parameters for adding a selection to the cart.
// Pricing is resolved server-side from the catalog; the client never
// supplies a price.
type AddLineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	TierQty   int    `json:"tier_qty" validate:"gte=0"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	repo     repository.CartRepository
	catalog  *catalog.Catalog
	producer *event.Producer
	metrics  *Metrics
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, cat *catalog.Catalog, producer *event.Producer, metrics *Metrics, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		catalog:  cat,
		producer: producer,
		metrics:  metrics,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a user. If no cart exists, returns an
// empty cart without persisting it.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddLine adds a selection to the cart. A selection matching an existing
// line's product, color, and tier increments that line's count; anything
// else becomes a new line. The unit price is resolved from the catalog at
// add time and frozen into the line.
func (s *CartService) AddLine(ctx context.Context, userID string, input AddLineInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.TierQty < 0 {
		return nil, apperrors.InvalidInput("tier quantity must not be negative")
	}

	product, err := s.catalog.Get(input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.HasColor(input.Color) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %s has no color %q", product.ID, input.Color))
	}

	tierQty := input.TierQty
	if tierQty == 0 {
		tierQty = pricing.DefaultTierQty(product)
	}
	unitPrice := pricing.ResolveUnitPrice(product, tierQty)
	if unitPrice == 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %s has no price for tier %d", product.ID, tierQty))
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := domain.LineKey(product.ID, input.Color, tierQty)
	if line, ok := cart.Lines[key]; ok {
		if line.Count >= MaxCountPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("line count must not exceed %d", MaxCountPerLine))
		}
		line.Count++
		cart.Lines[key] = line
	} else {
		if len(cart.Lines) >= MaxLinesPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d lines", MaxLinesPerCart))
		}
		cart.Lines[key] = domain.CartLine{
			ProductID: product.ID,
			Color:     input.Color,
			TierQty:   tierQty,
			UnitPrice: unitPrice,
			Count:     1,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
		}
	}

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "line added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", product.ID),
		slog.String("color", input.Color),
		slog.Int("tier_qty", tierQty),
	)

	return cart, nil
}

// RemoveLine removes a line from the cart regardless of its count.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID, color string, tierQty int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	key := domain.LineKey(productID, color, tierQty)
	if _, ok := cart.Lines[key]; !ok {
		return nil, apperrors.NotFound("cart line", key)
	}
	delete(cart.Lines, key)

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "line removed from cart",
		slog.String("user_id", userID),
		slog.String("line_key", key),
	)

	return cart, nil
}

// IncrementLine raises a line's pack count by one.
func (s *CartService) IncrementLine(ctx context.Context, userID, productID, color string, tierQty int) (*domain.Cart, error) {
	return s.adjustCount(ctx, userID, productID, color, tierQty, +1)
}

// DecrementLine lowers a line's pack count by one, flooring at one. A line
// is only removed by an explicit RemoveLine.
func (s *CartService) DecrementLine(ctx context.Context, userID, productID, color string, tierQty int) (*domain.Cart, error) {
	return s.adjustCount(ctx, userID, productID, color, tierQty, -1)
}

func (s *CartService) adjustCount(ctx context.Context, userID, productID, color string, tierQty, delta int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for count adjust: %w", err)
	}

	key := domain.LineKey(productID, color, tierQty)
	line, ok := cart.Lines[key]
	if !ok {
		return nil, apperrors.NotFound("cart line", key)
	}

	newCount := line.Count + delta
	if newCount < 1 {
		newCount = 1
	}
	if newCount > MaxCountPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("line count must not exceed %d", MaxCountPerLine))
	}
	line.Count = newCount
	cart.Lines[key] = line

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "line count adjusted",
		slog.String("user_id", userID),
		slog.String("line_key", key),
		slog.Int("count", newCount),
	)

	return cart, nil
}

// ChangeTier moves a line to a different quantity tier. The line is
// re-keyed and re-priced; if a line with the target identity already exists
// the counts merge. A merge that would push the count past MaxCountPerLine
// is rejected.
func (s *CartService) ChangeTier(ctx context.Context, userID, productID, color string, fromTierQty, toTierQty int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if toTierQty <= 0 {
		return nil, apperrors.InvalidInput("target tier quantity must be positive")
	}

	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}
	unitPrice := pricing.ResolveUnitPrice(product, toTierQty)
	if unitPrice == 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %s has no price for tier %d", productID, toTierQty))
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for tier change: %w", err)
	}

	fromKey := domain.LineKey(productID, color, fromTierQty)
	line, ok := cart.Lines[fromKey]
	if !ok {
		return nil, apperrors.NotFound("cart line", fromKey)
	}
	if fromTierQty == toTierQty {
		return cart, nil
	}

	delete(cart.Lines, fromKey)

	toKey := domain.LineKey(productID, color, toTierQty)
	if existing, ok := cart.Lines[toKey]; ok {
		merged := existing.Count + line.Count
		if merged > MaxCountPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("line count must not exceed %d", MaxCountPerLine))
		}
		existing.Count = merged
		cart.Lines[toKey] = existing
	} else {
		line.TierQty = toTierQty
		line.UnitPrice = unitPrice
		cart.Lines[toKey] = line
	}

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "line tier changed",
		slog.String("user_id", userID),
		slog.String("from", fromKey),
		slog.String("to", toKey),
	)

	return cart, nil
}

// ApplyCoupon applies a coupon to the cart. An unrecognized code clears any
// previously applied coupon before the rejection is reported, so a failed
// retype never leaves a stale discount behind.
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for coupon: %w", err)
	}

	coupon, ok := domain.LookupCoupon(code)
	if !ok {
		hadCoupon := cart.Coupon != nil
		cart.Coupon = nil
		if hadCoupon {
			if err := s.saveAndPublish(ctx, cart); err != nil {
				return nil, err
			}
		}
		s.metrics.CouponApplied("rejected")
		return nil, apperrors.CouponInvalid(code)
	}

	cart.Coupon = coupon
	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CouponApplied("accepted")
	s.logger.InfoContext(ctx, "coupon applied",
		slog.String("user_id", userID),
		slog.String("code", coupon.Code),
		slog.Int("percent", coupon.Percent),
	)

	return cart, nil
}

// RemoveCoupon clears the active coupon, if any.
func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for coupon removal: %w", err)
	}

	cart.Coupon = nil
	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// ClearCart removes all lines and the coupon by deleting the stored cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) saveAndPublish(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = nowUTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
