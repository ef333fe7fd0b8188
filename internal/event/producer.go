// Package event publishes storefront domain events to Kafka. Publishing is
// best effort at the call sites; a broker outage never blocks a cart edit
// or an order.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/CMPHP00100/cetera-storefront/pkg/kafka"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated = "storefront.cart.updated"
	TopicCartCleared = "storefront.cart.cleared"
	TopicOrderPlaced = "storefront.order.placed"
)

// Aggregate type constants.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID      string         `json:"user_id"`
	Lines       []CartLineData `json:"lines"`
	ItemCount   int            `json:"item_count"`
	TotalAmount int64          `json:"total_amount"`
	Currency    string         `json:"currency"`
}

// CartLineData is the line payload within cart events.
type CartLineData struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color,omitempty"`
	TierQty   int    `json:"tier_qty"`
	UnitPrice int64  `json:"unit_price"`
	Count     int    `json:"count"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	GrandTotal    int64  `json:"grand_total"`
	Currency      string `json:"currency"`
	ItemCount     int    `json:"item_count"`
	TransactionID string `json:"transaction_id"`
}

// Producer publishes storefront domain events.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event reflecting the cart's
// current lines and discounted total.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	snapshot := cart.SnapshotLines()
	lines := make([]CartLineData, len(snapshot))
	for i, l := range snapshot {
		lines[i] = CartLineData{
			ProductID: l.ProductID,
			Color:     l.Color,
			TierQty:   l.TierQty,
			UnitPrice: l.UnitPrice,
			Count:     l.Count,
		}
	}

	data := CartUpdatedData{
		UserID:      cart.UserID,
		Lines:       lines,
		ItemCount:   cart.ItemCount(),
		TotalAmount: cart.Total(),
		Currency:    cart.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.UserID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", cart.UserID),
		slog.Int("item_count", cart.ItemCount()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	data := CartClearedData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, userID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishOrderPlaced publishes an order.placed event after a successful
// charge and ledger write.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Count
	}

	data := OrderPlacedData{
		OrderID:       order.ID,
		UserID:        order.UserID,
		GrandTotal:    order.GrandTotal,
		Currency:      order.Currency,
		ItemCount:     itemCount,
		TransactionID: order.TransactionID,
	}

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", order.ID),
		slog.Int64("grand_total", order.GrandTotal),
	)

	return nil
}
