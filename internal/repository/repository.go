// Package repository declares the persistence interfaces the services
// depend on. Implementations live in subpackages per backing store.
package repository

import (
	"context"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// CartRepository persists one cart per user. Get on a missing cart returns
// a NotFound error; callers that want an empty cart handle that case.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// OrderRepository is the append-only order ledger. Orders are never updated
// or deleted once recorded.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
}

// SessionStore holds in-flight checkout sessions. Sessions are ephemeral
// and are dropped on completion, cancellation, or expiry.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)
	Save(ctx context.Context, session *domain.CheckoutSession) error
	Delete(ctx context.Context, id string) error
}
