package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
	"github.com/CMPHP00100/cetera-storefront/internal/email"
	"github.com/CMPHP00100/cetera-storefront/internal/repository"
)

// OrderService reads the order ledger and resends confirmations.
type OrderService struct {
	orders repository.OrderRepository
	sender email.Sender
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, sender email.Sender, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		sender: sender,
		logger: logger,
	}
}

// GetOrder returns an order, enforcing ownership.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}
	return order, nil
}

// ListOrders returns a user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ResendConfirmation sends the confirmation email for an existing order.
func (s *OrderService) ResendConfirmation(ctx context.Context, userID, orderID string) error {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	if err := s.sender.Send(ctx, email.OrderConfirmation(order)); err != nil {
		return apperrors.ServiceUnavailable("confirmation email could not be sent")
	}

	s.logger.InfoContext(ctx, "confirmation email resent",
		slog.String("order_id", orderID),
		slog.String("user_id", userID),
	)

	return nil
}
