package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
	"github.com/CMPHP00100/cetera-storefront/internal/email"
)

// failingSender always errors, standing in for an unreachable mail API.
type failingSender struct{}

func (failingSender) Name() string { return "failing" }

func (failingSender) Send(context.Context, email.Message) error {
	return errors.New("mail api unreachable")
}

func paidOrder() *domain.Order {
	return &domain.Order{
		ID:            "ORD-1724800000000",
		UserID:        "user-1",
		Status:        domain.OrderStatusPaid,
		GrandTotal:    9764,
		Currency:      "USD",
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CreatedAt:     time.Now().UTC(),
	}
}

func newTestOrderService(orders *mockOrderRepository, sender email.Sender) *OrderService {
	if sender == nil {
		sender = email.NewMockSender(newTestLogger())
	}
	return NewOrderService(orders, sender, newTestLogger())
}

func TestGetOrder_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders, nil)
	ctx := context.Background()

	o := paidOrder()
	orders.On("GetByID", ctx, o.ID).Return(o, nil)

	got, err := svc.GetOrder(ctx, "user-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestGetOrder_WrongUserLooksMissing(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders, nil)
	ctx := context.Background()

	o := paidOrder()
	orders.On("GetByID", ctx, o.ID).Return(o, nil)

	_, err := svc.GetOrder(ctx, "someone-else", o.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListOrders_RequiresUserID(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders, nil)

	_, err := svc.ListOrders(context.Background(), "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestListOrders_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders, nil)
	ctx := context.Background()

	orders.On("ListByUser", ctx, "user-1").Return([]*domain.Order{paidOrder()}, nil)

	got, err := svc.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResendConfirmation_SendsToCustomer(t *testing.T) {
	orders := new(mockOrderRepository)
	sender := email.NewMockSender(newTestLogger())
	svc := newTestOrderService(orders, sender)
	ctx := context.Background()

	o := paidOrder()
	orders.On("GetByID", ctx, o.ID).Return(o, nil)

	require.NoError(t, svc.ResendConfirmation(ctx, "user-1", o.ID))
	require.Len(t, sender.Sent(), 1)
	assert.Equal(t, "jane@example.com", sender.Sent()[0].To)
}

func TestResendConfirmation_SenderDown(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders, failingSender{})
	ctx := context.Background()

	o := paidOrder()
	orders.On("GetByID", mock.Anything, o.ID).Return(o, nil)

	err := svc.ResendConfirmation(ctx, "user-1", o.ID)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}
