package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
	"github.com/CMPHP00100/cetera-storefront/internal/email"
	"github.com/CMPHP00100/cetera-storefront/internal/event"
	"github.com/CMPHP00100/cetera-storefront/internal/payment"
	"github.com/CMPHP00100/cetera-storefront/internal/repository"
)

const emailSendTimeout = 10 * time.Second

// StepInput carries the data submitted with a step advance. Only the field
// matching the session's current step is consulted.
type StepInput struct {
	Customer *domain.CustomerInfo `json:"customer,omitempty"`
	Shipping *domain.ShippingInfo `json:"shipping,omitempty"`
	Payment  *domain.PaymentInfo  `json:"payment,omitempty"`
}

// CheckoutService drives the three-step checkout state machine. A session
// freezes the cart's pricing at Begin; the live cart is untouched until the
// final charge succeeds.
type CheckoutService struct {
	sessions repository.SessionStore
	carts    repository.CartRepository
	orders   repository.OrderRepository
	provider payment.Provider
	producer *event.Producer
	sender   email.Sender
	metrics  *Metrics
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	sessions repository.SessionStore,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	provider payment.Provider,
	producer *event.Producer,
	sender email.Sender,
	metrics *Metrics,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions: sessions,
		carts:    carts,
		orders:   orders,
		provider: provider,
		producer: producer,
		sender:   sender,
		metrics:  metrics,
		logger:   logger,
	}
}

// Begin snapshots the user's cart into a new session at the customer step.
// An empty cart cannot enter checkout.
func (s *CheckoutService) Begin(ctx context.Context, userID string) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	session := domain.NewCheckoutSession(uuid.New().String(), cart)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout started",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
		slog.Int64("subtotal", session.Subtotal),
	)

	return session, nil
}

// Get returns the session, enforcing ownership.
func (s *CheckoutService) Get(ctx context.Context, userID, sessionID string) (*domain.CheckoutSession, error) {
	return s.ownedSession(ctx, userID, sessionID)
}

// Next submits the current step's data and advances on success. Validation
// failures are written to the session's error map and the step does not
// move. At the payment step a valid submission triggers the charge; a
// declined charge leaves the session retryable, an approved one completes
// checkout and returns the session carrying its order id.
func (s *CheckoutService) Next(ctx context.Context, userID, sessionID string, input StepInput) (*domain.CheckoutSession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, apperrors.Conflict("checkout session is no longer active")
	}

	switch session.Step {
	case domain.StepCustomer:
		if input.Customer == nil {
			return nil, apperrors.InvalidInput("customer data is required at this step")
		}
		session.Customer = *input.Customer
		if errs := session.Customer.Validate(); len(errs) > 0 {
			return s.stashErrors(ctx, session, errs)
		}
		session.Step = domain.StepShipping

	case domain.StepShipping:
		if input.Shipping == nil {
			return nil, apperrors.InvalidInput("shipping data is required at this step")
		}
		session.Shipping = *input.Shipping
		if errs := session.Shipping.Validate(); len(errs) > 0 {
			return s.stashErrors(ctx, session, errs)
		}
		session.Step = domain.StepPayment

	case domain.StepPayment:
		if input.Payment == nil {
			return nil, apperrors.InvalidInput("payment data is required at this step")
		}
		session.Payment = *input.Payment
		if errs := session.Payment.Validate(); len(errs) > 0 {
			return s.stashErrors(ctx, session, errs)
		}
		return s.settle(ctx, session)

	default:
		return nil, apperrors.Conflict(fmt.Sprintf("session is at unknown step %d", session.Step))
	}

	session.Errors = nil
	session.Status = domain.CheckoutInProgress
	session.FailureReason = ""
	session.UpdatedAt = nowUTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout step advanced",
		slog.String("session_id", session.ID),
		slog.Int("step", session.Step),
	)

	return session, nil
}

// Previous moves the session back one step, flooring at the customer step.
// Collected data is retained; validation errors are cleared.
func (s *CheckoutService) Previous(ctx context.Context, userID, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, apperrors.Conflict("checkout session is no longer active")
	}

	if session.Step > domain.StepCustomer {
		session.Step--
	}
	session.Errors = nil
	session.Status = domain.CheckoutInProgress
	session.FailureReason = ""
	session.UpdatedAt = nowUTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}

	return session, nil
}

// Cancel abandons the session. The cart is left as it was.
func (s *CheckoutService) Cancel(ctx context.Context, userID, sessionID string) error {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("delete checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout canceled",
		slog.String("session_id", session.ID),
		slog.String("user_id", userID),
	)

	return nil
}

// settle charges the card and, on approval, records the order, clears the
// cart, and retires the session.
func (s *CheckoutService) settle(ctx context.Context, session *domain.CheckoutSession) (*domain.CheckoutSession, error) {
	result, err := s.provider.Charge(ctx, payment.ChargeInput{
		CardNumber: session.Payment.NormalizedCardNumber(),
		CardName:   session.Payment.CardName,
		ExpMonth:   session.Payment.ExpMonth,
		ExpYear:    session.Payment.ExpYear,
		CVV:        session.Payment.CVV,
		Amount:     session.GrandTotal(),
		Currency:   "USD",
		OrderRef:   session.ID,
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperrors.ErrPaymentFailed) {
			s.metrics.PaymentAttempt(appErr.Code)
			session.Status = domain.CheckoutPaymentFailed
			session.FailureReason = appErr.Message
			session.Errors = nil
			session.UpdatedAt = nowUTC()
			if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
				return nil, fmt.Errorf("save checkout session after decline: %w", saveErr)
			}
			s.logger.WarnContext(ctx, "payment declined",
				slog.String("session_id", session.ID),
				slog.String("code", appErr.Code),
			)
			return session, nil
		}
		return nil, fmt.Errorf("charge payment: %w", err)
	}

	s.metrics.PaymentAttempt("approved")

	now := nowUTC()
	order := domain.NewOrder(domain.NewOrderID(now), session, result.TransactionID, now)
	if err := s.orders.Create(ctx, order); err != nil {
		// The charge went through but the ledger write failed. Surface the
		// transaction id in the log so the payment can be reconciled.
		s.logger.ErrorContext(ctx, "order record failed after successful charge",
			slog.String("session_id", session.ID),
			slog.String("transaction_id", result.TransactionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("record order: %w", err)
	}
	s.metrics.OrderPlaced()

	if err := s.carts.Delete(ctx, session.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete checkout session",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	session.Status = domain.CheckoutCompleted
	session.OrderID = order.ID
	session.FailureReason = ""
	session.Errors = nil
	session.UpdatedAt = now

	s.sendConfirmation(ctx, order)

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", session.ID),
		slog.String("order_id", order.ID),
		slog.Int64("grand_total", order.GrandTotal),
	)

	return session, nil
}

// sendConfirmation delivers the confirmation email in the background. A
// failed send is logged and never affects the recorded order.
func (s *CheckoutService) sendConfirmation(ctx context.Context, order *domain.Order) {
	msg := email.OrderConfirmation(order)
	bg := context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(bg, emailSendTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, msg); err != nil {
			s.logger.Error("confirmation email failed",
				slog.String("order_id", order.ID),
				slog.String("sender", s.sender.Name()),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (s *CheckoutService) stashErrors(ctx context.Context, session *domain.CheckoutSession, errs map[string]string) (*domain.CheckoutSession, error) {
	session.Errors = errs
	session.UpdatedAt = nowUTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	return session, nil
}

func (s *CheckoutService) ownedSession(ctx context.Context, userID, sessionID string) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	return session, nil
}
