// Package email sends order confirmation messages. Delivery is best effort:
// a failed send is logged and never unwinds the order it confirms.
package email

import (
	"context"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a message through a specific channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// OrderConfirmation renders the confirmation message for a recorded order.
func OrderConfirmation(order *domain.Order) Message {
	return Message{
		To:      order.CustomerEmail,
		Subject: "Order confirmation " + order.ID,
		Body:    renderConfirmationBody(order),
	}
}
