package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/CMPHP00100/cetera-storefront/pkg/httpclient"
)

// HTTPSender delivers messages through an external mail API, protected by a
// circuit breaker so a flapping mail provider cannot pile up requests.
type HTTPSender struct {
	client   *httpclient.CircuitBreakerClient
	endpoint string
	from     string
	logger   *slog.Logger
}

// NewHTTPSender creates a mail-API-backed sender.
func NewHTTPSender(client *httpclient.CircuitBreakerClient, endpoint, from string, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		client:   client,
		endpoint: endpoint,
		from:     from,
		logger:   logger,
	}
}

// Name returns the name of this sender.
func (s *HTTPSender) Name() string {
	return "mail-api"
}

type mailAPIRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send posts the message to the mail API. Any non-2xx response is an error.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(mailAPIRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	resp, err := s.client.Post(ctx, s.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post to mail api: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail api returned status %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "confirmation email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
