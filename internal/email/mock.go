package email

import (
	"context"
	"log/slog"
	"sync"
)

// MockSender logs messages and always succeeds. It records sent messages so
// tests can assert on them.
type MockSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewMockSender creates a mock sender.
func NewMockSender(logger *slog.Logger) *MockSender {
	return &MockSender{logger: logger}
}

// Name returns the name of this sender.
func (s *MockSender) Name() string {
	return "mock"
}

// Send records the message and logs it.
func (s *MockSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "mock sender: email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// Sent returns a copy of the messages sent so far.
func (s *MockSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
