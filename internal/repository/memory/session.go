// Package memory holds checkout sessions in process memory. Sessions carry
// card data for the duration of a charge attempt, so they deliberately never
// touch a persistent store.
package memory

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/CMPHP00100/cetera-storefront/pkg/errors"

	"github.com/CMPHP00100/cetera-storefront/internal/domain"
)

const janitorInterval = time.Minute

// SessionStore implements repository.SessionStore with a mutex-guarded map.
// A background janitor evicts expired sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.CheckoutSession
	done     chan struct{}
	closeOne sync.Once
}

// NewSessionStore creates the store and starts its eviction loop.
func NewSessionStore() *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*domain.CheckoutSession),
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Get returns the session with the given id. Expired sessions are treated as
// missing and evicted on access.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.CheckoutSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("checkout session", id)
	}
	if session.Expired(time.Now().UTC()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, apperrors.NotFound("checkout session", id)
	}
	return session, nil
}

// Save stores or replaces a session.
func (s *SessionStore) Save(_ context.Context, session *domain.CheckoutSession) error {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return nil
}

// Delete removes a session. Deleting a missing session is a no-op.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Close stops the eviction loop.
func (s *SessionStore) Close() {
	s.closeOne.Do(func() { close(s.done) })
}

func (s *SessionStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now().UTC()
			s.mu.Lock()
			for id, session := range s.sessions {
				if session.Expired(now) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
