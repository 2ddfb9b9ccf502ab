// Package store provides storage backends for the Arogya dev server.
//
// It includes an in-memory store for tests and ephemeral runs, and an
// SQLite-backed store for persistent local state.
package store

import (
	"sort"
	"sync"

	"github.com/arogya-health/arogya/internal/models"
)

// Store is the persistence surface the dev server depends on.
type Store interface {
	SaveSession(s models.Session) error
	GetSession(id string) (*models.Session, error)
	AddMessage(m models.Message) error
	GetMessages(sessionID string) ([]models.Message, error)
	CountMessages(sessionID string) (int, error)
	SaveHealthGuide(g models.HealthGuide) error
	GetHealthGuide(sessionID string) (*models.HealthGuide, error)
	AddFeedback(f models.Feedback) error
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	// DSN is the database connection string (a file path for SQLite).
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore keeps all consultation state in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	messages map[string][]models.Message
	guides   map[string]models.HealthGuide
	feedback []models.Feedback
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]models.Session),
		messages: make(map[string][]models.Message),
		guides:   make(map[string]models.HealthGuide),
	}
}

// SaveSession inserts or replaces a session wholesale.
func (s *InMemoryStore) SaveSession(session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// GetSession returns the session or models.ErrSessionNotFound.
func (s *InMemoryStore) GetSession(id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return &session, nil
}

// AddMessage appends a message to its session's transcript.
func (s *InMemoryStore) AddMessage(m models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.SessionID] = append(s.messages[m.SessionID], m)
	return nil
}

// GetMessages returns the session transcript in timestamp order.
func (s *InMemoryStore) GetMessages(sessionID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]models.Message, len(s.messages[sessionID]))
	copy(msgs, s.messages[sessionID])
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

// CountMessages returns the number of stored messages for a session.
func (s *InMemoryStore) CountMessages(sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[sessionID]), nil
}

// SaveHealthGuide stores the guide for its session.
func (s *InMemoryStore) SaveHealthGuide(g models.HealthGuide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guides[g.SessionID] = g
	return nil
}

// GetHealthGuide returns the stored guide or models.ErrGuideNotFound.
func (s *InMemoryStore) GetHealthGuide(sessionID string) (*models.HealthGuide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guide, ok := s.guides[sessionID]
	if !ok {
		return nil, models.ErrGuideNotFound
	}
	return &guide, nil
}

// AddFeedback records a feedback submission.
func (s *InMemoryStore) AddFeedback(f models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, f)
	return nil
}

// Feedback returns all recorded feedback, oldest first.
func (s *InMemoryStore) Feedback() []models.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
