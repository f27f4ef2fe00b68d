package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrStateNotFound  = errors.New("conversation state not found")
	ErrNilState       = errors.New("conversation state is nil")
	ErrInvalidSession = errors.New("session id is empty")
)

// Store persists conversation state keyed by session id. It is injected
// into the front end, not the engine: the engine only ever sees a single
// state value per turn.
type Store interface {
	Load(ctx context.Context, sessionID string) (*ConversationState, error)
	Save(ctx context.Context, sessionID string, st *ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps conversation state in process memory. Suitable for the
// CLI mode and tests; a restart drops all sessions.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*ConversationState)}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*ConversationState, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return nil, ErrStateNotFound
	}
	return st, nil
}

func (m *MemoryStore) Save(ctx context.Context, sessionID string, st *ConversationState) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ErrInvalidSession
	}
	if st == nil {
		return ErrNilState
	}
	st.EnsureUserData()
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = st
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
