package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// Memory is an in-process Repository used when no database is configured.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]types.ChatSession
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]types.ChatSession)}
}

func (m *Memory) Get(ctx context.Context, id string) (*types.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := session
	out.Turns = append([]types.ConversationTurn(nil), session.Turns...)
	return &out, nil
}

// List returns all sessions, most recently updated first.
func (m *Memory) List(ctx context.Context) ([]types.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ChatSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		session.Turns = append([]types.ConversationTurn(nil), session.Turns...)
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *Memory) Put(ctx context.Context, session *types.ChatSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session must have an id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	stored := *session
	stored.Turns = append([]types.ConversationTurn(nil), session.Turns...)
	if existing, ok := m.sessions[session.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.sessions[session.ID] = stored
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}
