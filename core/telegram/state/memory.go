package state

import (
	"context"
	"sync"
)

type stateKey struct {
	chatID int64
	userID int64
}

// MemoryStore keeps conversations in a process-local map. State does not
// survive restarts; use the Postgres store for that.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[stateKey]Conversation
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[stateKey]Conversation)}
}

func (s *MemoryStore) Get(_ context.Context, chatID, userID int64) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cv, ok := s.data[stateKey{chatID, userID}]
	if !ok {
		return Conversation{ChatID: chatID, UserID: userID}, nil
	}
	return copyConversation(cv), nil
}

func (s *MemoryStore) Set(_ context.Context, cv Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[stateKey{cv.ChatID, cv.UserID}] = copyConversation(cv)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, stateKey{chatID, userID})
	return nil
}

// copyConversation detaches the map and pointer so callers cannot mutate
// stored state through aliased references.
func copyConversation(cv Conversation) Conversation {
	out := Conversation{ChatID: cv.ChatID, UserID: cv.UserID}
	if cv.Name != nil {
		name := *cv.Name
		out.Name = &name
	}
	if cv.Data != nil {
		out.Data = make(map[string]any, len(cv.Data))
		for k, v := range cv.Data {
			out.Data[k] = v
		}
	}
	return out
}
