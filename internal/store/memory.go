package store

import (
	"context"
	"sync"

	"github.com/abhisek/adaptutor/internal/learner"
)

// Memory keeps encoded students in process memory. Values are stored
// encoded so callers never share pointers with the store.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
	vers map[string]int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte), vers: make(map[string]int64)}
}

func (m *Memory) Get(_ context.Context, id string) (*learner.Student, error) {
	m.mu.Lock()
	b, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, notFound(id)
	}
	return learner.Decode(b)
}

func (m *Memory) Put(_ context.Context, s *learner.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vers[s.ID] != s.Version {
		return conflict(s.ID)
	}
	next := *s
	next.Version = s.Version + 1
	b, err := next.Encode()
	if err != nil {
		return err
	}
	m.data[s.ID] = b
	m.vers[s.ID] = next.Version
	s.Version = next.Version
	return nil
}

func (m *Memory) Close() error { return nil }
