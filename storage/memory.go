package storage

import (
	"context"
	"sync"
)

// Memory keeps payloads in a map. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// FailSave, when set, is returned by every Save. Used to exercise
	// callers' handling of a full or unavailable backend.
	FailSave error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (s *Memory) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Memory) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailSave != nil {
		return s.FailSave
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Memory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)
