package storage

import "context"

// Null is a no-op store that never keeps anything.
type Null struct{}

// NewNull creates a null store.
func NewNull() *Null {
	return &Null{}
}

// Load always reports ErrNotFound.
func (s *Null) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotFound
}

// Save does nothing.
func (s *Null) Save(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (s *Null) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (s *Null) Close() error {
	return nil
}

// Ensure Null implements Store.
var _ Store = (*Null)(nil)
