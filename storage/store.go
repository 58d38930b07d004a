// Package storage provides the key/value backends used to persist undo
// history between editor sessions.
//
// Every backend implements Store:
//   - Null: discards writes, for when persistence is disabled
//   - Memory: process-local map, for tests and throwaway sessions
//   - File: one file per key under a directory, for single-user CLI use
//   - Redis, Mongo, Postgres: shared backends for multi-machine setups
//
// Use Open to build the backend selected by a Config.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned by Load when the key has never been saved or was deleted.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when a store is used after Close.
	ErrClosed = errors.New("store closed")

	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store persists opaque byte payloads under string keys.
type Store interface {
	// Load returns the payload saved under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores data under key, replacing any previous payload.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
