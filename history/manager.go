// Package history implements a bounded linear undo/redo stack of opaque
// diagram snapshots with optional persistence through a storage.Store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"umlboard/storage"
)

// DefaultMaxSize is the number of snapshots kept when no limit is configured.
const DefaultMaxSize = 50

// persistVersion tags the envelope written to the store.
const persistVersion = 1

// ErrInvalidSnapshot is returned by Import for payloads that are not JSON.
var ErrInvalidSnapshot = errors.New("snapshot is not valid JSON")

// Option configures a Manager.
type Option func(*Manager)

// WithMaxSize limits the number of stored snapshots. Values below 1 are ignored.
func WithMaxSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

// WithStore persists the stack under key after every change and restores
// it on construction.
func WithStore(s storage.Store, key string) Option {
	return func(m *Manager) {
		m.store = s
		m.key = key
	}
}

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTimeout bounds each store call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// Manager manages undo/redo over serialized snapshots. The snapshots are
// never interpreted. It is not safe for concurrent use.
type Manager struct {
	states  []string // snapshots, oldest first
	current int      // index of the current snapshot, -1 when empty
	max     int      // maximum number of snapshots to keep

	store   storage.Store
	key     string
	timeout time.Duration
	logger  *log.Logger
}

// envelope is the persisted form of the stack.
type envelope struct {
	Version int      `json:"version"`
	Pointer int      `json:"pointer"`
	Stack   []string `json:"stack"`
}

// New creates a history manager. If a store is configured the previously
// persisted stack is loaded; missing or malformed data yields an empty stack.
func New(opts ...Option) *Manager {
	m := &Manager{
		current: -1,
		max:     DefaultMaxSize,
		timeout: 2 * time.Second,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.states = make([]string, 0, m.max)
	m.load()
	return m
}

// Push records a new snapshot as the current state. Entries after the
// current position are discarded. Pushing a snapshot equal to the current
// one does nothing.
func (m *Manager) Push(snapshot string) {
	if m.current >= 0 && m.states[m.current] == snapshot {
		return
	}

	// If we're not at the end, truncate everything after current
	if m.current < len(m.states)-1 {
		m.states = m.states[:m.current+1]
	}

	m.states = append(m.states, snapshot)

	// If we exceed max, remove oldest
	if over := len(m.states) - m.max; over > 0 {
		m.states = append(m.states[:0], m.states[over:]...)
	}
	m.current = len(m.states) - 1
	m.persist()
}

// CanUndo returns true if we can undo
func (m *Manager) CanUndo() bool {
	return m.current > 0
}

// CanRedo returns true if we can redo
func (m *Manager) CanRedo() bool {
	return m.current >= 0 && m.current < len(m.states)-1
}

// Undo steps back one snapshot and returns it.
func (m *Manager) Undo() (string, bool) {
	if !m.CanUndo() {
		return "", false
	}
	m.current--
	m.persist()
	return m.states[m.current], true
}

// Redo steps forward one snapshot and returns it.
func (m *Manager) Redo() (string, bool) {
	if !m.CanRedo() {
		return "", false
	}
	m.current++
	m.persist()
	return m.states[m.current], true
}

// Current returns the snapshot at the current position.
func (m *Manager) Current() (string, bool) {
	if m.current < 0 {
		return "", false
	}
	return m.states[m.current], true
}

// Clear empties the history and persists the empty state.
func (m *Manager) Clear() {
	m.states = m.states[:0]
	m.current = -1
	m.persist()
}

// Import replaces the whole history with a single snapshot.
func (m *Manager) Import(snapshot string) error {
	if !json.Valid([]byte(snapshot)) {
		return ErrInvalidSnapshot
	}
	m.states = append(m.states[:0], snapshot)
	m.current = 0
	m.persist()
	return nil
}

// Len returns the number of stored snapshots.
func (m *Manager) Len() int { return len(m.states) }

// Position returns the index of the current snapshot, -1 when empty.
func (m *Manager) Position() int { return m.current }

// MaxSize returns the configured limit.
func (m *Manager) MaxSize() int { return m.max }

// Snapshots returns a copy of the stack, oldest first.
func (m *Manager) Snapshots() []string {
	return append([]string(nil), m.states...)
}

// Stats returns current position and total states
func (m *Manager) Stats() (current, total int) {
	return m.current + 1, len(m.states)
}

// String describes the position as "current/total".
func (m *Manager) String() string {
	cur, total := m.Stats()
	return fmt.Sprintf("%d/%d", cur, total)
}

func (m *Manager) ctx() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

// persist saves the stack on a best effort basis. Failures are logged and
// leave the in-memory state untouched.
func (m *Manager) persist() {
	if m.store == nil {
		return
	}
	data, err := json.Marshal(envelope{Version: persistVersion, Pointer: m.current, Stack: m.states})
	if err != nil {
		m.logger.Warn("encode history failed", "key", m.key, "err", err)
		return
	}
	ctx, cancel := m.ctx()
	defer cancel()
	if err := m.store.Save(ctx, m.key, data); err != nil {
		m.logger.Warn("persist history failed", "key", m.key, "err", err)
	}
}

// load restores a persisted stack. Both the envelope and a bare array of
// snapshots are accepted; anything else is ignored.
func (m *Manager) load() {
	if m.store == nil {
		return
	}
	ctx, cancel := m.ctx()
	defer cancel()

	data, err := m.store.Load(ctx, m.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("load history failed", "key", m.key, "err", err)
		}
		return
	}

	stack, pointer, ok := decode(data)
	if !ok {
		m.logger.Warn("discarding malformed history", "key", m.key)
		return
	}

	// Keep the newest entries when the limit shrank since the last save
	if over := len(stack) - m.max; over > 0 {
		stack = stack[over:]
		pointer -= over
	}
	if len(stack) == 0 {
		return
	}
	if pointer < 0 {
		pointer = 0
	}
	if pointer >= len(stack) {
		pointer = len(stack) - 1
	}

	m.states = append(m.states[:0], stack...)
	m.current = pointer
	m.logger.Debug("history restored", "key", m.key, "entries", len(stack), "pointer", pointer)
}

func decode(data []byte) ([]string, int, bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Stack != nil {
		return env.Stack, env.Pointer, true
	}
	var bare []string
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, len(bare) - 1, true
	}
	return nil, 0, false
}
