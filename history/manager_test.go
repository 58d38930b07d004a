package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umlboard/storage"
)

func snap(i int) string {
	return fmt.Sprintf(`{"entities":[{"id":"e%d"}]}`, i)
}

func TestHistoryManager(t *testing.T) {
	h := New(WithMaxSize(5)) // Small capacity for testing

	_, ok := h.Current()
	assert.False(t, ok)
	assert.Equal(t, -1, h.Position())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	for i := 1; i <= 3; i++ {
		h.Push(snap(i))
	}

	current, total := h.Stats()
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, total)
	assert.Equal(t, "3/3", h.String())

	// Test undo
	require.True(t, h.CanUndo())
	undone, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, snap(2), undone)

	// Test redo
	require.True(t, h.CanRedo())
	redone, ok := h.Redo()
	require.True(t, ok)
	assert.Equal(t, snap(3), redone)
	assert.False(t, h.CanRedo())

	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestUndoAtStart(t *testing.T) {
	h := New()
	h.Push(snap(1))

	_, ok := h.Undo()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Position())

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, snap(1), cur)
}

func TestUndoRedoRestoresState(t *testing.T) {
	for n := 2; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d pushes", n), func(t *testing.T) {
			h := New()
			for i := 0; i < n; i++ {
				h.Push(snap(i))
			}
			before, _ := h.Current()

			_, ok := h.Undo()
			require.True(t, ok)
			after, ok := h.Redo()
			require.True(t, ok)
			assert.Equal(t, before, after)
		})
	}
}

func TestPushDuplicateIsNoop(t *testing.T) {
	h := New()
	h.Push(snap(1))
	h.Push(snap(1))
	assert.Equal(t, 1, h.Len())

	h.Push(snap(2))
	h.Push(snap(2))
	assert.Equal(t, 2, h.Len())

	// Equal to an earlier entry but not the current one
	h.Push(snap(1))
	assert.Equal(t, 3, h.Len())
}

func TestPushTruncatesRedo(t *testing.T) {
	h := New()
	for i := 1; i <= 4; i++ {
		h.Push(snap(i))
	}
	h.Undo()
	h.Undo()
	require.True(t, h.CanRedo())

	h.Push(snap(9))
	assert.False(t, h.CanRedo())
	assert.Equal(t, []string{snap(1), snap(2), snap(9)}, h.Snapshots())
	assert.Equal(t, 2, h.Position())
}

func TestMaxSizeEviction(t *testing.T) {
	h := New(WithMaxSize(3))

	// Add more states than capacity
	for i := 1; i <= 5; i++ {
		h.Push(snap(i))
	}

	// Should only have last 3 states
	assert.Equal(t, 3, h.Len())
	cur, _ := h.Current()
	assert.Equal(t, snap(5), cur)
	assert.Equal(t, []string{snap(3), snap(4), snap(5)}, h.Snapshots())

	// Undo goes back only as far as the oldest kept state
	h.Undo()
	prev, _ := h.Undo()
	assert.Equal(t, snap(3), prev)
	assert.False(t, h.CanUndo())
}

func TestEvictionAfterUndo(t *testing.T) {
	h := New(WithMaxSize(3))
	for i := 1; i <= 3; i++ {
		h.Push(snap(i))
	}
	h.Undo()

	// Truncation makes room, so nothing is evicted
	h.Push(snap(7))
	assert.Equal(t, []string{snap(1), snap(2), snap(7)}, h.Snapshots())
	assert.Equal(t, 2, h.Position())

	h.Push(snap(8))
	assert.Equal(t, []string{snap(2), snap(7), snap(8)}, h.Snapshots())
	assert.Equal(t, 2, h.Position())
}

func TestClear(t *testing.T) {
	h := New()
	h.Push(snap(1))
	h.Push(snap(2))
	h.Clear()

	assert.Equal(t, 0, h.Len())
	assert.Equal(t, -1, h.Position())
	_, ok := h.Current()
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	// Usable again after clearing
	h.Push(snap(3))
	cur, _ := h.Current()
	assert.Equal(t, snap(3), cur)
}

func TestImport(t *testing.T) {
	h := New()
	h.Push(snap(1))
	h.Push(snap(2))

	require.NoError(t, h.Import(snap(7)))
	assert.Equal(t, []string{snap(7)}, h.Snapshots())
	assert.Equal(t, 0, h.Position())

	assert.ErrorIs(t, h.Import("{not json"), ErrInvalidSnapshot)
	assert.Equal(t, []string{snap(7)}, h.Snapshots())
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	h := New(WithStore(store, "hist"))
	h.Push(snap(1))
	h.Push(snap(2))
	h.Push(snap(3))
	h.Undo()

	raw, err := store.Load(ctx, "hist")
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, 1, env.Pointer)
	assert.Len(t, env.Stack, 3)

	// A new manager picks up where the last one stopped
	restored := New(WithStore(store, "hist"))
	assert.Equal(t, 3, restored.Len())
	assert.Equal(t, 1, restored.Position())
	cur, _ := restored.Current()
	assert.Equal(t, snap(2), cur)
	assert.True(t, restored.CanRedo())

	restored.Clear()
	raw, err = store.Load(ctx, "hist")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"pointer":-1,"stack":[]}`, string(raw))
}

func TestLoadTolerance(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		len     int
		pos     int
	}{
		{"bare array", `["a","b","c"]`, 3, 2},
		{"envelope", `{"version":1,"pointer":0,"stack":["a","b"]}`, 2, 0},
		{"pointer out of range", `{"version":1,"pointer":9,"stack":["a","b"]}`, 2, 1},
		{"negative pointer", `{"version":1,"pointer":-4,"stack":["a","b"]}`, 2, 0},
		{"garbage", `{{{`, 0, -1},
		{"wrong type", `{"stack":"nope"}`, 0, -1},
		{"number", `42`, 0, -1},
		{"null", `null`, 0, -1},
		{"empty array", `[]`, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemory()
			require.NoError(t, store.Save(context.Background(), "k", []byte(tt.payload)))

			h := New(WithStore(store, "k"))
			assert.Equal(t, tt.len, h.Len())
			assert.Equal(t, tt.pos, h.Position())
		})
	}
}

func TestLoadTrimsToMaxSize(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Save(context.Background(), "k", []byte(`{"version":1,"pointer":3,"stack":["a","b","c","d","e"]}`)))

	h := New(WithStore(store, "k"), WithMaxSize(3))
	assert.Equal(t, []string{"c", "d", "e"}, h.Snapshots())
	assert.Equal(t, 1, h.Position())
}

func TestMissingStoreKey(t *testing.T) {
	h := New(WithStore(storage.NewMemory(), "absent"))
	assert.Equal(t, 0, h.Len())
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	store := storage.NewMemory()
	store.FailSave = errors.New("quota exceeded")

	h := New(WithStore(store, "k"), WithLogger(logger))
	h.Push(snap(1))
	h.Push(snap(2))
	h.Undo()

	// In-memory state is still authoritative
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 0, h.Position())
	assert.Contains(t, buf.String(), "quota exceeded")

	_, err := store.Load(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOptionsIgnoreBadValues(t *testing.T) {
	h := New(WithMaxSize(0), WithLogger(nil), WithTimeout(0))
	assert.Equal(t, DefaultMaxSize, h.MaxSize())

	for i := 0; i < 60; i++ {
		h.Push(snap(i))
	}
	assert.Equal(t, DefaultMaxSize, h.Len())
	cur, _ := h.Current()
	assert.Equal(t, snap(59), cur)
}
