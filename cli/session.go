package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"umlboard/config"
	"umlboard/diagram"
	"umlboard/history"
	"umlboard/storage"
)

// session is a history manager bound to the configured store.
type session struct {
	history *history.Manager
	store   storage.Store
	key     string
}

// openSession connects to the configured backend and restores the undo
// stack kept for file. Every diagram file has its own stack; an empty file
// name uses the configured key as is.
func openSession(ctx context.Context, cfg config.Config, file string, logger *log.Logger) (*session, error) {
	store, err := storage.Open(ctx, cfg.StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.History.Backend, err)
	}
	key := historyKey(cfg.History.Key, file)
	logger.Debug("history store opened", "backend", cfg.History.Backend, "key", key)

	h := history.New(
		history.WithMaxSize(cfg.History.MaxSize),
		history.WithStore(store, key),
		history.WithLogger(logger),
		history.WithTimeout(cfg.History.Timeout.Duration),
	)
	return &session{history: h, store: store, key: key}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func historyKey(base, file string) string {
	if file == "" {
		return base
	}
	if abs, err := filepath.Abs(file); err == nil {
		file = abs
	}
	return base + ":" + storage.Hash([]byte(file))[:12]
}

// readDiagram loads and decodes a snapshot file.
func readDiagram(path string) (*diagram.Diagram, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	d, err := diagram.Unmarshal(string(data))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return d, string(data), nil
}
