package storage

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Backends lists every backend name accepted by Open.
var Backends = []string{BackendNone, BackendMemory, BackendFile, BackendRedis, BackendMongo, BackendPostgres}

// Config selects and configures a backend.
type Config struct {
	Backend  string
	Dir      string
	Redis    RedisConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
}

// Open builds the store named by cfg.Backend. An empty name means none.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		return NewNull(), nil
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.Dir)
	case BackendRedis:
		return NewRedis(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongo(ctx, cfg.Mongo)
	case BackendPostgres:
		return NewPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
