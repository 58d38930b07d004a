// Package config loads umlboard settings from a TOML file, a .env file and
// UMLBOARD_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"umlboard/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UMLBOARD_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration that reads from strings such as "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full application configuration.
type Config struct {
	History HistoryConfig `toml:"history"`
	Storage StorageConfig `toml:"storage"`
	Editor  EditorConfig  `toml:"editor"`
}

// HistoryConfig controls the undo stack and where it is persisted.
type HistoryConfig struct {
	MaxSize int      `toml:"max_size"`
	Key     string   `toml:"key"`
	Backend string   `toml:"backend"`
	Timeout Duration `toml:"timeout"`
}

// StorageConfig holds connection settings for every backend. Only the
// fields of the selected backend are used.
type StorageConfig struct {
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	PostgresDSN   string `toml:"postgres_dsn"`
}

// EditorConfig tunes interaction thresholds and the terminal cell size.
type EditorConfig struct {
	SnapThreshold          float64 `toml:"snap_threshold"`
	HoverThreshold         float64 `toml:"hover_threshold"`
	AllowSelfRelationships bool    `toml:"allow_self_relationships"`
	CellWidth              float64 `toml:"cell_width"`
	CellHeight             float64 `toml:"cell_height"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		History: HistoryConfig{
			MaxSize: 50,
			Key:     "umlboard:history",
			Backend: storage.BackendFile,
			Timeout: Duration{2 * time.Second},
		},
		Storage: StorageConfig{
			Dir:           "~/.cache/umlboard",
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "umlboard",
		},
		Editor: EditorConfig{
			SnapThreshold:  8,
			HoverThreshold: 10,
			CellWidth:      8,
			CellHeight:     16,
		},
	}
}

// DefaultPath is the config file read when Load is given no path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "umlboard", "config.toml")
}

// Load builds the configuration. A .env file in the working directory is
// loaded first without replacing variables already set. An explicit path
// must exist; the default path is optional.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overrides fields from UMLBOARD_* variables.
func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("HISTORY_KEY", &c.History.Key)
	str("HISTORY_BACKEND", &c.History.Backend)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("REDIS_ADDR", &c.Storage.RedisAddr)
	str("REDIS_PASSWORD", &c.Storage.RedisPassword)
	str("MONGO_URI", &c.Storage.MongoURI)
	str("MONGO_DATABASE", &c.Storage.MongoDatabase)
	str("POSTGRES_DSN", &c.Storage.PostgresDSN)

	var errs []error
	parse := func(name string, set func(string) error) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
		}
	}
	parse("HISTORY_MAX_SIZE", func(v string) (err error) {
		c.History.MaxSize, err = strconv.Atoi(v)
		return err
	})
	parse("HISTORY_TIMEOUT", func(v string) error {
		return c.History.Timeout.UnmarshalText([]byte(v))
	})
	parse("REDIS_DB", func(v string) (err error) {
		c.Storage.RedisDB, err = strconv.Atoi(v)
		return err
	})
	parse("SNAP_THRESHOLD", func(v string) (err error) {
		c.Editor.SnapThreshold, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("HOVER_THRESHOLD", func(v string) (err error) {
		c.Editor.HoverThreshold, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("ALLOW_SELF_RELATIONSHIPS", func(v string) (err error) {
		c.Editor.AllowSelfRelationships, err = strconv.ParseBool(v)
		return err
	})
	return errors.Join(errs...)
}

// Validate checks ranges and the backend name.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.History.MaxSize < 1 {
		fail("history.max_size must be at least 1, got %d", c.History.MaxSize)
	}
	if c.History.Timeout.Duration < 0 {
		fail("history.timeout must not be negative")
	}
	known := false
	for _, b := range storage.Backends {
		if strings.EqualFold(c.History.Backend, b) {
			known = true
		}
	}
	if !known {
		fail("history.backend %q is not one of %s", c.History.Backend, strings.Join(storage.Backends, ", "))
	}
	if c.History.Key == "" && !strings.EqualFold(c.History.Backend, storage.BackendNone) {
		fail("history.key is empty")
	}
	switch strings.ToLower(c.History.Backend) {
	case storage.BackendFile:
		if c.Storage.Dir == "" {
			fail("storage.dir is required for the file backend")
		}
	case storage.BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			fail("storage.postgres_dsn is required for the postgres backend")
		}
	}
	if c.Editor.SnapThreshold < 0 {
		fail("editor.snap_threshold must not be negative")
	}
	if c.Editor.HoverThreshold <= 0 {
		fail("editor.hover_threshold must be positive")
	}
	if c.Editor.CellWidth <= 0 || c.Editor.CellHeight <= 0 {
		fail("editor.cell_width and editor.cell_height must be positive")
	}
	return errors.Join(errs...)
}

// StorageConfig converts the settings into the form storage.Open takes.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend: c.History.Backend,
		Dir:     c.Storage.Dir,
		Redis: storage.RedisConfig{
			Addr:     c.Storage.RedisAddr,
			Password: c.Storage.RedisPassword,
			DB:       c.Storage.RedisDB,
		},
		Mongo: storage.MongoConfig{
			URI:      c.Storage.MongoURI,
			Database: c.Storage.MongoDatabase,
		},
		Postgres: storage.PostgresConfig{
			DSN: c.Storage.PostgresDSN,
		},
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
