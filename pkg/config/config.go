// Package config loads drawalign settings from a TOML file.
//
// A missing file is not an error: Load returns Default() so the CLI and
// server run with sensible values out of the box.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/siteworks/drawalign/pkg/errors"
)

const appName = "drawalign"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full configuration tree.
type Config struct {
	Align  Align  `toml:"align"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
	Cache  Cache  `toml:"cache"`
}

// Align holds alignment tuning. Steps are the per-keypress increments used by
// the interactive aligner.
type Align struct {
	Tolerance  float64 `toml:"tolerance"`
	NudgeStep  float64 `toml:"nudge_step"`
	RotateStep float64 `toml:"rotate_step"`
	ScaleStep  float64 `toml:"scale_step"`
}

// Store selects and configures the persistence backend for saved alignments.
type Store struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures `drawalign serve`.
type Server struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Cache configures the image probe cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Duration is a time.Duration written as a Go duration string ("2h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Align: Align{
			Tolerance:  0.02,
			NudgeStep:  0.1,
			RotateStep: 0.1,
			ScaleStep:  0.001,
		},
		Store: Store{
			Backend:         BackendFile,
			RedisAddr:       "localhost:6379",
			RedisPrefix:     appName + ":",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "alignments",
		},
		Server: Server{
			Addr:       ":8080",
			SessionTTL: Duration{2 * time.Hour},
		},
		Cache: Cache{Enabled: true},
	}
}

// Load reads path over the defaults. An empty path means DefaultPath(); a
// missing file yields the defaults unchanged. The result is validated and
// has its directory fields resolved.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.resolve()
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	default:
		if err := Decode(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, cfg.resolve()
}

// Decode parses TOML data into cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Align.Tolerance <= 0 || c.Align.Tolerance >= 1 {
		return invalid("align.tolerance must be in (0, 1), got %g", c.Align.Tolerance)
	}
	if c.Align.NudgeStep <= 0 {
		return invalid("align.nudge_step must be positive")
	}
	if c.Align.RotateStep <= 0 {
		return invalid("align.rotate_step must be positive")
	}
	if c.Align.ScaleStep <= 0 {
		return invalid("align.scale_step must be positive")
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return invalid("store.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return invalid("store.mongo_uri, mongo_database and mongo_collection are required for the mongo backend")
		}
	default:
		return invalid("unknown store.backend %q", c.Store.Backend)
	}

	if c.Server.SessionTTL.Duration <= 0 {
		return invalid("server.session_ttl must be positive")
	}
	return nil
}

// resolve fills empty directory settings with their XDG defaults.
func (c *Config) resolve() error {
	if c.Store.Path == "" {
		dir, err := DataDir()
		if err != nil {
			return err
		}
		c.Store.Path = filepath.Join(dir, "alignments")
	}
	if c.Cache.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return err
		}
		c.Cache.Dir = dir
	}
	return nil
}
