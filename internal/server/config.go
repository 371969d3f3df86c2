package server

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fitcharts/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config is the service configuration, usually loaded from a TOML file:
//
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "fitcharts"
type Config struct {
	Addr            string        `toml:"addr"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	RenderTimeout   time.Duration `toml:"render_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`

	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"ttl"`
}

// StorageConfig selects and configures saved-chart storage.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodyBytes:    4 << 20,
		RenderTimeout:   30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       filepath.Join(os.TempDir(), "fitcharts-cache"),
			RedisAddr: "localhost:6379",
		},
		Storage: StorageConfig{
			Backend:  StorageMemory,
			MongoURI: "mongodb://localhost:27017",
			Database: "fitcharts",
		},
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected so that typos do not go unnoticed.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks backend names and required fields.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "addr is required")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_body_bytes must be positive")
	}
	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	case CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown storage.backend %q (want memory or mongo)", c.Storage.Backend)
	}
	return nil
}
