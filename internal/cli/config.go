package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/figwire/pkg/codec"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// defaultConfigPath is checked when --config is not given.
const defaultConfigPath = "figwire.toml"

// Config is the TOML CLI configuration.
//
// Example figwire.toml:
//
//	engine = "auto"
//	pretty = false
//
//	[serve]
//	addr = ":8080"
//	redis_url = "redis://localhost:6379/0"
//	cache_dir = "/var/cache/figwire"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_db = "figwire"
//	cache_ttl = "1h"
type Config struct {
	// Engine is the default codec engine selector.
	Engine string `toml:"engine"`

	// Pretty selects indented output by default.
	Pretty bool `toml:"pretty"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig configures the HTTP service.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// RedisURL enables the Redis conversion cache when non-empty.
	// Takes precedence over CacheDir.
	RedisURL string `toml:"redis_url"`

	// CacheDir enables the directory-backed conversion cache when
	// non-empty.
	CacheDir string `toml:"cache_dir"`

	// MongoURI enables the MongoDB figure store when non-empty.
	MongoURI string `toml:"mongo_uri"`

	// MongoDB is the database name for the figure store.
	MongoDB string `toml:"mongo_db"`

	// CacheTTL is the lifetime of cached conversion results,
	// in Go duration syntax. Empty means no expiration.
	CacheTTL string `toml:"cache_ttl"`
}

func defaultConfig() Config {
	return Config{
		Engine: codec.EngineAuto,
		Serve: ServeConfig{
			Addr:    ":8080",
			MongoDB: "figwire",
		},
	}
}

// loadConfig reads a TOML config file and merges it over the defaults.
// A missing file at the default location is fine; a missing file given
// explicitly is an error.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fwerrors.New(fwerrors.ErrCodeInvalidPath, "config file %s does not exist", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fwerrors.Wrap(fwerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Engine {
	case "", codec.EngineAuto, codec.EngineJSON, codec.EngineLegacy, codec.EngineFast:
	default:
		return fwerrors.New(fwerrors.ErrCodeInvalidConfig,
			"unknown engine %q in config; use legacy, json, orjson, or auto", c.Engine)
	}
	if _, err := c.Serve.cacheTTL(); err != nil {
		return err
	}
	return nil
}

// cacheTTL parses the configured TTL. Empty means no expiration.
func (s ServeConfig) cacheTTL() (time.Duration, error) {
	if s.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.CacheTTL)
	if err != nil {
		return 0, fwerrors.Wrap(fwerrors.ErrCodeInvalidConfig, err, "parse serve.cache_ttl %q", s.CacheTTL)
	}
	return d, nil
}
