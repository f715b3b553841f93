// Package config loads ziplock settings from a TOML file and the environment.
//
// Precedence, lowest first: built-in defaults, the config file
// ($XDG_CONFIG_HOME/ziplock/config.toml unless a path is given), then
// environment variables. Command-line flags are applied by the caller.
//
// Example file:
//
//	[registry]
//	url = "https://registry.npmjs.org"
//
//	[github]
//	token = "ghp_..."
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//	redis_url = "redis://localhost:6379/0"
//
//	[resolve]
//	max_depth = 32
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ziplock/pkg/errors"
)

// AppName is used for config and cache directory names.
const AppName = "ziplock"

// Environment variables read by [Config.ApplyEnv].
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvRegistry    = "ZIPLOCK_REGISTRY"
	EnvCache       = "ZIPLOCK_CACHE"
	EnvRedisURL    = "ZIPLOCK_REDIS_URL"
	EnvMongoURI    = "ZIPLOCK_MONGO_URI"
)

// Lock stores.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the full set of ziplock settings.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	GitHub   GitHubConfig   `toml:"github"`
	Cache    CacheConfig    `toml:"cache"`
	Lock     LockConfig     `toml:"lock"`
	Resolve  ResolveConfig  `toml:"resolve"`
	Server   ServerConfig   `toml:"server"`
}

type RegistryConfig struct {
	URL string `toml:"url"`
}

type GitHubConfig struct {
	APIURL string `toml:"api_url"`
	Token  string `toml:"token"`
}

type CacheConfig struct {
	Backend  string   `toml:"backend"` // file, redis or none
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

type LockConfig struct {
	Store           string `toml:"store"` // file or mongo
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

type ResolveConfig struct {
	MaxDepth int  `toml:"max_depth"`
	OmitDev  bool `toml:"omit_dev"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as "24h" or "90m" in TOML.
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
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{URL: "https://registry.npmjs.org"},
		GitHub:   GitHubConfig{APIURL: "https://api.github.com"},
		Cache:    CacheConfig{Backend: "file", TTL: Duration{24 * time.Hour}},
		Lock: LockConfig{
			Store:           StoreFile,
			Dir:             ".",
			MongoDatabase:   AppName,
			MongoCollection: "locks",
		},
		Resolve: ResolveConfig{MaxDepth: 64},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Load reads the config file at path over the defaults, then applies the
// environment. An empty path reads [DefaultPath] and tolerates its absence;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		err := cfg.readFile(path)
		if err != nil && (explicit || !errors.Is(err, errors.ErrCodeFileNotFound)) {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from the environment. Empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.GitHub.Token, EnvGitHubToken)
	set(&c.Registry.URL, EnvRegistry)
	set(&c.Cache.Backend, EnvCache)
	set(&c.Cache.RedisURL, EnvRedisURL)
	set(&c.Lock.MongoURI, EnvMongoURI)
}

// Validate reports the first inconsistent setting as INVALID_CONFIG.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.Registry.URL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry.url")
	}
	if err := errors.ValidateURL(c.GitHub.APIURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "github.api_url")
	}

	switch c.Cache.Backend {
	case "file", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	switch c.Lock.Store {
	case StoreFile:
	case StoreMongo:
		if c.Lock.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "lock.mongo_uri is required for the mongo store")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "lock.store must be file or mongo, got %q", c.Lock.Store)
	}

	if c.Resolve.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "resolve.max_depth must not be negative")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/ziplock/config.toml, falling back to
// ~/.config/ziplock/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or the XDG default
// (~/.cache/ziplock/) when unset.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
