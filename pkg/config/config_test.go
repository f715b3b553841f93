package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/ziplock/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvRegistry, "")
	t.Setenv(EnvCache, "")
	t.Setenv(EnvRedisURL, "")
	path := writeConfig(t, `
[registry]
url = "https://npm.example.com"

[cache]
backend = "redis"
ttl = "90m"
redis_url = "redis://localhost:6379/1"

[resolve]
max_depth = 12
omit_dev = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Registry.URL != "https://npm.example.com" {
		t.Errorf("registry = %q", cfg.Registry.URL)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Resolve.MaxDepth != 12 || !cfg.Resolve.OmitDev {
		t.Errorf("resolve = %+v", cfg.Resolve)
	}
	// Untouched sections keep their defaults
	if cfg.GitHub.APIURL != "https://api.github.com" || cfg.Lock.Store != StoreFile {
		t.Errorf("defaults lost: %+v %+v", cfg.GitHub, cfg.Lock)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    errors.Code
	}{
		{"syntax", "[cache\nbackend =", errors.ErrCodeInvalidConfig},
		{"unknown key", "[cache]\nbakend = \"file\"", errors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidConfig},
		{"mongo without uri", "[lock]\nstore = \"mongo\"", errors.ErrCodeInvalidConfig},
		{"bad registry", "[registry]\nurl = \"ftp://x\"", errors.ErrCodeInvalidConfig},
		{"negative depth", "[resolve]\nmax_depth = -1", errors.ErrCodeInvalidConfig},
	}

	t.Setenv(EnvCache, "")
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvRegistry, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	// Explicit path must exist
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing path: %v", err)
	}

	// Default path may be absent
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvCache, "")
	t.Setenv(EnvRegistry, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a file: %v", err)
	}
	if cfg.Registry.URL != Default().Registry.URL {
		t.Errorf("registry = %q", cfg.Registry.URL)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvGitHubToken: "ghp_secret",
		EnvRegistry:    "https://mirror.example.com",
		EnvCache:       "redis",
		EnvRedisURL:    "redis://cache:6379/0",
		EnvMongoURI:    "  mongodb://db:27017  ",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.GitHub.Token != "ghp_secret" {
		t.Errorf("token = %q", cfg.GitHub.Token)
	}
	if cfg.Registry.URL != "https://mirror.example.com" {
		t.Errorf("registry = %q", cfg.Registry.URL)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://cache:6379/0" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Lock.MongoURI != "mongodb://db:27017" {
		t.Errorf("mongo = %q", cfg.Lock.MongoURI)
	}

	// Empty values leave settings alone
	cfg = Default()
	cfg.ApplyEnv(func(string) string { return "" })
	if cfg.Registry.URL != Default().Registry.URL {
		t.Error("empty env should not override")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/xdg", AppName, "config.toml") {
		t.Errorf("DefaultPath() = %q", path)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	cfg := Default()

	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", AppName) {
		t.Errorf("CacheDir() = %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("CacheDir() with XDG = %q", dir)
	}

	cfg.Cache.Dir = "/explicit"
	if dir, _ := cfg.CacheDir(); dir != "/explicit" {
		t.Errorf("CacheDir() with override = %q", dir)
	}
}
