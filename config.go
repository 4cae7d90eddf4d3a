package sitekit

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// Config holds all configuration for a sitekit deployment.
type Config struct {
	Name        string `koanf:"name"`        // Site name (default "XpertAI")
	URL         string `koanf:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"description"` // Site description for RSS and meta tags

	Addr       string `koanf:"addr"`                                // Listen address (default ":3000")
	BackendURL string `koanf:"backend_url" validate:"required,url"` // REST backend base URL

	SessionSecret string `koanf:"session_secret" validate:"required"` // Session encryption secret
	CookieSecure  bool   `koanf:"cookie_secure"`                      // Set true for HTTPS

	AnalyticsEnabled      bool   `koanf:"analytics_enabled"`
	AnalyticsDatabasePath string `koanf:"analytics_database_path"` // SQLite path (default "data/analytics.db")

	MetricsEnabled bool   `koanf:"metrics_enabled"` // Expose /metrics
	LogDir         string `koanf:"log_dir"`         // JSON log directory (default "logs")
	LogTee         bool   `koanf:"log_tee"`         // Also log to stdout

	FeedCacheTTL time.Duration `koanf:"feed_cache_ttl"` // sitemap/feed cache TTL (default 5min)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "XpertAI"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
	if c.FeedCacheTTL == 0 {
		c.FeedCacheTTL = 5 * time.Minute
	}
}

// LoadConfig builds a Config from three layers, highest precedence last: an
// optional .env file, the YAML file at path (skipped when empty or missing),
// and XPERTAI_-prefixed environment variables where "__" maps to "."
// (XPERTAI_BACKEND_URL -> backend_url). The result is validated so a bad
// deployment fails at startup rather than on the first request.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load() // optional

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("XPERTAI_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "XPERTAI_"), "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.setDefaults()
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
