package reviewengine

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/reviewengine/docstore"
)

// SiteConfig holds all configuration for a review site.
type SiteConfig struct {
	Name        string // Site name (default "Research Review Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS
	Language    string // Feed language (default "en-US")

	Addr  string          // Listen address (default ":3000")
	Store docstore.Config // Document store selection; sqlite at data/reviews.db by default

	RedisAddr     string        // Enables paper view counting when set
	RedisPassword string        // Redis AUTH password
	SyncInterval  time.Duration // View counter flush interval (default 1min)

	TokenSecret  string        // Required: HMAC key for API tokens and the session cookie
	TokenTTL     time.Duration // API token lifetime (default 7 days)
	CookieSecure bool          // Set true for HTTPS

	UploadDir      string        // Image upload directory (default "data/uploads")
	RequestTimeout time.Duration // Per-request deadline (default 10s)
	FeedCacheTTL   time.Duration // Published posts cache lifetime (default 5min)
	LogLevel       string        // debug, info, warn or error (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Research Review Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "A blog dedicated to reviewing and discussing the latest research papers in various fields."
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = time.Minute
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 7 * 24 * time.Hour
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.FeedCacheTTL == 0 {
		c.FeedCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// logLevel maps LogLevel to the Echo logger's level. Unknown names fall
// back to info.
func (c SiteConfig) logLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithUploadDir overrides SiteConfig.UploadDir.
func WithUploadDir(dir string) Option {
	return func(a *App) {
		a.Config.UploadDir = dir
	}
}

// WithDriver uses an already opened document store instead of opening one
// from SiteConfig.Store. The App takes ownership and closes it.
func WithDriver(d docstore.Driver) Option {
	return func(a *App) {
		a.driver = d
	}
}

// WithRedis uses an existing Redis client for view counting instead of
// dialing SiteConfig.RedisAddr.
func WithRedis(rdb *redis.Client) Option {
	return func(a *App) {
		a.redis = rdb
	}
}
