package config

import (
	"log/slog"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	SiteName string `mapstructure:"site_name"` // shown when a post has no company or organizer
	BaseURL  string `mapstructure:"base_url"`
}

// HTTPConfig controls the web server.
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Driver           string `mapstructure:"driver"` // redis, postgres or sqlite
	CollectionPrefix string `mapstructure:"collection_prefix"`
	PostgresURL      string `mapstructure:"postgres_url"`
	SQLitePath       string `mapstructure:"sqlite_path"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	URL      string `mapstructure:"url"` // takes precedence over the discrete fields
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig controls sessions and identity record writes.
type AuthConfig struct {
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	IdentityRetries    int           `mapstructure:"identity_retries"`
	IdentityRetryDelay time.Duration `mapstructure:"identity_retry_delay"`
	SessionCleanup     string        `mapstructure:"session_cleanup"` // cron spec for purging expired sessions
}

// FeedConfig controls aggregation and card rendering.
type FeedConfig struct {
	RefreshSchedule string        `mapstructure:"refresh_schedule"` // cron spec, e.g. "@every 5m"
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	AdEvery         int           `mapstructure:"ad_every"`
	TruncateAt      int           `mapstructure:"truncate_at"`
}

// EventsConfig controls cross-instance invalidation.
type EventsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
}

// OpenAIConfig enables AI card blurbs when APIKey is set.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
}

// DigestConfig controls the periodic Markdown digest of new listings.
type DigestConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"`
	OutputDir  string `mapstructure:"output_dir"`
	Window     string `mapstructure:"window"` // week or month
	Title      string `mapstructure:"title"`  // supports {.CurrentDate} and {.Window}
	Preface    string `mapstructure:"preface"`
	Postscript string `mapstructure:"postscript"`
}

// Config is the top-level configuration structure.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Store  StoreConfig  `mapstructure:"store"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Feed   FeedConfig   `mapstructure:"feed"`
	Events EventsConfig `mapstructure:"events"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Digest DigestConfig `mapstructure:"digest"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.SiteName == "" {
		c.App.SiteName = "Syntax Syndicate"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "redis"
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.CollectionPrefix == "" {
		c.Store.CollectionPrefix = "ss_"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "./data/board.db"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 30 * 24 * time.Hour
	}
	if c.Auth.IdentityRetries == 0 {
		c.Auth.IdentityRetries = 3
	}
	if c.Auth.IdentityRetryDelay == 0 {
		c.Auth.IdentityRetryDelay = time.Second
	}
	if c.Auth.SessionCleanup == "" {
		c.Auth.SessionCleanup = "@every 1h"
	}
	if c.Feed.RefreshSchedule == "" {
		c.Feed.RefreshSchedule = "@every 5m"
	}
	if c.Feed.FetchTimeout == 0 {
		c.Feed.FetchTimeout = 10 * time.Second
	}
	if c.Feed.AdEvery == 0 {
		c.Feed.AdEvery = 4
	}
	if c.Feed.TruncateAt == 0 {
		c.Feed.TruncateAt = 120
	}
	if c.Events.Channel == "" {
		c.Events.Channel = "EVENT_LISTING_CHANGED"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 7 * * 1"
	}
	if c.Digest.OutputDir == "" {
		c.Digest.OutputDir = "./out"
	}
	if c.Digest.Window != "month" {
		c.Digest.Window = "week"
	}
	if c.Digest.Title == "" {
		c.Digest.Title = "Opportunities {.CurrentDate}"
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
