package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML keys to Go struct fields.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Redis     Redis     `mapstructure:"redis"`
	Storage   Storage   `mapstructure:"storage"`
	OAuth     OAuth     `mapstructure:"oauth"`
	Workers   Workers   `mapstructure:"workers"`
	Feed      Feed      `mapstructure:"feed"`
	Monitor   Monitor   `mapstructure:"monitor"`
	Log       Log       `mapstructure:"log"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
}

// Server holds the HTTP server settings.
type Server struct {
	Port                   int    `mapstructure:"port"`
	BaseURL                string `mapstructure:"base_url"` // used to build share links
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

// RequestTimeout bounds every store and cache call made on behalf of a request.
func (s Server) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful shutdown.
func (s Server) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// Database selects the gorm dialector. Driver is "sqlite" (Name is the file)
// or "mysql" (DSN is used).
type Database struct {
	Driver string `mapstructure:"driver"`
	Name   string `mapstructure:"name"`
	DSN    string `mapstructure:"dsn"`
}

// Redis holds the session cache settings.
type Redis struct {
	Addr              string `mapstructure:"addr"`
	Password          string `mapstructure:"password"`
	DB                int    `mapstructure:"db"`
	SessionTTLSeconds int    `mapstructure:"session_ttl_seconds"`
}

// SessionTTL is the lifetime of a session token.
func (r Redis) SessionTTL() time.Duration {
	return time.Duration(r.SessionTTLSeconds) * time.Second
}

// Storage holds the S3-compatible object storage settings.
type Storage struct {
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	Bucket         string `mapstructure:"bucket"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	PublicBaseURL  string `mapstructure:"public_base_url"` // CDN prefix of uploaded objects
	PresignMinutes int    `mapstructure:"presign_minutes"`
}

// OAuth holds the identity provider client settings.
type OAuth struct {
	ClientID          string `mapstructure:"client_id"`
	ClientSecret      string `mapstructure:"client_secret"`
	RedirectURL       string `mapstructure:"redirect_url"`
	LogoutRedirectURL string `mapstructure:"logout_redirect_url"`
	AuthURL           string `mapstructure:"auth_url"`
	TokenURL          string `mapstructure:"token_url"`
	UserInfoURL       string `mapstructure:"userinfo_url"`
	LogoutURL         string `mapstructure:"logout_url"`
}

// Workers configures the deferred task queue.
type Workers struct {
	BufferSize  int `mapstructure:"buffer_size"`
	WorkerCount int `mapstructure:"worker_count"`
}

// Feed configures collection listings.
type Feed struct {
	PageSize int `mapstructure:"page_size"`
}

// Monitor configures the link health checker.
type Monitor struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// Log configures zerolog output.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimit configures the login limiter.
type RateLimit struct {
	LoginPerMinute int `mapstructure:"login_per_minute"`
	Burst          int `mapstructure:"burst"`
}

// setDefaults registers a default for every key so that env overrides work
// even when no config file exists.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.request_timeout_seconds", 10)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.name", "linkshelf.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl_seconds", 3600)

	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "linkshelf")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.public_base_url", "http://localhost:9000/linkshelf")
	v.SetDefault("storage.presign_minutes", 10)

	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_url", "http://localhost:8080/oauth/callback")
	v.SetDefault("oauth.logout_redirect_url", "http://localhost:8080")
	v.SetDefault("oauth.auth_url", "https://kauth.kakao.com/oauth/authorize")
	v.SetDefault("oauth.token_url", "https://kauth.kakao.com/oauth/token")
	v.SetDefault("oauth.userinfo_url", "https://kapi.kakao.com/v2/user/me")
	v.SetDefault("oauth.logout_url", "https://kauth.kakao.com/oauth/logout")

	v.SetDefault("workers.buffer_size", 1000)
	v.SetDefault("workers.worker_count", 4)

	v.SetDefault("feed.page_size", 12)

	v.SetDefault("monitor.enabled", false)
	v.SetDefault("monitor.interval_minutes", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ratelimit.login_per_minute", 30)
	v.SetDefault("ratelimit.burst", 10)
}

// LoadConfig loads the application configuration using Viper.
// It reads ./configs/config.yaml when present and lets environment variables
// override any key, e.g. "server.port" becomes "SERVER_PORT".
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath("./configs")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is not fatal: defaults and env still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Name == "" {
			return errors.New("database.name is required for the sqlite driver")
		}
	case "mysql":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be positive, got %d", c.Feed.PageSize)
	}
	if c.Workers.WorkerCount < 1 || c.Workers.BufferSize < 1 {
		return errors.New("workers.worker_count and workers.buffer_size must be positive")
	}
	if c.Monitor.Enabled && c.Monitor.IntervalMinutes < 1 {
		return errors.New("monitor.interval_minutes must be positive when the monitor is enabled")
	}
	if c.Server.RequestTimeoutSeconds < 1 {
		return errors.New("server.request_timeout_seconds must be positive")
	}
	return nil
}
