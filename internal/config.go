package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/yuhungliao/mission-control/internal/session"
)

// Attempt store backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Sync      SyncConfig        `yaml:"sync"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	return c.Sync.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WorkspaceConfig holds the path to the agent workspace directory.
type WorkspaceConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds the dashboard password gate configuration.
//
// An empty Password is accepted here: the server starts and every login
// fails with "Server misconfigured". An empty SessionSecret is not, since no
// session could ever be verified.
type AuthConfig struct {
	Password      string `yaml:"password"`
	SessionSecret string `yaml:"session_secret"`
	SyncToken     string `yaml:"sync_token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("auth: %w", session.ErrMissingSecret)
	}
	return nil
}

// RateLimitConfig selects where failed login attempts are tracked.
type RateLimitConfig struct {
	Backend  string      `yaml:"backend"`
	Capacity int         `yaml:"capacity"`
	Redis    RedisConfig `yaml:"redis"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = RateLimitBackendMemory
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(RateLimitBackendMemory, RateLimitBackendRedis)),
		validation.Field(&c.Capacity, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.Backend == RateLimitBackendRedis {
		return c.Redis.Validate()
	}
	return nil
}

// RedisConfig holds the connection for the shared attempt store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// SyncConfig controls the sync pipeline.
type SyncConfig struct {
	// Watch re-syncs automatically when workspace markdown changes.
	Watch bool `yaml:"watch"`
	// ExtraRedactions run after the built-in redaction rules.
	ExtraRedactions []RedactionConfig `yaml:"extra_redactions"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	for i := range c.ExtraRedactions {
		if err := c.ExtraRedactions[i].Validate(); err != nil {
			return fmt.Errorf("sync: extra_redactions[%d]: %w", i, err)
		}
	}
	return nil
}

// RedactionConfig is one additional redaction pattern.
type RedactionConfig struct {
	Name    string `yaml:"name"`
	// Pattern is a Go regular expression. Write "$$" for a literal "$".
	Pattern string `yaml:"pattern"`
}

// Validate validates the redaction pattern.
func (c *RedactionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Pattern, validation.Required, validation.By(compiles)),
	)
}

func compiles(value any) error {
	s, _ := value.(string)
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Workspace: WorkspaceConfig{
			Path: "./workspace",
		},
		SQLite: SQLiteConfig{
			Path: "./mission-control.db",
		},
		RateLimit: RateLimitConfig{
			Backend:  RateLimitBackendMemory,
			Capacity: session.DefaultMemoryCapacity,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "login_attempts",
			},
		},
	}
}
