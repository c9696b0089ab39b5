package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/giftcert/internal/api"
)

// Auth modes.
const (
	AuthModeDisabled = api.AuthDisabled
	AuthModeToken    = api.AuthToken
	AuthModeWrites   = api.AuthWrites
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Auth       AuthConfig        `yaml:"auth"`
	Pagination PaginationConfig  `yaml:"pagination"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Events     EventsConfig      `yaml:"events"`
	CORS       CORSConfig        `yaml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Pagination.Validate(); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	if err := c.CORS.Validate(); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
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

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token required on every API request.
//   - "writes": reads are public, mutations need the Bearer token.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken, AuthModeWrites)),
	); err != nil {
		return err
	}
	if c.Mode != AuthModeDisabled && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", c.Mode)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode != AuthModeDisabled
}

// PaginationConfig bounds list page sizes.
type PaginationConfig struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

// Validate validates the pagination configuration.
func (c *PaginationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSize, validation.Required, validation.Min(1), validation.Max(1000)),
		validation.Field(&c.DefaultSize, validation.Required, validation.Min(1), validation.Max(c.MaxSize)),
	)
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// TotalsTTL is how long entity totals are reused between scrapes.
	TotalsTTL time.Duration `yaml:"totals_ttl"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path,
			validation.When(c.Enabled, validation.Required),
			validation.By(func(any) error {
				if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
					return fmt.Errorf("must start with /")
				}
				return nil
			})),
		validation.Field(&c.TotalsTTL, validation.Min(time.Duration(0))),
	)
}

// EventsConfig controls the change event stream.
type EventsConfig struct {
	// StatsThrottle is the minimum gap between two stats.updated events.
	StatsThrottle time.Duration `yaml:"stats_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	if c.StatsThrottle < 0 {
		return fmt.Errorf("events: stats_throttle must not be negative")
	}
	return nil
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

// Validate validates the CORS configuration.
func (c *CORSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AllowedOrigins, validation.Each(validation.Required)),
		validation.Field(&c.MaxAge, validation.Min(0)),
	)
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
		SQLite: SQLiteConfig{
			Path: "./giftcert.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Pagination: PaginationConfig{
			DefaultSize: 10,
			MaxSize:     100,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			TotalsTTL: 10 * time.Second,
		},
		Events: EventsConfig{
			StatsThrottle: 2 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
}
