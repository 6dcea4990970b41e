// Package config manages environment variables.
//
// It reads variable from the `.env` file,
// loads them into structured Go types (struct), and
// validates that required values are present so they
// can be reused accross the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into
	// process env before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using a prefix: ADBOARD_
	- Keys are normalized (lowercased, prefix removed)
	- Nested struct fields are mapped via "dot notation" using the "." delimiter
	  e.g. ADBOARD_SERVER.PORT -> server.port -> Config.Server.Port
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "ADBOARD_"

// ServiceName identifies this service in logs and APM.
const ServiceName = "adboard"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// we inject defaults at runtime.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Usually used to tag logs/traces and switch behavior based on env.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string          `koanf:"port" validate:"required"`
	ReadTimeout        int             `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int             `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int             `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string        `koanf:"cors_allowed_origins" validate:"required"`
	RateLimit          RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig controls the per-client request limiter.
//
// Zero values fall back to DefaultRateLimitConfig.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"min=0"`
	Burst             int     `koanf:"burst" validate:"min=0"`
}

// DatabaseConfig selects the store and carries its connection parameters.
//
// Driver "postgres" needs the network fields; driver "sqlite" only needs Path.
// Pool settings are optional; zero keeps the driver default.
type DatabaseConfig struct {
	Driver          string `koanf:"driver" validate:"required,oneof=postgres sqlite"`
	Host            string `koanf:"host" validate:"required_if=Driver postgres"`
	Port            int    `koanf:"port" validate:"required_if=Driver postgres"`
	User            string `koanf:"user" validate:"required_if=Driver postgres"`
	Password        string `koanf:"password" validate:"required_if=Driver postgres"`
	Name            string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode         string `koanf:"ssl_mode" validate:"required_if=Driver postgres"`
	Path            string `koanf:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`
}

// DefaultRateLimitConfig is applied when the limiter is enabled without tuning.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 20,
		Burst:             40,
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the resulting config.
//
// Behavior summary:
//   - Loads env vars with prefix ADBOARD_
//   - Unmarshals into Config
//   - Validates required config blocks/fields
//   - Sets default observability if missing
//   - Overrides observability service name + environment
//   - Validates observability config as well
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// ADBOARD_DATABASE.HOST -> "database.host"
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := &Config{}

	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()

	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Server.RateLimit.Enabled {
		defaults := DefaultRateLimitConfig()
		if mainConfig.Server.RateLimit.RequestsPerSecond == 0 {
			mainConfig.Server.RateLimit.RequestsPerSecond = defaults.RequestsPerSecond
		}
		if mainConfig.Server.RateLimit.Burst == 0 {
			mainConfig.Server.RateLimit.Burst = defaults.Burst
		}
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Force service name and environment so logs and traces agree with Primary.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
