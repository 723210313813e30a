// Package config defines the global configuration structure for the floe
// service. Configuration is loaded once at process initialization and is
// immutable thereafter, following 12-Factor principles: values come from the
// OS environment, optionally seeded from a .env file for local development.
//
// Any invalid value causes the application to fail immediately on startup.
// Missing optional collaborator credentials do not: the service degrades the
// corresponding feature instead (no LLM key -> static narrative, no database
// URL -> verification unsupported).
package config

import (
	"strings"
	"time"

	"floe/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the floe service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"floe-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	Weather  WeatherConfig
	LLM      LLMConfig
	Verify   VerifyConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// DatabaseConfig holds report store connection and pool tuning parameters.
// URL is optional: when empty, the report store is not configured and
// verification is disabled rather than failing startup.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// Configured reports whether a report store connection has been supplied.
func (c DatabaseConfig) Configured() bool {
	return c.URL.IsSet()
}

// WeatherConfig holds upstream weather provider configuration.
// The defaults target the Open-Meteo public endpoints; APIKey is only
// required for the commercial tier and is appended when present.
type WeatherConfig struct {
	GeocodeBaseURL   string        `envconfig:"WEATHER_GEOCODE_BASE_URL" default:"https://geocoding-api.open-meteo.com" validate:"url"`
	ForecastBaseURL  string        `envconfig:"WEATHER_FORECAST_BASE_URL" default:"https://api.open-meteo.com" validate:"url"`
	APIKey           SecretString  `envconfig:"WEATHER_API_KEY"`
	Timeout          time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	ForecastDays     int           `envconfig:"WEATHER_FORECAST_DAYS" default:"5" validate:"min=1,max=16"`
	GeocodeCacheSize int           `envconfig:"WEATHER_GEOCODE_CACHE_SIZE" default:"256" validate:"min=0"`
}

// LLMConfig holds commentary provider configuration. APIKey is optional:
// when empty, narrative generation is disabled and a static fallback is used.
// Models is an ordered fallback chain; the first model to succeed wins.
type LLMConfig struct {
	APIKey      SecretString  `envconfig:"LLM_API_KEY"`
	BaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://api.openai.com" validate:"url"`
	Models      string        `envconfig:"LLM_MODELS" default:"gpt-4o-mini,gpt-3.5-turbo"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"150" validate:"min=1"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.8" validate:"min=0,max=2"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"15s"`
}

// Enabled reports whether narrative generation is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey.IsSet()
}

// ModelChain returns the ordered list of fallback models, trimmed of blanks.
func (c LLMConfig) ModelChain() []string {
	parts := strings.Split(c.Models, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		if m := strings.TrimSpace(p); m != "" {
			models = append(models, m)
		}
	}
	return models
}

// VerifyConfig holds community verification tuning.
// Window is the rolling time window applied when counting matching reports;
// zero disables windowing and counts all history.
type VerifyConfig struct {
	Window time.Duration `envconfig:"VERIFY_WINDOW" default:"30m" validate:"min=0"`
}

// SecurityConfig holds cross-origin settings for the browser client.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}
