// Package config loads runtime settings from the environment. Every setting
// has a working default, so the binary runs with no environment at all; the
// TORNADOVIEW_* variables exist for tuning and for pointing tests or
// self-hosted explorers at other endpoints.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/intelligenceonchain/tornadoview/internal/pkg/validator"
)

// envPrefix namespaces the environment variables, e.g. TORNADOVIEW_BASE_URL.
const envPrefix = "tornadoview"

// Settings holds all environment-driven configuration.
type Settings struct {
	// Explorer API endpoint and chain selection.
	BaseURL string `envconfig:"BASE_URL" default:"https://api.etherscan.io/v2/api" validate:"required,url"`
	ChainID int    `envconfig:"CHAIN_ID" default:"1" validate:"required,gt=0"`

	// HTTP transport tuning.
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" validate:"required,gt=0"`
	RetryWaitMin time.Duration `envconfig:"RETRY_WAIT_MIN" default:"1s" validate:"required,gt=0"`
	RetryWaitMax time.Duration `envconfig:"RETRY_WAIT_MAX" default:"5s" validate:"required,gtefield=RetryWaitMin"`
	RetryMax     int           `envconfig:"RETRY_MAX" default:"2" validate:"gte=0"`

	// In-body rate limit retry budget.
	RateLimitAttempts uint          `envconfig:"RATE_LIMIT_ATTEMPTS" default:"3" validate:"required,gt=0"`
	RateLimitDelay    time.Duration `envconfig:"RATE_LIMIT_DELAY" default:"2s" validate:"required,gt=0"`

	// PageSize caps records per explorer listing page. 10000 is the remote
	// maximum.
	PageSize int `envconfig:"PAGE_SIZE" default:"10000" validate:"required,gt=0,lte=10000"`

	// KeyFile overrides the API key config file location. Empty means the
	// default under the user's home directory.
	KeyFile string `envconfig:"KEY_FILE"`

	// Observability.
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`
}

// Load reads the settings from the environment and validates them.
func Load() (Settings, error) {
	var settings Settings
	if err := envconfig.Process(envPrefix, &settings); err != nil {
		return Settings{}, fmt.Errorf("processing environment: %w", err)
	}

	if err := validator.Validate(settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}
