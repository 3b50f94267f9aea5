// Package config defines the client configuration and loads it from config
// files and SECLENS_-prefixed environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix for all settings, e.g.
// SECLENS_API_KEY for api.key.
const EnvPrefix = "SECLENS"

// API holds the connection settings for the platform.
type API struct {
	BaseURL   string        `mapstructure:"base_url"`
	Key       string        `mapstructure:"key"`
	Secret    string        `mapstructure:"secret"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
	Retry     Retry         `mapstructure:"retry"`
}

// Retry defines transport-level retry behavior. Zero MaxAttempts disables
// retry.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
}

// Paging holds the default paging parameters applied when a command does
// not override them.
type Paging struct {
	PageSize int           `mapstructure:"page_size"`
	Sleep    time.Duration `mapstructure:"sleep"`
}

// Config is the top-level client configuration.
type Config struct {
	API    API    `mapstructure:"api"`
	Paging Paging `mapstructure:"paging"`
}

// SetDefaults registers the documented default values on viper. Call it
// before reading any config file so defaults apply even without one.
func SetDefaults() {
	// Empty defaults register the connection keys so Unmarshal sees values
	// supplied only through the environment.
	viper.SetDefault("api.base_url", "")
	viper.SetDefault("api.key", "")
	viper.SetDefault("api.secret", "")
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("api.rate_limit", 0.0)
	viper.SetDefault("api.rate_burst", 1)
	viper.SetDefault("api.retry.max_attempts", 0)
	viper.SetDefault("api.retry.initial_wait", "1s")
	viper.SetDefault("api.retry.max_wait", "30s")
	viper.SetDefault("paging.page_size", 2000)
	viper.SetDefault("paging.sleep", "0s")
}

// Load reads the effective configuration from viper and validates the
// required connection settings.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, errors.New("api.base_url is required (or set SECLENS_API_BASE_URL)")
	}
	if cfg.API.Key == "" || cfg.API.Secret == "" {
		return nil, errors.New("api.key and api.secret are required")
	}
	return &cfg, nil
}

// Init wires viper's environment and config-file lookup. An explicit
// cfgFile wins; otherwise the usual locations are searched and a missing
// file is not an error.
func Init(cfgFile string) {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.config/seclens")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}
