// Package config loads the state layer's environment configuration: where
// the settings database lives, whether it is encrypted, and the fallback
// auto-logout duration. All variables share the DEVICESTATE_ prefix.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "devicestate"

// Config holds the state layer configuration.
type Config struct {
	// DataDir is the directory holding the settings database.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// MasterKey is an optional 64-hex-character (32-byte) secret. When set,
	// the settings database is encrypted with a key derived from it and the
	// device id. Empty means an unencrypted store (development only).
	MasterKey string `envconfig:"MASTER_KEY"`

	// DeviceID identifies this installation for key derivation.
	DeviceID string `envconfig:"DEVICE_ID" default:"default-device"`

	// AutoLogout is the session lifetime used while the study has not yet
	// delivered a seconds-before-auto-logout setting.
	AutoLogout time.Duration `envconfig:"AUTO_LOGOUT" default:"5m"`
}

// ValidationError aggregates all configuration problems.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads configuration from DEVICESTATE_* environment variables and
// validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load, panicking on failure. Use from main.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the configuration, collecting every problem.
func (c *Config) Validate() error {
	var errs []string

	if c.DataDir == "" {
		errs = append(errs, "DEVICESTATE_DATA_DIR must not be empty")
	}
	if c.MasterKey != "" {
		if len(c.MasterKey) != 64 {
			errs = append(errs, "DEVICESTATE_MASTER_KEY must be 64 hex characters (32 bytes)")
		} else if _, err := hex.DecodeString(c.MasterKey); err != nil {
			errs = append(errs, "DEVICESTATE_MASTER_KEY must be valid hex")
		}
	}
	if c.DeviceID == "" {
		errs = append(errs, "DEVICESTATE_DEVICE_ID must not be empty")
	}
	if c.AutoLogout <= 0 {
		errs = append(errs, "DEVICESTATE_AUTO_LOGOUT must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// MasterKeyBytes decodes the master key, nil when unset.
func (c *Config) MasterKeyBytes() []byte {
	if c.MasterKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.MasterKey)
	if err != nil {
		// Validate rejects non-hex keys before this is reachable.
		return nil
	}
	return key
}

// Encrypted reports whether the settings database will be encrypted.
func (c *Config) Encrypted() bool {
	return c.MasterKey != ""
}
