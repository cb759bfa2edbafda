package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the goveectl CLI.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Account      AccountConfig      `yaml:"account"`
	API          APIConfig          `yaml:"api"`
	Broker       BrokerConfig       `yaml:"broker"`
	Certificates CertificatesConfig `yaml:"certificates"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// AccountConfig contains the platform account credentials.
type AccountConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// ClientID is the stable 32-character client identifier. Leave empty on
	// first run; the CLI logs the generated value so it can be persisted here.
	ClientID string `yaml:"client_id"`
}

// APIConfig contains REST endpoint overrides. Empty values use the
// production platform defaults baked into the library.
type APIConfig struct {
	Host string `yaml:"host"`
	Key  string `yaml:"key"`
}

// BrokerConfig contains message broker endpoint overrides.
type BrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CertificatesConfig locates the broker certificate store.
type CertificatesConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GOVEE_SECTION_KEY
// For example: GOVEE_ACCOUNT_EMAIL, GOVEE_CERTIFICATES_DIR
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. Endpoint fields
// stay empty so the library's production defaults apply.
func defaultConfig() *Config {
	return &Config{
		Certificates: CertificatesConfig{
			Dir: "./certs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GOVEE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Account (credentials belong in the environment, not on disk)
	if v := os.Getenv("GOVEE_ACCOUNT_EMAIL"); v != "" {
		cfg.Account.Email = v
	}
	if v := os.Getenv("GOVEE_ACCOUNT_PASSWORD"); v != "" {
		cfg.Account.Password = v
	}
	if v := os.Getenv("GOVEE_ACCOUNT_CLIENT_ID"); v != "" {
		cfg.Account.ClientID = v
	}

	// Endpoints
	if v := os.Getenv("GOVEE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GOVEE_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("GOVEE_BROKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Port = port
		}
	}

	// Certificates
	if v := os.Getenv("GOVEE_CERTIFICATES_DIR"); v != "" {
		cfg.Certificates.Dir = v
	}

	// Logging
	if v := os.Getenv("GOVEE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Account validation - credentials are required for every operation
	if c.Account.Email == "" {
		errs = append(errs, "account.email is required (set GOVEE_ACCOUNT_EMAIL environment variable)")
	}
	if c.Account.Password == "" {
		errs = append(errs, "account.password is required (set GOVEE_ACCOUNT_PASSWORD environment variable)")
	}

	// Broker validation
	if c.Broker.Port < 0 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 0 and 65535")
	}

	// Certificates validation
	if c.Certificates.Dir == "" {
		errs = append(errs, "certificates.dir is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
