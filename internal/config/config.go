// Package config provides configuration management for the webhook proxy.
// Values come from environment variables (optionally seeded from a .env file
// by the caller) and from a Google service-account JSON key file.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 3000)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Rotating log file path (default: stdout)
//   - LOG_FORMAT: "console" or "json" (default: console)
//   - TLS_CERT_FILE / TLS_KEY_FILE: Serve HTTPS when both are set
//
// Service Account:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to the service-account JSON key
//   - SERVICE_ACCOUNT_EMAIL: Overrides client_email from the key file
//   - SERVICE_ACCOUNT_PRIVATE_KEY: Overrides private_key from the key file
//   - TOKEN_URI: Overrides token_uri (default: https://oauth2.googleapis.com/token)
//
// Dialogflow CX Agent:
//   - DIALOGFLOW_PROJECT_ID: Project ID (default: project_id from the key file)
//   - DIALOGFLOW_LOCATION_ID: Agent location (default: global)
//   - DIALOGFLOW_AGENT_ID: Agent ID (required)
//   - DIALOGFLOW_LANGUAGE_CODE: Language code (default: en-US)
//   - DIALOGFLOW_DEFAULT_TIMEZONE: Time zone used when callers omit one (default: UTC)
//   - DIALOGFLOW_API_BASE_URL: Overrides the regional API host
//
// Outbound HTTP:
//   - HTTP_CLIENT_TIMEOUT: Timeout for token and intent calls (default: 30s)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.ResolveCredentials(); err != nil {
//		log.Fatalf("Invalid credentials: %v", err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"webhook-proxy/internal/common/errors"
	"webhook-proxy/internal/common/validation"
)

// DefaultTokenURI is Google's OAuth2 token endpoint.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// Config holds all configuration values for the webhook proxy.
// It is loaded once at startup and treated as immutable afterwards.
type Config struct {
	// Application settings
	Port        string `env:"PORT" validate:"required"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFile     string `env:"LOG_FILE"`
	LogFormat   string `env:"LOG_FORMAT" validate:"omitempty,oneof=console json"`
	TLSCertFile string `env:"TLS_CERT_FILE" validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `env:"TLS_KEY_FILE" validate:"required_with=TLSCertFile"`

	// Service account used to sign the JWT bearer assertion
	CredentialsFile          string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	ServiceAccountEmail      string `env:"SERVICE_ACCOUNT_EMAIL" validate:"required,email"`
	ServiceAccountPrivateKey string `env:"SERVICE_ACCOUNT_PRIVATE_KEY" validate:"required"`
	TokenURI                 string `env:"TOKEN_URI" validate:"required,url"`

	// Dialogflow CX agent
	ProjectID       string `env:"DIALOGFLOW_PROJECT_ID" validate:"required"`
	LocationID      string `env:"DIALOGFLOW_LOCATION_ID" validate:"required"`
	AgentID         string `env:"DIALOGFLOW_AGENT_ID" validate:"required"`
	LanguageCode    string `env:"DIALOGFLOW_LANGUAGE_CODE" validate:"required"`
	DefaultTimeZone string `env:"DIALOGFLOW_DEFAULT_TIMEZONE" validate:"required"`
	APIBaseURL      string `env:"DIALOGFLOW_API_BASE_URL" validate:"omitempty,url"`

	HTTPClientTimeout string `env:"HTTP_CLIENT_TIMEOUT"`
}

// ServiceAccount is the subset of a Google service-account key file the
// proxy needs.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// Load creates a new Config instance with values loaded from environment variables.
// If an environment variable is not set, the corresponding default value is used.
//
// Load does not read the credentials file; call ResolveCredentials and then
// Validate on the returned Config.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		CredentialsFile:          getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		ServiceAccountEmail:      getEnv("SERVICE_ACCOUNT_EMAIL", ""),
		ServiceAccountPrivateKey: normalizePrivateKey(getEnv("SERVICE_ACCOUNT_PRIVATE_KEY", "")),
		TokenURI:                 getEnv("TOKEN_URI", ""),

		ProjectID:       getEnv("DIALOGFLOW_PROJECT_ID", ""),
		LocationID:      getEnv("DIALOGFLOW_LOCATION_ID", "global"),
		AgentID:         getEnv("DIALOGFLOW_AGENT_ID", ""),
		LanguageCode:    getEnv("DIALOGFLOW_LANGUAGE_CODE", "en-US"),
		DefaultTimeZone: getEnv("DIALOGFLOW_DEFAULT_TIMEZONE", "UTC"),
		APIBaseURL:      getEnv("DIALOGFLOW_API_BASE_URL", ""),

		HTTPClientTimeout: getEnv("HTTP_CLIENT_TIMEOUT", "30s"),
	}
}

// ResolveCredentials fills service-account fields that were not set through
// the environment from CredentialsFile. Explicit environment values win.
// TokenURI falls back to DefaultTokenURI when neither source sets it.
func (c *Config) ResolveCredentials() error {
	if c.CredentialsFile != "" {
		sa, err := LoadServiceAccount(c.CredentialsFile)
		if err != nil {
			return err
		}
		if c.ServiceAccountEmail == "" {
			c.ServiceAccountEmail = sa.ClientEmail
		}
		if c.ServiceAccountPrivateKey == "" {
			c.ServiceAccountPrivateKey = sa.PrivateKey
		}
		if c.TokenURI == "" {
			c.TokenURI = sa.TokenURI
		}
		if c.ProjectID == "" {
			c.ProjectID = sa.ProjectID
		}
	}

	if c.TokenURI == "" {
		c.TokenURI = DefaultTokenURI
	}
	return nil
}

// LoadServiceAccount reads and decodes a service-account JSON key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to read service account file %s", path)).WithContext("cause", err.Error())
	}

	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("service account file %s is not valid JSON", path)).WithContext("cause", err.Error())
	}
	if sa.Type != "" && sa.Type != "service_account" {
		return nil, errors.ConfigError(fmt.Sprintf("credentials file %s has type %q, expected service_account", path, sa.Type))
	}

	return &sa, nil
}

// ClientTimeout returns HTTPClientTimeout as a duration. Call Validate first.
func (c *Config) ClientTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPClientTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks that all required fields are present and well formed.
func (c *Config) Validate() error {
	if err := validation.NewCentralizedValidator().ValidateStruct(c); err != nil {
		return errors.ConfigError(errors.Message(err))
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return errors.ConfigError("PORT must be a valid port number between 1 and 65535")
	}

	if d, err := time.ParseDuration(c.HTTPClientTimeout); err != nil || d <= 0 {
		return errors.ConfigError("HTTP_CLIENT_TIMEOUT must be a positive duration (e.g., '30s')")
	}

	if !strings.Contains(c.ServiceAccountPrivateKey, "PRIVATE KEY") {
		return errors.ConfigError("SERVICE_ACCOUNT_PRIVATE_KEY must be a PEM encoded private key")
	}

	return nil
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Keys pasted into a single-line env var usually carry literal "\n".
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
