// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/resume-editor/internal/llm"
)

// Defaults used by MergeWithDefaults.
const (
	DefaultPort           = 8080
	DefaultSessionTTL     = "2h"
	DefaultMaxUploadBytes = 10 << 20
)

// Config represents the server configuration that can be loaded from a JSON file and
// overlaid from the environment. All fields are optional; missing values use defaults.
type Config struct {
	// Server
	Port           int      `json:"port,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"` // CORS origins; empty allows any
	SessionTTL     string   `json:"session_ttl,omitempty"`     // Idle editing session lifetime, e.g. "2h"
	MaxUploadBytes int64    `json:"max_upload_bytes,omitempty"`
	Template       string   `json:"template,omitempty"` // Path to a LaTeX export template

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty disables persistence

	// Auth
	JWTSecret   string `json:"jwt_secret,omitempty"`
	JWTIssuer   string `json:"jwt_issuer,omitempty"`
	RequireAuth bool   `json:"require_auth,omitempty"` // Reject anonymous analysis requests

	// Behavior
	APIKey     string            `json:"api_key,omitempty"`     // Gemini API key
	Models     map[string]string `json:"models,omitempty"`      // Tier name -> model name overrides
	UseBrowser bool              `json:"use_browser,omitempty"` // Use headless browser for SPA job postings
	Verbose    bool              `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. Unset variables leave the
// field empty so the result can be merged over a file config.
func FromEnv() (*Config, error) {
	cfg := &Config{
		SessionTTL:  os.Getenv("SESSION_TTL"),
		Template:    os.Getenv("TEMPLATE_PATH"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
	}

	var err error
	if cfg.Port, err = envInt("PORT"); err != nil {
		return nil, err
	}
	maxUpload, err := envInt("MAX_UPLOAD_BYTES")
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.RequireAuth, err = envBool("REQUIRE_AUTH"); err != nil {
		return nil, err
	}
	if cfg.UseBrowser, err = envBool("USE_BROWSER"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = envBool("VERBOSE"); err != nil {
		return nil, err
	}

	models := map[string]string{}
	for tier, key := range map[llm.ModelTier]string{
		llm.TierLite:     "GEMINI_MODEL_LITE",
		llm.TierStandard: "GEMINI_MODEL_STANDARD",
		llm.TierAdvanced: "GEMINI_MODEL_ADVANCED",
	} {
		if v := os.Getenv(key); v != "" {
			models[string(tier)] = v
		}
	}
	if len(models) > 0 {
		cfg.Models = models
	}

	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	if c.SessionTTL != "" {
		ttl, err := time.ParseDuration(c.SessionTTL)
		if err != nil {
			return fmt.Errorf("config error: invalid 'session_ttl': %w", err)
		}
		if ttl < 0 {
			return fmt.Errorf("config error: 'session_ttl' must be non-negative")
		}
	}
	if c.RequireAuth && c.JWTSecret == "" {
		return fmt.Errorf("config error: 'require_auth' needs 'jwt_secret'")
	}
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	if _, err := llm.DefaultConfig().WithOverrides(c.Models); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults, then from
// the built-in defaults. Bool fields are enabled when either side enables them.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.SessionTTL == "" {
		result.SessionTTL = defaults.SessionTTL
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.JWTIssuer == "" {
		result.JWTIssuer = defaults.JWTIssuer
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	if len(defaults.Models) > 0 {
		models := make(map[string]string, len(defaults.Models)+len(result.Models))
		for k, v := range defaults.Models {
			models[k] = v
		}
		for k, v := range result.Models {
			models[k] = v
		}
		result.Models = models
	}

	result.RequireAuth = result.RequireAuth || defaults.RequireAuth
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	// Built-in fallbacks
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.SessionTTL == "" {
		result.SessionTTL = DefaultSessionTTL
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = DefaultMaxUploadBytes
	}

	return result
}

// SessionTTLDuration parses SessionTTL. An empty value means the default.
func (c *Config) SessionTTLDuration() (time.Duration, error) {
	s := c.SessionTTL
	if s == "" {
		s = DefaultSessionTTL
	}
	return time.ParseDuration(s)
}

// LLMConfig returns the model configuration with any overrides applied.
func (c *Config) LLMConfig() (*llm.Config, error) {
	return llm.DefaultConfig().WithOverrides(c.Models)
}

// JWT returns the token configuration, or nil when no secret is configured.
func (c *Config) JWT() *JWTConfig {
	if c.JWTSecret == "" {
		return nil
	}
	return &JWTConfig{Secret: c.JWTSecret, Issuer: c.JWTIssuer, ExpirationHours: DefaultExpirationHours}
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func envBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %v", key, err)
	}
	return b, nil
}
