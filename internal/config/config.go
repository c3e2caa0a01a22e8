// Package config loads the recipebox configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store types
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// DefaultUsernameCheckDelay is the idle time before a typed username is checked
const DefaultUsernameCheckDelay = 500 * time.Millisecond

// Config represents the application configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Auth    AuthConfig    `yaml:"auth"`
	Assets  AssetsConfig  `yaml:"assets"`
	Profile ProfileConfig `yaml:"profile"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig represents the document store configuration
type StoreConfig struct {
	Type        string `yaml:"type"`                  // "firestore" | "memory"
	ProjectID   string `yaml:"project_id"`            // GCP project ID
	Database    string `yaml:"database,omitempty"`    // Firestore database, "(default)" if empty
	Credentials string `yaml:"credentials,omitempty"` // Path to service account JSON
}

// AuthConfig represents Firebase Authentication configuration
type AuthConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ProjectID   string `yaml:"project_id"`
	Credentials string `yaml:"credentials,omitempty"`
	TenantID    string `yaml:"tenant_id,omitempty"` // Optional: Identity Platform tenant
}

// AssetsConfig represents where uploaded images are stored
type AssetsConfig struct {
	Bucket        string `yaml:"bucket"`
	Prefix        string `yaml:"prefix,omitempty"`
	PublicBaseURL string `yaml:"public_base_url,omitempty"` // defaults to https://storage.googleapis.com/<bucket>
	AllowLocal    bool   `yaml:"allow_local,omitempty"`     // accept http://localhost asset URLs
}

// ProfileConfig represents profile editing settings
type ProfileConfig struct {
	UsernameCheckDelay time.Duration `yaml:"username_check_delay"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name
	Format string `yaml:"format"` // "json" | "console"
}

// Load reads configuration from the specified YAML file.
// An empty path loads from environment variables only (see LoadFromEnv).
//
// Environment variables override file values:
//   - RECIPEBOX_STORE_TYPE, RECIPEBOX_PROJECT_ID, RECIPEBOX_FIRESTORE_DATABASE, RECIPEBOX_CREDENTIALS
//   - RECIPEBOX_AUTH_ENABLED, RECIPEBOX_AUTH_PROJECT_ID, RECIPEBOX_AUTH_CREDENTIALS, RECIPEBOX_AUTH_TENANT_ID
//   - RECIPEBOX_ASSET_BUCKET, RECIPEBOX_ASSET_PREFIX, RECIPEBOX_ASSET_BASE_URL, RECIPEBOX_ASSET_ALLOW_LOCAL
//   - RECIPEBOX_USERNAME_CHECK_DELAY
//   - RECIPEBOX_LOG_LEVEL, RECIPEBOX_LOG_FORMAT
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv builds the configuration from environment variables and defaults
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() error {
	setString(&c.Store.Type, "RECIPEBOX_STORE_TYPE")
	setString(&c.Store.ProjectID, "RECIPEBOX_PROJECT_ID")
	setString(&c.Store.Database, "RECIPEBOX_FIRESTORE_DATABASE")
	setString(&c.Store.Credentials, "RECIPEBOX_CREDENTIALS")

	if err := setBool(&c.Auth.Enabled, "RECIPEBOX_AUTH_ENABLED"); err != nil {
		return err
	}
	setString(&c.Auth.ProjectID, "RECIPEBOX_AUTH_PROJECT_ID")
	setString(&c.Auth.Credentials, "RECIPEBOX_AUTH_CREDENTIALS")
	setString(&c.Auth.TenantID, "RECIPEBOX_AUTH_TENANT_ID")

	setString(&c.Assets.Bucket, "RECIPEBOX_ASSET_BUCKET")
	setString(&c.Assets.Prefix, "RECIPEBOX_ASSET_PREFIX")
	setString(&c.Assets.PublicBaseURL, "RECIPEBOX_ASSET_BASE_URL")
	if err := setBool(&c.Assets.AllowLocal, "RECIPEBOX_ASSET_ALLOW_LOCAL"); err != nil {
		return err
	}

	if v := os.Getenv("RECIPEBOX_USERNAME_CHECK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RECIPEBOX_USERNAME_CHECK_DELAY: %w", err)
		}
		c.Profile.UsernameCheckDelay = d
	}

	setString(&c.Log.Level, "RECIPEBOX_LOG_LEVEL")
	setString(&c.Log.Format, "RECIPEBOX_LOG_FORMAT")

	return nil
}

// applyDefaults fills in unset values
func (c *Config) applyDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = StoreFirestore
	}
	if c.Auth.ProjectID == "" {
		c.Auth.ProjectID = c.Store.ProjectID
	}
	if c.Auth.Credentials == "" {
		c.Auth.Credentials = c.Store.Credentials
	}
	if c.Assets.PublicBaseURL == "" && c.Assets.Bucket != "" {
		c.Assets.PublicBaseURL = "https://storage.googleapis.com/" + c.Assets.Bucket
	}
	if c.Profile.UsernameCheckDelay == 0 {
		c.Profile.UsernameCheckDelay = DefaultUsernameCheckDelay
	}
	if c.Log.Level == "" {
		c.Log.Level = zerolog.LevelInfoValue
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatJSON
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Assets.Validate(); err != nil {
		return err
	}
	if c.Profile.UsernameCheckDelay < 0 {
		return fmt.Errorf("profile.username_check_delay must not be negative")
	}
	return c.Log.Validate()
}

// Validate checks if the store configuration is valid
func (s *StoreConfig) Validate() error {
	switch s.Type {
	case "":
		return fmt.Errorf("store.type is required")
	case StoreMemory:
		return nil
	case StoreFirestore:
		if s.ProjectID == "" {
			return fmt.Errorf("store.project_id is required for firestore")
		}
		return nil
	default:
		return fmt.Errorf("unsupported store type: %q (supported: firestore, memory)", s.Type)
	}
}

// Validate checks if the auth configuration is valid
func (a *AuthConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.ProjectID == "" {
		return fmt.Errorf("auth.project_id is required when auth is enabled")
	}
	return nil
}

// Validate checks if the assets configuration is valid
func (a *AssetsConfig) Validate() error {
	if a.PublicBaseURL == "" {
		return nil
	}
	u, err := url.Parse(a.PublicBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("assets.public_base_url %q is not an absolute URL", a.PublicBaseURL)
	}
	return nil
}

// Validate checks if the log configuration is valid
func (l *LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch l.Format {
	case LogFormatJSON, LogFormatConsole:
		return nil
	default:
		return fmt.Errorf("unsupported log format: %q (supported: json, console)", l.Format)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
