package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every RECIPEBOX_* variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "RECIPEBOX_") {
			t.Setenv(key, "")
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `store:
  type: firestore
  project_id: recipebox-dev
  database: recipes
auth:
  enabled: true
  tenant_id: tenant-1
assets:
  bucket: recipebox-assets
  prefix: recipes/
profile:
  username_check_delay: 250ms
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Type != StoreFirestore {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, StoreFirestore)
	}
	if cfg.Store.ProjectID != "recipebox-dev" {
		t.Errorf("Store.ProjectID = %q, want recipebox-dev", cfg.Store.ProjectID)
	}
	if cfg.Store.Database != "recipes" {
		t.Errorf("Store.Database = %q, want recipes", cfg.Store.Database)
	}
	if !cfg.Auth.Enabled {
		t.Error("Auth.Enabled = false, want true")
	}
	if cfg.Auth.ProjectID != "recipebox-dev" {
		t.Errorf("Auth.ProjectID = %q, want it to default to the store project", cfg.Auth.ProjectID)
	}
	if cfg.Auth.TenantID != "tenant-1" {
		t.Errorf("Auth.TenantID = %q, want tenant-1", cfg.Auth.TenantID)
	}
	if cfg.Assets.PublicBaseURL != "https://storage.googleapis.com/recipebox-assets" {
		t.Errorf("Assets.PublicBaseURL = %q", cfg.Assets.PublicBaseURL)
	}
	if cfg.Profile.UsernameCheckDelay != 250*time.Millisecond {
		t.Errorf("Profile.UsernameCheckDelay = %v, want 250ms", cfg.Profile.UsernameCheckDelay)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != LogFormatConsole {
		t.Errorf("Log = %+v, want debug/console", cfg.Log)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `store:
  type: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Profile.UsernameCheckDelay != DefaultUsernameCheckDelay {
		t.Errorf("UsernameCheckDelay = %v, want %v", cfg.Profile.UsernameCheckDelay, DefaultUsernameCheckDelay)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != LogFormatJSON {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Assets.PublicBaseURL != "" {
		t.Errorf("Assets.PublicBaseURL = %q, want empty without a bucket", cfg.Assets.PublicBaseURL)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)

	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "store: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECIPEBOX_STORE_TYPE", "memory")
	t.Setenv("RECIPEBOX_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Store.Type != StoreMemory {
		t.Errorf("Store.Type = %q, want memory", cfg.Store.Type)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadFromEnv_RequiresProjectForFirestore(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("LoadFromEnv() expected error when firestore has no project")
	}
	if !strings.Contains(err.Error(), "project_id") {
		t.Errorf("error = %v, want mention of project_id", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `store:
  type: memory
auth:
  enabled: false
`)

	t.Setenv("RECIPEBOX_STORE_TYPE", "firestore")
	t.Setenv("RECIPEBOX_PROJECT_ID", "env-project")
	t.Setenv("RECIPEBOX_FIRESTORE_DATABASE", "env-db")
	t.Setenv("RECIPEBOX_AUTH_ENABLED", "true")
	t.Setenv("RECIPEBOX_AUTH_PROJECT_ID", "auth-project")
	t.Setenv("RECIPEBOX_AUTH_TENANT_ID", "env-tenant")
	t.Setenv("RECIPEBOX_ASSET_BUCKET", "env-bucket")
	t.Setenv("RECIPEBOX_ASSET_BASE_URL", "https://cdn.example.com")
	t.Setenv("RECIPEBOX_ASSET_ALLOW_LOCAL", "true")
	t.Setenv("RECIPEBOX_USERNAME_CHECK_DELAY", "1s")
	t.Setenv("RECIPEBOX_LOG_FORMAT", "console")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Type != StoreFirestore || cfg.Store.ProjectID != "env-project" || cfg.Store.Database != "env-db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if !cfg.Auth.Enabled || cfg.Auth.ProjectID != "auth-project" || cfg.Auth.TenantID != "env-tenant" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Assets.Bucket != "env-bucket" || cfg.Assets.PublicBaseURL != "https://cdn.example.com" || !cfg.Assets.AllowLocal {
		t.Errorf("Assets = %+v", cfg.Assets)
	}
	if cfg.Profile.UsernameCheckDelay != time.Second {
		t.Errorf("UsernameCheckDelay = %v, want 1s", cfg.Profile.UsernameCheckDelay)
	}
	if cfg.Log.Format != LogFormatConsole {
		t.Errorf("Log.Format = %q, want console", cfg.Log.Format)
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad bool", "RECIPEBOX_AUTH_ENABLED", "maybe"},
		{"bad duration", "RECIPEBOX_USERNAME_CHECK_DELAY", "soon"},
		{"bad allow local", "RECIPEBOX_ASSET_ALLOW_LOCAL", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("RECIPEBOX_STORE_TYPE", "memory")
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestStoreConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StoreConfig
		wantErr bool
	}{
		{"memory", StoreConfig{Type: StoreMemory}, false},
		{"firestore with project", StoreConfig{Type: StoreFirestore, ProjectID: "p"}, false},
		{"firestore without project", StoreConfig{Type: StoreFirestore}, true},
		{"missing type", StoreConfig{}, true},
		{"unsupported type", StoreConfig{Type: "postgres"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{"disabled", AuthConfig{}, false},
		{"enabled with project", AuthConfig{Enabled: true, ProjectID: "p"}, false},
		{"enabled without project", AuthConfig{Enabled: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssetsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AssetsConfig
		wantErr bool
	}{
		{"empty", AssetsConfig{}, false},
		{"absolute", AssetsConfig{PublicBaseURL: "https://cdn.example.com/assets"}, false},
		{"relative", AssetsConfig{PublicBaseURL: "/assets"}, true},
		{"garbage", AssetsConfig{PublicBaseURL: "://nope"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: LogFormatJSON}, false},
		{"console debug", LogConfig{Level: "debug", Format: LogFormatConsole}, false},
		{"bad level", LogConfig{Level: "loud", Format: LogFormatJSON}, true},
		{"bad format", LogConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateNegativeDelay(t *testing.T) {
	cfg := Config{
		Store:   StoreConfig{Type: StoreMemory},
		Profile: ProfileConfig{UsernameCheckDelay: -time.Second},
		Log:     LogConfig{Level: "info", Format: LogFormatJSON},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for negative delay")
	}
}
