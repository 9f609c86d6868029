package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the chatpal-search service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Engine   EngineConfig   `yaml:"engine"`
	Search   SearchConfig   `yaml:"search"`
	Fields   FieldsConfig   `yaml:"fields"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Auth     AuthConfig     `yaml:"auth"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds the search engine connection settings.
type EngineConfig struct {
	BaseURL    string `yaml:"base_url"`
	Core       string `yaml:"core"`
	TimeoutSec int    `yaml:"timeout_sec"`
	// UniqueKey is the engine's unique document id field, needed to
	// correlate highlight snippets to documents.
	UniqueKey string `yaml:"unique_key"`
}

// SearchConfig holds feature toggles of the search API.
type SearchConfig struct {
	GeneralEnabled *bool `yaml:"general_enabled"`
	FileEnabled    bool  `yaml:"file_enabled"`
	MaxFileSize    int64 `yaml:"max_file_size"`
	SuggestionSize int   `yaml:"suggestion_size"`
}

// GeneralSearchEnabled reports whether message/room/user search is on
// (default true).
func (s SearchConfig) GeneralSearchEnabled() bool {
	return s.GeneralEnabled == nil || *s.GeneralEnabled
}

// FieldsConfig names the index fields the query composer depends on.
type FieldsConfig struct {
	ACL        string `yaml:"acl"`
	Type       string `yaml:"type"`
	RoomID     string `yaml:"room_id"`
	MessageID  string `yaml:"message_id"`
	Suggestion string `yaml:"suggestion"`
	Updated    string `yaml:"updated"`
	Created    string `yaml:"created"`
}

// DefaultsConfig holds the static default-parameter layers. Params is
// the global layer; Types holds one layer per category external key.
// Both are read-only after load.
type DefaultsConfig struct {
	Params map[string]string            `yaml:"params"`
	Types  map[string]map[string]string `yaml:"types"`
}

// AuthConfig holds API authentication settings. An empty key list
// disables authentication.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// ReportConfig holds the reporting-record sink settings. An empty path
// sends records to stdout.
type ReportConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.TimeoutSec <= 0 {
		c.Engine.TimeoutSec = 30
	}
	if c.Engine.UniqueKey == "" {
		c.Engine.UniqueKey = "id"
	}
	if c.Search.MaxFileSize <= 0 {
		c.Search.MaxFileSize = 20 * 1024 * 1024
	}
	if c.Search.SuggestionSize <= 0 {
		c.Search.SuggestionSize = 10
	}
	if c.Fields.ACL == "" {
		c.Fields.ACL = "rid"
	}
	if c.Fields.Type == "" {
		c.Fields.Type = "type"
	}
	if c.Fields.RoomID == "" {
		c.Fields.RoomID = "rid"
	}
	if c.Fields.MessageID == "" {
		c.Fields.MessageID = "id"
	}
	if c.Fields.Suggestion == "" {
		c.Fields.Suggestion = "suggestion"
	}
	if c.Fields.Updated == "" {
		c.Fields.Updated = "updated"
	}
	if c.Fields.Created == "" {
		c.Fields.Created = "created"
	}
	if c.Report.MaxSizeMB <= 0 {
		c.Report.MaxSizeMB = 50
	}
	if c.Report.MaxBackups <= 0 {
		c.Report.MaxBackups = 5
	}
	if c.Report.MaxAgeDays <= 0 {
		c.Report.MaxAgeDays = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Engine.BaseURL == "" {
		return fmt.Errorf("engine.base_url is required")
	}
	if c.Engine.Core == "" {
		return fmt.Errorf("engine.core is required")
	}
	for name, value := range map[string]string{
		"fields.acl":        c.Fields.ACL,
		"fields.type":       c.Fields.Type,
		"fields.suggestion": c.Fields.Suggestion,
		"engine.unique_key": c.Engine.UniqueKey,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must not be blank", name)
		}
	}
	for key := range c.Defaults.Types {
		switch key {
		case "message", "room", "user", "file":
			// ok
		default:
			return fmt.Errorf("defaults.types.%s is not a known category", key)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
