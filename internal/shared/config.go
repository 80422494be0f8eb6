package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Batch       BatchConfig       `toml:"batch"`
	Throttle    ThrottleConfig    `toml:"throttle"`
	Quota       QuotaConfig       `toml:"quota"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube   YouTubeConfig   `toml:"youtube"`
	Extractor ExtractorConfig `toml:"extractor"`
}

// YouTubeConfig contains OAuth client settings for the YouTube Data API.
type YouTubeConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenPath    string `toml:"token_path"`
}

// ExtractorConfig points at the zero-quota metadata extractor daemon.
type ExtractorConfig struct {
	BaseURL     string `toml:"base_url"`
	HeadersPath string `toml:"headers_path"`
}

// DatabaseConfig contains cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BatchConfig contains batch execution knobs.
type BatchConfig struct {
	JournalPath            string  `toml:"journal_path"`
	MatchThreshold         float64 `toml:"match_threshold"`
	MaxTaskRetries         int     `toml:"max_task_retries"`
	MaxConsecutiveFailures int     `toml:"max_consecutive_failures"`
	CacheMaxAgeHours       int     `toml:"cache_max_age_hours"`
}

// ThrottleConfig contains pacing delays in milliseconds.
type ThrottleConfig struct {
	WriteDelayMS     int `toml:"write_delay_ms"`
	ExtractorDelayMS int `toml:"extractor_delay_ms"`
	MaxDelayMS       int `toml:"max_delay_ms"`
}

// QuotaConfig contains the daily budget and project rotation settings.
type QuotaConfig struct {
	DailyLimit   int             `toml:"daily_limit"`
	RotationPath string          `toml:"rotation_path"`
	Projects     []ProjectConfig `toml:"projects"`
}

// ProjectConfig names a configured API project for quota rotation.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath resolves a leading "~/" against the user home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
