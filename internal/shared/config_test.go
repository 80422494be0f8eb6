package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Batch.MatchThreshold != 0.75 {
		t.Errorf("MatchThreshold = %v, want 0.75", config.Batch.MatchThreshold)
	}
	if config.Quota.DailyLimit != 10000 {
		t.Errorf("DailyLimit = %d, want 10000", config.Quota.DailyLimit)
	}
	if config.Throttle.WriteDelayMS != 1000 {
		t.Errorf("WriteDelayMS = %d, want 1000", config.Throttle.WriteDelayMS)
	}
	if len(config.Quota.Projects) != 1 || config.Quota.Projects[0].Name != "default" {
		t.Errorf("expected single default project, got %+v", config.Quota.Projects)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[credentials.youtube]
client_id = "cid"
client_secret = "secret"

[credentials.extractor]
base_url = "http://localhost:9999"

[batch]
match_threshold = 0.9
max_consecutive_failures = 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Credentials.YouTube.ClientID != "cid" {
		t.Errorf("ClientID = %q", config.Credentials.YouTube.ClientID)
	}
	if config.Credentials.Extractor.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", config.Credentials.Extractor.BaseURL)
	}
	if config.Batch.MatchThreshold != 0.9 {
		t.Errorf("MatchThreshold = %v", config.Batch.MatchThreshold)
	}
	if config.Batch.MaxConsecutiveFailures != 5 {
		t.Errorf("MaxConsecutiveFailures = %d", config.Batch.MaxConsecutiveFailures)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("[[[not toml"), 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestCreateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile failed: %v", err)
	}
	if err := CreateConfigFile(path); err == nil {
		t.Error("expected error when config file already exists")
	}
}
