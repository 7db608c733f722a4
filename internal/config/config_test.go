package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.Scoring.Mode != "improved" {
		t.Errorf("expected improved scoring, got %q", cfg.Scoring.Mode)
	}
	if cfg.Scoring.Threshold != 5 {
		t.Errorf("expected threshold 5, got %d", cfg.Scoring.Threshold)
	}
	if cfg.Scoring.HighQualityThreshold != 35 {
		t.Errorf("expected high quality threshold 35, got %d", cfg.Scoring.HighQualityThreshold)
	}
	if cfg.Cache.Backend != "sqlite" {
		t.Errorf("expected sqlite cache, got %q", cfg.Cache.Backend)
	}
	if cfg.AI != nil {
		t.Error("expected AI to be disabled by default")
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"30d", 30},
		{"720h", 30},
		{"", 90},        // default
		{"invalid", 90}, // fallback to default
	}
	for _, tt := range tests {
		cfg := &Config{Retention: tt.input}
		got := cfg.RetentionDuration()
		wantHours := float64(tt.wantDays * 24)
		if got.Hours() != wantHours {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestFetchTimeout(t *testing.T) {
	cfg := &Config{Fetch: FetchConfig{Timeout: "5s"}}
	if got := cfg.FetchTimeout(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
	cfg.Fetch.Timeout = ""
	if got := cfg.FetchTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s default, got %v", got)
	}
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `scoring:
  mode: simple
cache:
  backend: memory
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoring.Mode != "simple" {
		t.Errorf("expected simple, got %s", cfg.Scoring.Mode)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected memory, got %s", cfg.Cache.Backend)
	}
	// Fields absent from the file keep their embedded values
	if cfg.Scoring.HighQualityThreshold != 35 {
		t.Errorf("expected default high quality threshold, got %d", cfg.Scoring.HighQualityThreshold)
	}
	if cfg.Fetch.BaseURL != "https://www.reddit.com" {
		t.Errorf("expected default base url, got %s", cfg.Fetch.BaseURL)
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoring.Threshold != 5 {
		t.Errorf("expected default threshold, got %d", cfg.Scoring.Threshold)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("scoring:\n  mode: psychic\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected error for unknown scoring mode")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEADFINDER_SCORING_MODE", "legacy")
	t.Setenv("LEADFINDER_THRESHOLD", "0")
	t.Setenv("LEADFINDER_CACHE_BACKEND", "redis")
	t.Setenv("LEADFINDER_REDIS_ADDR", "localhost:6379")
	t.Setenv("LEADFINDER_AI_KEY", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoring.Mode != "legacy" {
		t.Errorf("expected legacy, got %s", cfg.Scoring.Mode)
	}
	if cfg.Scoring.Threshold != 0 {
		t.Errorf("expected threshold 0 from env, got %d", cfg.Scoring.Threshold)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if !cfg.AIEnabled() {
		t.Error("expected AI enabled from env key")
	}
	if cfg.AI.Provider != "claude" {
		t.Errorf("expected claude provider by default, got %s", cfg.AI.Provider)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LEADFINDER_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatalf("writing env: %v", err)
	}
	t.Setenv("LEADFINDER_TEST_DOTENV", "")
	os.Unsetenv("LEADFINDER_TEST_DOTENV")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("LEADFINDER_TEST_DOTENV"); got != "loaded" {
		t.Errorf("expected loaded, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero config", Config{}, false},
		{"bad threshold", Config{Scoring: ScoringConfig{Threshold: 101}}, true},
		{"bad time range", Config{Scoring: ScoringConfig{TimeRange: "yesterday"}}, true},
		{"file scheme", Config{Fetch: FetchConfig{BaseURL: "file:///etc/passwd"}}, true},
		{"http scheme", Config{Fetch: FetchConfig{BaseURL: "http://localhost:8080"}}, false},
		{"bad timeout", Config{Fetch: FetchConfig{Timeout: "soon"}}, true},
		{"redis without addr", Config{Cache: CacheConfig{Backend: "redis"}}, true},
		{"unknown backend", Config{Cache: CacheConfig{Backend: "memcached"}}, true},
		{"unknown provider", Config{AI: &AIConfig{Provider: "gemini"}}, true},
		{"openai", Config{AI: &AIConfig{Provider: "openai"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAIKeyPrefersConfig(t *testing.T) {
	t.Setenv("LEADFINDER_AI_KEY", "env")
	cfg := &Config{AI: &AIConfig{Provider: "claude", APIKey: "file"}}
	if got := cfg.AIKey(); got != "file" {
		t.Errorf("expected config key, got %q", got)
	}
	cfg.AI.APIKey = ""
	if got := cfg.AIKey(); got != "env" {
		t.Errorf("expected env key, got %q", got)
	}
}
