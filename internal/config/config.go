package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// EnvPrefix prefixes every environment override, e.g. LEADFINDER_AI_KEY.
const EnvPrefix = "LEADFINDER"

type AIConfig struct {
	Provider string `yaml:"provider"` // "claude" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

type ScoringConfig struct {
	Mode                 string `yaml:"mode"` // improved, legacy or simple
	Threshold            int    `yaml:"threshold"`
	HighQualityThreshold int    `yaml:"high_quality_threshold"`
	TimeRange            string `yaml:"time_range"`
}

type FetchConfig struct {
	BaseURL     string  `yaml:"base_url"`
	UserAgent   string  `yaml:"user_agent"`
	Timeout     string  `yaml:"timeout"`
	Concurrency int     `yaml:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit"` // requests per second
	Retries     int     `yaml:"retries"`
	Wide        bool    `yaml:"wide"` // include backup subreddits
}

type CacheConfig struct {
	Backend       string `yaml:"backend"` // memory, sqlite or redis
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
}

type Config struct {
	Database  string        `yaml:"database,omitempty"`
	Retention string        `yaml:"retention"`
	LogLevel  string        `yaml:"log_level"`
	Scoring   ScoringConfig `yaml:"scoring"`
	Fetch     FetchConfig   `yaml:"fetch"`
	Cache     CacheConfig   `yaml:"cache"`
	AI        *AIConfig     `yaml:"ai,omitempty"`
}

// envOverrides is read from LEADFINDER_* variables. Unset variables leave
// the file values alone.
type envOverrides struct {
	Database     string   `envconfig:"DATABASE"`
	LogLevel     string   `envconfig:"LOG_LEVEL"`
	ScoringMode  string   `envconfig:"SCORING_MODE"`
	Threshold    *int     `envconfig:"THRESHOLD"`
	CacheBackend string   `envconfig:"CACHE_BACKEND"`
	RedisAddr    string   `envconfig:"REDIS_ADDR"`
	RateLimit    *float64 `envconfig:"RATE_LIMIT"`
	AIProvider   string   `envconfig:"AI_PROVIDER"`
	AIKey        string   `envconfig:"AI_KEY"`
	AIModel      string   `envconfig:"AI_MODEL"`
}

// AIEnabled returns true if AI is configured with a valid API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv(EnvPrefix + "_AI_KEY")
}

// AITimeout defaults to 30s.
func (c *Config) AITimeout() time.Duration {
	if c.AI == nil {
		return 30 * time.Second
	}
	return parseDuration(c.AI.Timeout, 30*time.Second)
}

func (c *Config) FetchTimeout() time.Duration {
	return parseDuration(c.Fetch.Timeout, 30*time.Second)
}

// RetentionDuration is how long search records are kept.
func (c *Config) RetentionDuration() time.Duration {
	return parseDuration(c.Retention, 90*24*time.Hour)
}

// DatabasePath returns the configured database path or the XDG default.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return DefaultDatabasePath()
}

// ParseDuration accepts Go durations plus an "Nd" day syntax.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "leadfinder", "config.yaml")
}

func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, "leadfinder", "leadfinder.db")
}

// LoadEnvFile loads a dotenv file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path (or the default path) over the
// embedded defaults, applies environment overrides and validates the
// result. On first run the defaults are written to path.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Non-fatal: just use embedded defaults
		_ = writeDefaults(path)
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.Database != "" {
		cfg.Database = env.Database
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.ScoringMode != "" {
		cfg.Scoring.Mode = env.ScoringMode
	}
	if env.Threshold != nil {
		cfg.Scoring.Threshold = *env.Threshold
	}
	if env.CacheBackend != "" {
		cfg.Cache.Backend = env.CacheBackend
	}
	if env.RedisAddr != "" {
		cfg.Cache.RedisAddr = env.RedisAddr
	}
	if env.RateLimit != nil {
		cfg.Fetch.RateLimit = *env.RateLimit
	}
	if env.AIProvider != "" || env.AIKey != "" || env.AIModel != "" {
		if cfg.AI == nil {
			cfg.AI = &AIConfig{Provider: "claude"}
		}
		if env.AIProvider != "" {
			cfg.AI.Provider = env.AIProvider
		}
		if env.AIKey != "" {
			cfg.AI.APIKey = env.AIKey
		}
		if env.AIModel != "" {
			cfg.AI.Model = env.AIModel
		}
	}
	return nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Scoring.Mode) {
	case "", "improved", "legacy", "simple":
	default:
		return fmt.Errorf("scoring: unknown mode %q (valid: improved, legacy, simple)", cfg.Scoring.Mode)
	}
	if cfg.Scoring.Threshold < 0 || cfg.Scoring.Threshold > 100 {
		return fmt.Errorf("scoring: threshold must be between 0 and 100, got %d", cfg.Scoring.Threshold)
	}
	if cfg.Scoring.HighQualityThreshold < 0 || cfg.Scoring.HighQualityThreshold > 100 {
		return fmt.Errorf("scoring: high_quality_threshold must be between 0 and 100, got %d", cfg.Scoring.HighQualityThreshold)
	}
	switch cfg.Scoring.TimeRange {
	case "", "today", "last_week", "last_month", "all_time":
	default:
		return fmt.Errorf("scoring: unknown time_range %q (valid: today, last_week, last_month, all_time)", cfg.Scoring.TimeRange)
	}

	if cfg.Fetch.BaseURL != "" {
		u, err := url.Parse(cfg.Fetch.BaseURL)
		if err != nil {
			return fmt.Errorf("fetch: invalid base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("fetch: base_url scheme must be http or https, got %q", u.Scheme)
		}
	}
	if cfg.Fetch.Concurrency < 0 {
		return fmt.Errorf("fetch: concurrency must not be negative")
	}
	if cfg.Fetch.RateLimit < 0 {
		return fmt.Errorf("fetch: rate_limit must not be negative")
	}
	if cfg.Fetch.Timeout != "" {
		if _, err := ParseDuration(cfg.Fetch.Timeout); err != nil {
			return fmt.Errorf("fetch: invalid timeout %q: %w", cfg.Fetch.Timeout, err)
		}
	}

	switch cfg.Cache.Backend {
	case "", "memory", "sqlite":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache: redis backend requires redis_addr")
		}
	default:
		return fmt.Errorf("cache: unknown backend %q (valid: memory, sqlite, redis)", cfg.Cache.Backend)
	}

	if cfg.AI != nil {
		switch cfg.AI.Provider {
		case "claude", "openai":
		default:
			return fmt.Errorf("ai: unknown provider %q (valid: claude, openai)", cfg.AI.Provider)
		}
	}
	return nil
}
