package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Source struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	UserAgent      string   `yaml:"user_agent"`
	MaxConcurrent  int      `yaml:"max_concurrent"`
	CacheTTL       string   `yaml:"cache_ttl"`
	ConnectTimeout string   `yaml:"connect_timeout"`
	ReadTimeout    string   `yaml:"read_timeout"`
	CachePath      string   `yaml:"cache_path,omitempty"`
	Blacklist      []string `yaml:"blacklist"`
	Sources        []Source `yaml:"sources"`
}

// GitHubToken returns the optional elevated-rate-limit credential.
// Environment only; never stored in the config file.
func (c *Config) GitHubToken() string {
	return os.Getenv("TRENDSCOUT_GITHUB_TOKEN")
}

func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}

func (c *Config) ConnectTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func (c *Config) ReadTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// Concurrency returns the outbound request cap, defaulting to 5.
func (c *Config) Concurrency() int {
	if c.MaxConcurrent <= 0 {
		return 5
	}
	return c.MaxConcurrent
}

func (c *Config) SourceEnabled(name string) bool {
	for _, s := range c.Sources {
		if s.Name == name {
			return s.Enabled
		}
	}
	// Sources absent from the config are on: a new adapter should not
	// require every user to touch their config file.
	return true
}

func (c *Config) EnabledSourceNames() []string {
	var names []string
	for _, s := range c.Sources {
		if s.Enabled {
			names = append(names, s.Name)
		}
	}
	return names
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "trendscout", "config.yaml")
}

// ResolvedCachePath returns the fetch-cache file path, defaulting to the
// XDG cache home.
func (c *Config) ResolvedCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(xdg.CacheHome, "trendscout", "fetch_cache.json")
}

func ArchivePath() string {
	return filepath.Join(xdg.CacheHome, "trendscout", "archive.db")
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

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				applyEnv(defaults)
				return defaults, nil
			}
			applyEnv(defaults)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// applyEnv overlays TRENDSCOUT_* environment variables on top of the file,
// so every tunable can be driven from the environment alone.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TRENDSCOUT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("TRENDSCOUT_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrent = n
		}
	}
	if v := os.Getenv("TRENDSCOUT_CACHE_TTL"); v != "" {
		cfg.CacheTTL = v
	}
	if v := os.Getenv("TRENDSCOUT_CONNECT_TIMEOUT"); v != "" {
		cfg.ConnectTimeout = v
	}
	if v := os.Getenv("TRENDSCOUT_READ_TIMEOUT"); v != "" {
		cfg.ReadTimeout = v
	}
	if v := os.Getenv("TRENDSCOUT_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
}

func validate(cfg *Config) error {
	if cfg.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if cfg.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must not be negative, got %d", cfg.MaxConcurrent)
	}
	seen := map[string]bool{}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %q: listed twice", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
