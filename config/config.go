package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete traderdash configuration.
type Config struct {
	Backend    BackendConfig    `json:"backend" yaml:"backend"`
	Poll       PollConfig       `json:"poll" yaml:"poll"`
	Credential CredentialConfig `json:"credential" yaml:"credential"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive"`
	Scan       ScanConfig       `json:"scan" yaml:"scan"`
}

// BackendConfig locates the trading backend.
type BackendConfig struct {
	URL        string `json:"url" yaml:"url"`
	Timeout    string `json:"timeout" yaml:"timeout"` // e.g. "60s"
	AuthHeader string `json:"auth_header" yaml:"auth_header"`
}

// PollConfig controls the refresh cycle.
type PollConfig struct {
	Interval string `json:"interval" yaml:"interval"` // e.g. "10s"
}

// CredentialConfig says where the access key is persisted.
type CredentialConfig struct {
	Path string `json:"path" yaml:"path"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// ArchiveConfig contains journal archive parameters.
type ArchiveConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type ScanConfig struct {
	CacheTTL string `json:"cache_ttl" yaml:"cache_ttl"`
}

// TimeoutDuration parses the request timeout.
func (b BackendConfig) TimeoutDuration() (time.Duration, error) {
	return parsePositive("backend.timeout", b.Timeout)
}

// IntervalDuration parses the poll interval.
func (p PollConfig) IntervalDuration() (time.Duration, error) {
	return parsePositive("poll.interval", p.Interval)
}

// TTLDuration parses the scan cache lifetime.
func (s ScanConfig) TTLDuration() (time.Duration, error) {
	return parsePositive("scan.cache_ttl", s.CacheTTL)
}

func parsePositive(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is non-empty (defaults otherwise), then
// applies .env and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		c, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	LoadEnv()
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads a .env file from the working directory when present.
// A missing file is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides fields from TRADERDASH_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if val := getenv("TRADERDASH_BACKEND_URL"); val != "" {
		c.Backend.URL = val
	}
	if val := getenv("TRADERDASH_TIMEOUT"); val != "" {
		c.Backend.Timeout = val
	}
	if val := getenv("TRADERDASH_AUTH_HEADER"); val != "" {
		c.Backend.AuthHeader = val
	}
	if val := getenv("TRADERDASH_POLL_INTERVAL"); val != "" {
		c.Poll.Interval = val
	}
	if val := getenv("TRADERDASH_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := getenv("TRADERDASH_CREDENTIAL_FILE"); val != "" {
		c.Credential.Path = val
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.url must be an http(s) URL")
	}
	if _, err := c.Backend.TimeoutDuration(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Backend.AuthHeader) == "" {
		return fmt.Errorf("backend.auth_header is required")
	}
	if _, err := c.Poll.IntervalDuration(); err != nil {
		return err
	}
	if c.Credential.Path == "" {
		return fmt.Errorf("credential.path is required")
	}
	if _, err := c.Scan.TTLDuration(); err != nil {
		return err
	}
	if c.Archive.Type != "csv" && c.Archive.Type != "sqlite" {
		return fmt.Errorf("archive.type must be 'csv' or 'sqlite'")
	}
	if c.Archive.Type == "csv" && (c.Archive.TradesFile == "" || c.Archive.EquityFile == "") {
		return fmt.Errorf("archive trades_file and equity_file required for CSV type")
	}
	if c.Archive.Type == "sqlite" && c.Archive.DBPath == "" {
		return fmt.Errorf("archive db_path required for SQLite type")
	}
	return nil
}

// DefaultCredentialPath is ~/.traderdash/credential, or a relative path
// when the home directory cannot be resolved.
func DefaultCredentialPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".traderdash", "credential")
	}
	return filepath.Join(home, ".traderdash", "credential")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:        "http://localhost:8000",
			Timeout:    "60s",
			AuthHeader: "X-Admin-Key",
		},
		Poll: PollConfig{
			Interval: "10s",
		},
		Credential: CredentialConfig{
			Path: DefaultCredentialPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Archive: ArchiveConfig{
			Type:       "csv",
			TradesFile: "./journal.csv",
			EquityFile: "./equity.csv",
			DBPath:     "./traderdash.sqlite",
		},
		Scan: ScanConfig{
			CacheTTL: "15m",
		},
	}
}
