package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Garmin  GarminConfig  `json:"garmin"`
	Profile ProfileConfig `json:"profile"`
	Cache   CacheConfig   `json:"cache"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int `json:"port"`
}

// GarminConfig holds the Garmin Connect session token material. Run the
// setup tooling to obtain the initial tokens.
type GarminConfig struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	DisplayName  string `json:"display_name"`
}

// ProfileConfig points at the device/zone-scheme overrides file.
type ProfileConfig struct {
	OverridesPath string `json:"overrides_path"`
}

// CacheConfig holds cache freshness settings
type CacheConfig struct {
	MaxAgeHours int    `json:"max_age_hours"`
	RefreshCron string `json:"refresh_cron"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Cache: CacheConfig{
			MaxAgeHours: 6,
			RefreshCron: "@every 1h",
		},
	}
}

// Load reads the configuration from ~/.connectlog/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Cache.MaxAgeHours == 0 {
		cfg.Cache.MaxAgeHours = defaults.Cache.MaxAgeHours
	}
	if cfg.Cache.RefreshCron == "" {
		cfg.Cache.RefreshCron = defaults.Cache.RefreshCron
	}
	if cfg.Profile.OverridesPath == "" {
		if dir, err := GetConfigDir(); err == nil {
			cfg.Profile.OverridesPath = filepath.Join(dir, "overrides.json")
		}
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.connectlog/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Garmin = GarminConfig{
		AccessToken:  "YOUR_ACCESS_TOKEN",
		RefreshToken: "YOUR_REFRESH_TOKEN",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Garmin.AccessToken == "" || c.Garmin.AccessToken == "YOUR_ACCESS_TOKEN" {
		return errors.New("garmin.access_token is required - run the OAuth setup first")
	}
	if c.Garmin.RefreshToken == "" || c.Garmin.RefreshToken == "YOUR_REFRESH_TOKEN" {
		return errors.New("garmin.refresh_token is required - run the OAuth setup first")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Cache.MaxAgeHours < 0 {
		return fmt.Errorf("cache.max_age_hours must not be negative, got %d", c.Cache.MaxAgeHours)
	}
	return nil
}

// DataPath returns the path to the SQLite cache database.
func DataPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data.db"), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".connectlog"), nil
}
