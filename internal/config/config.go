package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the music server connection settings
type ServerConfig struct {
	URL        string `mapstructure:"url"`         // Server base URL
	Username   string `mapstructure:"username"`    // Account username
	Password   string `mapstructure:"password"`    // Account password (token auth is derived per request)
	ClientName string `mapstructure:"client_name"` // Client name reported to the server
}

// CacheConfig holds the local cache settings
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"` // false = proxy the server directly, no local state
	Dir     string `mapstructure:"dir"`     // Cache root: database, music/, cover_art/
	Workers int    `mapstructure:"workers"` // Max concurrent background fetches
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // Rotate after this size
	MaxBackups int    `mapstructure:"max_backups"` // Rotated files to keep
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:        "",
			Username:   "",
			Password:   "",
			ClientName: "descant",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     defaultCachePath(),
			Workers: 4,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "descant", "descant.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "descant", "descant.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "descant")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "descant")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "descant", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "descant", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("DESCANT")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.username", cfg.Server.Username)
	viper.Set("server.password", cfg.Server.Password)
	viper.Set("server.client_name", cfg.Server.ClientName)

	viper.Set("cache.enabled", cfg.Cache.Enabled)
	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("cache.workers", cfg.Cache.Workers)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)
	viper.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	viper.Set("logging.max_backups", cfg.Logging.MaxBackups)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the server connection settings are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Username != "" && c.Server.Password != ""
}

// ClearServerConfig removes the server connection settings while preserving
// cache and logging settings
func ClearServerConfig() error {
	viper.Set("server.url", "")
	viper.Set("server.username", "")
	viper.Set("server.password", "")

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes the entire cache directory
func ClearCache(cfg *Config) error {
	dir := cfg.Cache.Dir
	if dir == "" {
		dir = defaultCachePath()
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
