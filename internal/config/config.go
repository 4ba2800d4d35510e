package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSeed        = "pandemic"
	DefaultPoolSize    = 16
	DefaultDestination = "exclude"
	DefaultLogLevel    = "info"
)

// Config represents the application configuration
type Config struct {
	DefaultSeed        string `toml:"default_seed"`
	PoolSize           int    `toml:"pool_size"`
	DefaultDestination string `toml:"default_destination"`
	LogLevel           string `toml:"log_level"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		DefaultSeed:        DefaultSeed,
		PoolSize:           DefaultPoolSize,
		DefaultDestination: DefaultDestination,
		LogLevel:           DefaultLogLevel,
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetSeedLibraryPath returns the directory holding seed files
func GetSeedLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), "epidemic", "seeds")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "epidemic", "config.toml")
}

// LoadConfig loads the config file, creating it with defaults if missing
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	config := Default()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	if config.PoolSize <= 0 {
		config.PoolSize = DefaultPoolSize
	}
	if config.DefaultDestination == "" {
		config.DefaultDestination = DefaultDestination
	}

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	config := Default()
	if err := writeConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func writeConfig(config *Config) error {
	configPath := GetConfigFilePath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// GetSeedPath returns the path to a seed file, either in the seed library or a
// relative path
func GetSeedPath(seedName string) (string, error) {
	libraryPath := GetSeedLibraryPath()
	for _, candidate := range []string{
		filepath.Join(libraryPath, seedName),
		filepath.Join(libraryPath, seedName+".toml"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if info, err := os.Stat(seedName); err == nil && !info.IsDir() {
		return seedName, nil
	}

	return "", fmt.Errorf("seed not found: %s", seedName)
}

// GetDefaultSeed returns the default seed name from config
func GetDefaultSeed() (string, error) {
	config, err := LoadConfig()
	if err != nil {
		return "", err
	}

	return config.DefaultSeed, nil
}

// SetDefaultSeed sets the default seed in the config
func SetDefaultSeed(seedName string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}

	config.DefaultSeed = seedName
	return writeConfig(config)
}

// SlogLevel maps the log_level setting to a slog level
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
}
