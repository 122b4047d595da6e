// Package config provides engine configuration from environment variables
// and .env files. There is no command line: the engine is embedded in a host
// process, so the host's environment is the only outer surface.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the engine configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Data       DataConfig
	Engagement EngagementConfig
	Session    SessionConfig
	Mix        MixConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds engine state storage configuration.
type DataConfig struct {
	// BasePath is the directory for the state database and, by default,
	// the engagement file.
	BasePath string
}

// EngagementConfig holds engagement file configuration.
type EngagementConfig struct {
	// Path of the engagement JSON file (default: {data}/song_scores.json).
	Path string
}

// SessionConfig holds session tracking configuration.
type SessionConfig struct {
	// MinListen is the minimum creditable session length (default: 5s).
	MinListen time.Duration
}

// MixConfig holds mix generation configuration.
type MixConfig struct {
	DailyLimit int // Daily Mix size (default: 30)
	YourLimit  int // Your Mix size (default: 60)
}

// Load builds configuration with precedence:
// 1. Environment variables.
// 2. .env file (path from TUNEMIX_ENV_FILE, default ".env").
// 3. Default values.
func Load() (*Config, error) {
	// Load .env file if it exists (silently ignore if not found).
	envFile := os.Getenv("TUNEMIX_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue("ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue("LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue("DATA_PATH", ""),
		},
		Engagement: EngagementConfig{
			Path: getConfigValue("ENGAGEMENT_FILE", ""),
		},
		Mix: MixConfig{
			DailyLimit: getIntConfigValue("DAILY_MIX_LIMIT", 30),
			YourLimit:  getIntConfigValue("YOUR_MIX_LIMIT", 60),
		},
	}

	minListenStr := getConfigValue("MIN_SESSION_LISTEN", "5s")
	minListen, err := time.ParseDuration(minListenStr)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum session listen %q: %w", minListenStr, err)
	}
	cfg.Session.MinListen = minListen

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandEngagementPath(); err != nil {
		return nil, fmt.Errorf("invalid engagement file path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Mix.DailyLimit <= 0 || c.Mix.YourLimit <= 0 {
		return errors.New("mix limits must be positive")
	}

	if c.Session.MinListen < 0 {
		return errors.New("minimum session listen cannot be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "TuneMix", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandEngagementPath expands ~ and makes the path absolute.
// Defaults to {data}/song_scores.json if not specified.
func (c *Config) expandEngagementPath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "song_scores.json")

	expanded, err := expandPath(c.Engagement.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Engagement.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from env var or default.
func getConfigValue(envKey, defaultValue string) string {
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from env var or default.
func getIntConfigValue(envKey string, defaultValue int) int {
	strValue := getConfigValue(envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
