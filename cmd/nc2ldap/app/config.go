package app

import (
	"os"

	"github.com/agentstation/nc2ldap/internal/config"
)

// Config holds the command-line configuration. The sync settings are loaded
// after flag parsing so that --config applies to them.
type Config struct {
	// Global flags
	ConfigFile string
	Verbose    bool
	Quiet      bool
	Format     string
	LogLevel   string

	// Logging configuration from the environment
	LogFormat string
	LogOutput string

	// Sync holds the connection and schedule settings.
	Sync *config.Config
}

// LoadConfig loads .env files and the logging environment.
func LoadConfig() *Config {
	config.LoadEnvFiles()

	return &Config{
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
}

// LoadSync reads the sync settings from the config file and environment.
func (c *Config) LoadSync() error {
	cfg, err := config.Load(config.New(), c.ConfigFile)
	if err != nil {
		return err
	}
	c.Sync = cfg
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
