package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap/pkg/logging"
)

// NewLogger creates the application logger.
// Log level precedence (highest to lowest):
//  1. --log-level flag or LOG_LEVEL
//  2. -q/--quiet (warn), winning over -v/--verbose (debug)
//  3. DEBUG set in the environment (debug)
//  4. info
func NewLogger(config *Config) zerolog.Logger {
	return logging.NewLoggerFromConfig(loggingConfig(config))
}

func loggingConfig(config *Config) *logging.Config {
	level := determineLogLevel(config)
	return &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		AddCaller: level == "debug" || level == "trace",
	}
}

func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		level := logging.ParseLevel(config.LogLevel)
		if level == zerolog.InfoLevel && !strings.EqualFold(config.LogLevel, "info") {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using \"info\"\n", config.LogLevel)
		}
		return level.String()
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if config.Quiet {
		return "warn"
	}
	if config.Verbose || os.Getenv("DEBUG") != "" {
		return "debug"
	}
	return "info"
}
