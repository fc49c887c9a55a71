package main

import (
	"log/slog"
	"os"
	"strings"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string // HTML2PNG_CONFIG: config file name or path
	Root       string // HTML2PNG_ROOT: project root
}

// knownEnvVars lists valid HTML2PNG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2PNG_CONFIG": true,
	"HTML2PNG_ROOT":   true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("HTML2PNG_CONFIG"),
		Root:       os.Getenv("HTML2PNG_ROOT"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2PNG_* variables.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "HTML2PNG_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				logger.Warn("unknown environment variable " + name + " (typo?)")
			}
		}
	}
}
