// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// GOOS is the platform used to pick install commands. Tests override it.
var GOOS = runtime.GOOS

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// Suggest ROD_NO_SANDBOX for container/CI environments
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	// Suggest ROD_BROWSER_BIN if not set
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForRasterizerNotFound returns an install hint for the pdftocairo binary.
func ForRasterizerNotFound(binary string) string {
	if binary != "" && binary != "pdftocairo" {
		return format("check that " + binary + " is installed and on PATH")
	}
	switch GOOS {
	case "darwin":
		return format("install poppler: brew install poppler")
	case "windows":
		return format("install poppler and add its bin directory to PATH")
	default:
		return format("install poppler-utils (e.g. apt install poppler-utils)")
	}
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("for heavy pages, raise render.timeout in the config")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in <UserConfigDir>/go-html2png/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-html2png") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForProfiles lists the configured folder categories.
func ForProfiles(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("configured folders: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
