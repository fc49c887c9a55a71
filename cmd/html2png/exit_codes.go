package main

import (
	"errors"
	"os"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
	"github.com/alnah/go-html2png/internal/dashboard"
)

// Exit codes for html2png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful run
	ExitGeneral    = 1 // General error or invalid folder choice
	ExitUsage      = 2 // Invalid flags, config, or validation
	ExitIO         = 3 // File not found, permission denied
	ExitBrowser    = 4 // Browser/Chrome errors
	ExitRasterizer = 5 // pdftocairo missing or failing
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Invalid selection (exit 1)
	if errors.Is(err, html2png.ErrInvalidSelection) {
		return ExitGeneral
	}

	// Browser errors (exit 4)
	if errors.Is(err, html2png.ErrBrowserConnect) ||
		errors.Is(err, html2png.ErrPageCreate) ||
		errors.Is(err, html2png.ErrPageLoad) ||
		errors.Is(err, html2png.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Rasterizer errors (exit 5)
	if errors.Is(err, html2png.ErrRasterizerNotFound) ||
		errors.Is(err, html2png.ErrRasterize) {
		return ExitRasterizer
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, html2png.ErrProfileNotFound) ||
		errors.Is(err, html2png.ErrInvalidFormat) ||
		errors.Is(err, html2png.ErrInvalidScale) ||
		errors.Is(err, html2png.ErrInvalidMargin) ||
		errors.Is(err, html2png.ErrInvalidDPI) ||
		errors.Is(err, dashboard.ErrTemplate) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, html2png.ErrDiscovery) ||
		errors.Is(err, html2png.ErrWritePDF) ||
		errors.Is(err, dashboard.ErrScan) ||
		errors.Is(err, dashboard.ErrWrite) {
		return ExitIO
	}

	return ExitGeneral
}
