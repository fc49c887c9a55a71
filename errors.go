package html2png

import "errors"

// Sentinel errors for library operations.
var (
	// Discovery errors abort the run before any document is processed.
	ErrDiscovery        = errors.New("document discovery failed")
	ErrNoFolders        = errors.New("no configured folders found")
	ErrInvalidSelection = errors.New("invalid folder selection")

	// Render stage errors. Per-document, never abort the batch.
	ErrRender         = errors.New("render failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrWritePDF       = errors.New("failed to write PDF file")
	ErrPDFNotFound    = errors.New("file not found after waiting")

	// Rasterize stage errors.
	ErrRasterize          = errors.New("PDF to image conversion failed")
	ErrRasterizerNotFound = errors.New("rasterizer binary not found")

	// Crop errors are reported as warnings and never escape the stage.
	ErrCrop = errors.New("cropping failed")

	// ErrPanic reports a recovered panic while processing one document.
	ErrPanic = errors.New("document processing panicked")

	// Profile validation errors.
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidFormat   = errors.New("invalid paper format")
	ErrInvalidScale    = errors.New("invalid scale")
	ErrInvalidMargin   = errors.New("invalid margin")
	ErrInvalidDPI      = errors.New("invalid DPI")
)
