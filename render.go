package html2png

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2png/internal/process"
)

// Render defaults.
const (
	DefaultRenderTimeout = 60 * time.Second
	DefaultIdleTimeout   = 500 * time.Millisecond
)

// Renderer writes the PDF for one document.
type Renderer interface {
	RenderPDF(ctx context.Context, doc SourceDocument, layout PageLayout) error
}

// Engine is the rendering resource shared by every document of a run.
type Engine interface {
	Renderer
	Close() error
}

// EngineFactory starts an Engine. The driver only calls it once it knows
// there is at least one document to render.
type EngineFactory func(ctx context.Context) (Engine, error)

// pdfPrinter prints a URL to PDF inside a context isolated from other
// documents, streaming the result to w.
type pdfPrinter interface {
	PrintToPDF(ctx context.Context, url string, req *proto.PagePrintToPDF, w io.Writer) error
}

// Compile-time interface checks.
var (
	_ Engine     = (*RodEngine)(nil)
	_ pdfPrinter = (*RodEngine)(nil)
	_ Renderer   = (*renderStage)(nil)
)

// renderStage writes the PDF and holds control until it is visible on disk.
type renderStage struct {
	printer pdfPrinter
	poller  Poller
}

// RenderPDF prints doc to doc.PDFPath. It returns only once the file is
// observable, or fails with ErrPDFNotFound.
func (s *renderStage) RenderPDF(ctx context.Context, doc SourceDocument, layout PageLayout) error {
	req, err := layout.printOptions()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	// #nosec G304 -- derived from a discovered document path
	f, err := os.OpenFile(doc.PDFPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("%w: %w: %v", ErrRender, ErrWritePDF, err)
	}

	printErr := s.printer.PrintToPDF(ctx, doc.URL(), req, f)
	closeErr := f.Close()
	if printErr != nil {
		_ = os.Remove(doc.PDFPath)
		return fmt.Errorf("%w: %w", ErrRender, printErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %w: %v", ErrRender, ErrWritePDF, closeErr)
	}

	if err := WaitForFile(ctx, s.poller, doc.PDFPath); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// File permission for generated PDFs.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// EngineOptions configures the headless Chrome engine.
type EngineOptions struct {
	Timeout time.Duration // page load and print budget per document
	Idle    time.Duration // idle window awaited after load
	Poller  Poller        // PDF visibility polling
	Logger  *slog.Logger
}

// RodEngine renders documents with one headless Chrome instance and one
// incognito browser context per document.
// Rod downloads Chromium on first run if none is found.
type RodEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     EngineOptions
	stage    *renderStage
}

// RodEngineFactory returns an EngineFactory launching Chrome with opts.
func RodEngineFactory(opts EngineOptions) EngineFactory {
	return func(ctx context.Context) (Engine, error) {
		return NewRodEngine(ctx, opts)
	}
}

// NewRodEngine launches Chrome and connects to it.
// ROD_BROWSER_BIN selects the binary; ROD_NO_SANDBOX=1 or CI=true disable
// the sandbox.
func NewRodEngine(ctx context.Context, opts EngineOptions) (*RodEngine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRenderTimeout
	}
	if opts.Poller.Attempts == 0 {
		opts.Poller = DefaultPoller()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		killLauncher(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e := &RodEngine{browser: browser, launcher: l, opts: opts}
	e.stage = &renderStage{printer: e, poller: opts.Poller}
	opts.Logger.Debug("browser started", "pid", l.PID())
	return e, nil
}

// RenderPDF renders doc to its PDF path with layout.
func (e *RodEngine) RenderPDF(ctx context.Context, doc SourceDocument, layout PageLayout) error {
	return e.stage.RenderPDF(ctx, doc, layout)
}

// PrintToPDF loads url in a fresh incognito context, waits for the page to
// settle and streams the printed PDF to w. The context is disposed on return.
func (e *RodEngine) PrintToPDF(ctx context.Context, url string, req *proto.PagePrintToPDF, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	incognito, err := e.browser.Incognito()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(e.opts.Timeout)
	defer p.CancelTimeout()

	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPageLoad, filepath.Base(url), err)
	}
	if e.opts.Idle > 0 {
		if err := p.WaitIdle(e.opts.Idle); err != nil {
			return fmt.Errorf("%w: waiting for idle: %v", ErrPageLoad, err)
		}
	}

	reader, err := p.PDF(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	if _, err := io.Copy(w, reader); err != nil {
		return fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return nil
}

// Close shuts the browser down and kills anything it left behind.
func (e *RodEngine) Close() error {
	if e.browser == nil {
		return nil
	}
	err := e.browser.Close()
	e.browser = nil
	killLauncher(e.launcher)
	return err
}

// killLauncher terminates the Chrome process tree started by l.
func killLauncher(l *launcher.Launcher) {
	if l == nil {
		return
	}
	process.KillProcessGroup(l.PID())
	l.Kill()
	l.Cleanup()
}
