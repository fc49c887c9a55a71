package html2png

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// CleanupFunc removes leftover temp artifacts for prefix in dir and returns
// how many were removed.
type CleanupFunc func(dir, prefix string, logger *slog.Logger) int

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used for progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithCleanup replaces the temp artifact cleanup step.
func WithCleanup(fn CleanupFunc) Option {
	return func(d *Driver) {
		if fn != nil {
			d.cleanup = fn
		}
	}
}

// WithClock sets the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// Driver runs documents through render, rasterize, crop and cleanup, one
// at a time, with one engine for the whole run.
type Driver struct {
	profile    ConversionProfile
	engines    EngineFactory
	rasterizer PageRasterizer
	cropper    PageCropper
	cleanup    CleanupFunc
	logger     *slog.Logger
	now        func() time.Time
}

// NewDriver returns a Driver converting documents with profile.
// cropper may be nil when profile.Crop is false.
func NewDriver(profile ConversionProfile, engines EngineFactory, rasterizer PageRasterizer, cropper PageCropper, opts ...Option) *Driver {
	d := &Driver{
		profile:    profile,
		engines:    engines,
		rasterizer: rasterizer,
		cropper:    cropper,
		cleanup:    CleanupTempArtifacts,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Profile returns the profile the driver converts with.
func (d *Driver) Profile() ConversionProfile {
	return d.profile
}

// Run processes docs in order and returns one result per document.
// No engine is started when docs is empty. An engine start failure or a
// cancelled ctx marks the affected documents failed without processing them.
func (d *Driver) Run(ctx context.Context, docs []SourceDocument) RunSummary {
	if len(docs) == 0 {
		d.logger.Warn("No HTML files found.")
		return RunSummary{}
	}

	session, err := d.Start(ctx)
	if err != nil {
		d.logger.Error("Failed to start browser", "error", err)
		return summarize(failAll(docs, err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			d.logger.Debug("browser close failed", "error", err)
		}
	}()

	results := make([]ConversionResult, 0, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			results = append(results, failAll(docs[i:], err)...)
			break
		}
		results = append(results, session.Process(ctx, doc))
	}

	summary := summarize(results)
	d.logger.Log(ctx, LevelSuccess, "All conversions done!",
		"succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary
}

// Start acquires the engine for a run of documents.
func (d *Driver) Start(ctx context.Context) (*Session, error) {
	engine, err := d.engines(ctx)
	if err != nil {
		if !errors.Is(err, ErrBrowserConnect) {
			err = fmt.Errorf("%w: %w", ErrBrowserConnect, err)
		}
		return nil, err
	}
	return &Session{driver: d, engine: engine}, nil
}

// Session is a started Driver holding its engine. It is not safe for
// concurrent use.
type Session struct {
	driver *Driver
	engine Engine
}

// Process converts one document. Failures and panics are contained in the
// returned result and logged as warnings.
func (s *Session) Process(ctx context.Context, doc SourceDocument) ConversionResult {
	res := s.driver.safeProcess(ctx, s.engine, doc)
	if res.Err != nil {
		s.driver.logger.Warn(fmt.Sprintf("Failed to process %s: %v", doc.Path, res.Err))
	}
	return res
}

// Close releases the engine.
func (s *Session) Close() error {
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}

func (d *Driver) safeProcess(ctx context.Context, r Renderer, doc SourceDocument) (res ConversionResult) {
	start := d.now()
	defer func() {
		if p := recover(); p != nil {
			res = ConversionResult{
				Source:   doc,
				Stage:    StageFailed,
				Reached:  res.Reached,
				Err:      fmt.Errorf("%w: %v", ErrPanic, p),
				Duration: d.now().Sub(start),
			}
		}
	}()
	return d.ProcessDocument(ctx, r, doc)
}

// ProcessDocument runs the pipeline for one document with renderer r.
// The result's Reached field records the last stage completed.
func (d *Driver) ProcessDocument(ctx context.Context, r Renderer, doc SourceDocument) ConversionResult {
	start := d.now()
	res := ConversionResult{Source: doc, Stage: StageDiscovered, Reached: StageDiscovered}

	advance := func(s Stage) {
		res.Stage = s
		res.Reached = s
	}
	fail := func(err error) ConversionResult {
		res.Stage = StageFailed
		res.Err = err
		res.Duration = d.now().Sub(start)
		return res
	}

	htmlName := filepath.Base(doc.Path)
	pdfName := filepath.Base(doc.PDFPath)
	d.logger.Info("HTML → " + htmlName)
	d.logger.Info("PDF → " + pdfName)

	if err := r.RenderPDF(ctx, doc, d.profile.Layout); err != nil {
		return fail(err)
	}
	d.logger.Log(ctx, LevelSuccess, fmt.Sprintf("HTML to PDF: %s → %s", htmlName, pdfName))
	advance(StageRendered)

	d.logger.Info(fmt.Sprintf("PNG → %s (crop: %t)", filepath.Base(doc.PNGBasePath), d.profile.Crop))
	pages, err := d.rasterizer.Rasterize(ctx, doc.PDFPath, doc.PNGBasePath, d.profile.DPI)
	if err != nil {
		return fail(err)
	}
	res.Pages = pages
	advance(StageRasterized)

	if !d.profile.Crop || d.cropper == nil {
		advance(StageCropSkipped)
	} else {
		report, err := d.cropper.CropPages(ctx, pages)
		res.Crop = report
		d.cleanup(doc.Dir(), doc.Prefix(), d.logger)
		if err != nil {
			return fail(err)
		}
		advance(StageCropped)
		advance(StageCleanedUp)
	}

	advance(StageDone)
	res.Duration = d.now().Sub(start)
	return res
}

// failAll marks docs failed with err without processing them.
func failAll(docs []SourceDocument, err error) []ConversionResult {
	results := make([]ConversionResult, len(docs))
	for i, doc := range docs {
		results[i] = ConversionResult{Source: doc, Stage: StageFailed, Reached: StageDiscovered, Err: err}
	}
	return results
}
