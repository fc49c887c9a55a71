package main

import (
	"context"
	"errors"
	"strings"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/hints"
)

// poller builds the PDF handoff poller from the wait config.
func (a *app) poller() html2png.Poller {
	p := html2png.DefaultPoller()
	if a.cfg.Wait.Attempts > 0 {
		p.Attempts = a.cfg.Wait.Attempts
	}
	if a.cfg.Wait.Interval != "" {
		p.Interval = a.cfg.Wait.IntervalDuration()
	}
	return p
}

// engines returns the injected engine factory or headless Chrome.
func (a *app) engines() html2png.EngineFactory {
	if a.env.Engines != nil {
		return a.env.Engines
	}
	return html2png.RodEngineFactory(html2png.EngineOptions{
		Timeout: a.cfg.Render.TimeoutDuration(),
		Idle:    a.cfg.Render.IdleDuration(),
		Poller:  a.poller(),
		Logger:  a.logger,
	})
}

// rasterizer builds the pdftocairo stage from the rasterizer config.
func (a *app) rasterizer() *html2png.Rasterizer {
	rc := a.cfg.Rasterizer
	r := html2png.NewRasterizer()
	r.Logger = a.logger
	if rc.Binary != "" {
		r.Binary = rc.Binary
	}
	if a.env.Runner != nil {
		r.Runner = a.env.Runner
	}
	if rc.MaxAttempts > 0 {
		r.Retry.MaxAttempts = rc.MaxAttempts
	}
	if rc.Backoff != "" {
		r.Retry.Backoff = html2png.LinearBackoff(rc.BackoffStep())
	}
	if rc.TransientErrors != nil {
		r.Retry.IsTransient = html2png.TransientMatcher(rc.TransientErrors...)
	}
	return r
}

// cropper builds the crop stage from the crop and wait config.
func (a *app) cropper() *html2png.Cropper {
	c := html2png.NewCropper()
	c.Logger = a.logger
	c.Tolerance = a.cfg.Crop.ToleranceValue(c.Tolerance)
	if a.cfg.Wait.Settle != "" {
		c.Settle = a.cfg.Wait.SettleDuration()
	}
	return c
}

// newDriver wires the pipeline stages for one profile.
func (a *app) newDriver(p html2png.ConversionProfile) *html2png.Driver {
	a.logger.Debug("using profile " + describe(p))
	return html2png.NewDriver(p, a.engines(), a.rasterizer(), a.cropper(),
		html2png.WithLogger(a.logger),
		html2png.WithClock(a.env.Now),
	)
}

// runError turns a finished run into the command's error. Failures of
// single documents are already logged and leave the exit status at 0;
// a browser that never started or a missing rasterizer fail the command.
func (a *app) runError(ctx context.Context, summary html2png.RunSummary) error {
	timedOut := false
	for _, r := range summary.Results {
		switch {
		case errors.Is(r.Err, html2png.ErrBrowserConnect):
			return withHint(r.Err, hints.ForBrowserConnect())
		case errors.Is(r.Err, html2png.ErrRasterizerNotFound):
			return withHint(r.Err, hints.ForRasterizerNotFound(a.cfg.Rasterizer.Binary))
		case errors.Is(r.Err, context.DeadlineExceeded):
			timedOut = true
		}
	}
	if timedOut {
		a.logger.Info(strings.TrimPrefix(hints.ForTimeout(), "\n  "))
	}
	return ctx.Err()
}
