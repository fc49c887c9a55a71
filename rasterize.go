package html2png

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-html2png/internal/fileutil"
	"github.com/alnah/go-html2png/internal/process"
)

// DefaultRasterizerBinary is the poppler tool used to split a PDF into PNGs.
const DefaultRasterizerBinary = "pdftocairo"

// CommandRunner runs an external program to completion.
// Failures are reported as *CommandError so stderr stays inspectable.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// CommandError describes a failed external command.
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, msg)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec in their own process group.
// Cancelling ctx kills the whole group.
type ExecRunner struct{}

// Compile-time interface checks.
var (
	_ CommandRunner = ExecRunner{}
	_ PageRasterizer = (*Rasterizer)(nil)
)

// Run executes name with args and captures stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary comes from config
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w: %v", ErrRasterizerNotFound, err)
		}
		return &CommandError{Name: name, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// PageRasterizer turns a PDF into one PNG per page.
type PageRasterizer interface {
	Rasterize(ctx context.Context, pdfPath, basePath string, dpi int) ([]string, error)
}

// Rasterizer invokes pdftocairo with a bounded retry on transient failures.
type Rasterizer struct {
	Binary string
	Runner CommandRunner
	Retry  RetryPolicy
	Logger *slog.Logger
}

// NewRasterizer returns a Rasterizer using pdftocairo, os/exec and the
// default retry policy.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		Binary: DefaultRasterizerBinary,
		Runner: ExecRunner{},
		Retry:  DefaultRetryPolicy(),
		Logger: slog.Default(),
	}
}

// Rasterize writes <dir>/<prefix>-N.png for every page of pdfPath, where
// dir and prefix come from basePath, and returns the page files in page
// order. The PDF must be present and non-empty.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, basePath string, dpi int) ([]string, error) {
	if !fileutil.IsFileReady(pdfPath) {
		return nil, fmt.Errorf("%w: %w: %s", ErrRasterize, ErrPDFNotFound, pdfPath)
	}
	if dpi < MinDPI || dpi > MaxDPI {
		return nil, fmt.Errorf("%w: %w: %d", ErrRasterize, ErrInvalidDPI, dpi)
	}

	outDir := filepath.Dir(basePath)
	prefix := strings.TrimSuffix(filepath.Base(basePath), pngSuffix)
	args := []string{"-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(outDir, prefix)}

	binary := r.Binary
	if binary == "" {
		binary = DefaultRasterizerBinary
	}
	runner := r.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := r.logger()
	name := filepath.Base(pdfPath)
	attempts := r.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	err := r.Retry.Do(ctx, func(ctx context.Context) error {
		return runner.Run(ctx, binary, args...)
	}, func(retry int, err error) {
		logger.Warn(fmt.Sprintf("Retry %d/%d for %s", retry, attempts, name), "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRasterize, name, err)
	}

	pages, err := ListPages(outDir, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: listing pages: %w", ErrRasterize, err)
	}
	logger.Log(ctx, LevelSuccess, fmt.Sprintf("Converted %s → PNG(s) at %d DPI", name, dpi), "pages", len(pages))
	return pages, nil
}

func (r *Rasterizer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// ListPages returns dir/prefix-N.png files sorted by page number.
// Zero-padded numbers (prefix-07.png) are accepted; temp artifacts are not.
func ListPages(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type page struct {
		path string
		num  int
	}
	var pages []page
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if n, ok := pageNumber(e.Name(), prefix); ok {
			pages = append(pages, page{path: filepath.Join(dir, e.Name()), num: n})
		}
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}

// pageNumber parses "<prefix>-<N>.png".
func pageNumber(name, prefix string) (int, bool) {
	if fileutil.IsTempArtifact(name) {
		return 0, false
	}
	rest, ok := strings.CutPrefix(name, prefix+"-")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, pngSuffix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || strings.ContainsAny(digits, "+-") {
		return 0, false
	}
	return n, true
}
