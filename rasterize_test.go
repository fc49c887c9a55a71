package html2png

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// Notes:
// - pdftocairo itself is never invoked; fakeRunner writes the page files.
// - ExecRunner is exercised only for the missing-binary path, which needs no
//   external tool.

func newTestRasterizer(runner CommandRunner) (*Rasterizer, *syncBuffer) {
	logger, buf := newTestLogger()
	r := NewRasterizer()
	r.Runner = runner
	r.Retry.Sleep = noSleep
	r.Logger = logger
	return r, buf
}

// ---------------------------------------------------------------------------
// TestRasterize_RequiresReadyPDF - rasterizer never runs without a PDF
// ---------------------------------------------------------------------------

func TestRasterize_RequiresReadyPDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, pdf string)
	}{
		{name: "missing PDF", setup: func(*testing.T, string) {}},
		{name: "empty PDF", setup: func(t *testing.T, pdf string) { writeFile(t, pdf, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			pdf := filepath.Join(dir, "a.pdf")
			tt.setup(t, pdf)

			runner := &fakeRunner{pages: 1}
			r, _ := newTestRasterizer(runner)

			_, err := r.Rasterize(context.Background(), pdf, filepath.Join(dir, "a.png"), 300)
			if !errors.Is(err, ErrRasterize) || !errors.Is(err, ErrPDFNotFound) {
				t.Errorf("error = %v, want ErrRasterize and ErrPDFNotFound", err)
			}
			if runner.Calls() != 0 {
				t.Errorf("runner called %d times, want 0", runner.Calls())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRasterize_Arguments - pdftocairo command line
// ---------------------------------------------------------------------------

func TestRasterize_Arguments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pdf := filepath.Join(dir, "doc.pdf")
	writeFile(t, pdf, "%PDF")

	runner := &fakeRunner{pages: 2}
	r, buf := newTestRasterizer(runner)

	pages, err := r.Rasterize(context.Background(), pdf, filepath.Join(dir, "doc.png"), 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"pdftocairo", "-png", "-r", "600", pdf, filepath.Join(dir, "doc")}
	if !reflect.DeepEqual(runner.calls[0], want) {
		t.Errorf("command = %v, want %v", runner.calls[0], want)
	}

	wantPages := []string{filepath.Join(dir, "doc-1.png"), filepath.Join(dir, "doc-2.png")}
	if !reflect.DeepEqual(pages, wantPages) {
		t.Errorf("pages = %v, want %v", pages, wantPages)
	}
	if !strings.Contains(buf.String(), "[SUCCESS] Converted doc.pdf → PNG(s) at 600 DPI") {
		t.Errorf("missing success line in:\n%s", buf.String())
	}
}

func TestRasterize_InvalidDPI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pdf := filepath.Join(dir, "a.pdf")
	writeFile(t, pdf, "%PDF")

	runner := &fakeRunner{}
	r, _ := newTestRasterizer(runner)

	_, err := r.Rasterize(context.Background(), pdf, filepath.Join(dir, "a.png"), 5000)
	if !errors.Is(err, ErrInvalidDPI) {
		t.Errorf("error = %v, want ErrInvalidDPI", err)
	}
	if runner.Calls() != 0 {
		t.Errorf("runner called %d times, want 0", runner.Calls())
	}
}

// ---------------------------------------------------------------------------
// TestRasterize_Retry - transient failures and retry warnings
// ---------------------------------------------------------------------------

func TestRasterize_Retry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		errs         []error
		wantErr      bool
		wantCalls    int
		wantWarnings int
	}{
		{
			name:         "two transient failures then success",
			errs:         []error{transientErr(), transientErr()},
			wantCalls:    3,
			wantWarnings: 2,
		},
		{
			name:         "permanent failure",
			errs:         []error{permanentErr()},
			wantErr:      true,
			wantCalls:    1,
			wantWarnings: 0,
		},
		{
			name:         "exhausted",
			errs:         []error{transientErr(), transientErr(), transientErr()},
			wantErr:      true,
			wantCalls:    3,
			wantWarnings: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			pdf := filepath.Join(dir, "a.pdf")
			writeFile(t, pdf, "%PDF")

			runner := &fakeRunner{errs: tt.errs, pages: 1}
			r, buf := newTestRasterizer(runner)

			_, err := r.Rasterize(context.Background(), pdf, filepath.Join(dir, "a.png"), 300)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrRasterize) {
				t.Errorf("error = %v, want ErrRasterize", err)
			}
			if runner.Calls() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", runner.Calls(), tt.wantCalls)
			}
			if got := countLines(buf.String(), "[WARNING] Retry "); got != tt.wantWarnings {
				t.Errorf("retry warnings = %d, want %d\n%s", got, tt.wantWarnings, buf.String())
			}
			if tt.wantWarnings > 0 && !strings.Contains(buf.String(), "Retry 1/3 for a.pdf") {
				t.Errorf("missing first retry line in:\n%s", buf.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestListPages - page file selection and ordering
// ---------------------------------------------------------------------------

func TestListPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{
		"doc-10.png", "doc-2.png", "doc-1.png",
		"doc-1_temp_123-1.png", // crop temp artifact
		"doc-3.tmp.png",        // legacy temp artifact
		"doc-x.png",            // not a page number
		"doc.png",              // no page number
		"doc-2.pdf",            // wrong suffix
		"other-1.png",          // other document
		"doc-copy-1.png",       // longer prefix
	} {
		writeFile(t, filepath.Join(dir, name), "png")
	}

	pages, err := ListPages(dir, "doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "doc-1.png"),
		filepath.Join(dir, "doc-2.png"),
		filepath.Join(dir, "doc-10.png"),
	}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("pages = %v, want %v", pages, want)
	}
}

func TestListPages_MissingDir(t *testing.T) {
	t.Parallel()

	if _, err := ListPages(filepath.Join(t.TempDir(), "nope"), "doc"); err == nil {
		t.Error("expected error for missing directory")
	}
}

// ---------------------------------------------------------------------------
// TestExecRunner - missing binary
// ---------------------------------------------------------------------------

func TestExecRunner_NotFound(t *testing.T) {
	t.Parallel()

	err := ExecRunner{}.Run(context.Background(), "html2png-no-such-binary-xyz", "-v")
	if !errors.Is(err, ErrRasterizerNotFound) {
		t.Errorf("error = %v, want ErrRasterizerNotFound", err)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %T, want *CommandError", err)
	}
	if cmdErr.Name != "html2png-no-such-binary-xyz" {
		t.Errorf("Name = %q", cmdErr.Name)
	}
}
