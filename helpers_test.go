package html2png

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2png/internal/console"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the watcher's goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestLogger returns a debug-level logger writing plain tagged lines.
func newTestLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return console.New(buf, &console.Options{Level: slog.LevelDebug, NoColor: true}), buf
}

// countLines counts log lines starting with prefix.
func countLines(output, prefix string) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Sleepers
// ---------------------------------------------------------------------------

// recordingSleeper returns immediately and records requested durations.
type recordingSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

// borderedImage is a white w x h image with a black rectangle at inner.
func borderedImage(w, h int, inner image.Rectangle) *image.NRGBA {
	img := imaging.New(w, h, color.White)
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

// writePage saves a 40x30 page with a 10x8 black block inset from the edges.
func writePage(path string) error {
	return imaging.Save(borderedImage(40, 30, image.Rect(5, 6, 15, 14)), path)
}

// tempArtifacts lists crop temp files left in dir.
func tempArtifacts(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var out []string
	for _, e := range entries {
		if strings.Contains(e.Name(), "_temp_") || strings.HasSuffix(e.Name(), ".tmp.png") {
			out = append(out, e.Name())
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Fake CommandRunner
// ---------------------------------------------------------------------------

// fakeRunner fails call i with errs[i] when non-nil; on success it writes
// pages PNG files the way pdftocairo names them.
type fakeRunner struct {
	mu    sync.Mutex
	errs  []error
	pages int
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.calls)
	f.calls = append(f.calls, append([]string{name}, args...))
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}

	out := args[len(args)-1]
	for p := 1; p <= f.pages; p++ {
		if err := writePage(fmt.Sprintf("%s-%d.png", out, p)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func transientErr() error {
	return &CommandError{Name: "pdftocairo", Stderr: "I/O Error: Couldn't open file: Error opening", Err: fmt.Errorf("exit status 1")}
}

func permanentErr() error {
	return &CommandError{Name: "pdftocairo", Stderr: "Syntax Error: bad PDF", Err: fmt.Errorf("exit status 99")}
}

// ---------------------------------------------------------------------------
// Fake Engine
// ---------------------------------------------------------------------------

// fakeEngine writes a stub PDF for each document unless its base name is in
// failFor or panicFor.
type fakeEngine struct {
	mu       sync.Mutex
	failFor  map[string]error
	panicFor map[string]bool
	rendered []string
	closed   int
}

var _ Engine = (*fakeEngine)(nil)

func (e *fakeEngine) RenderPDF(_ context.Context, doc SourceDocument, _ PageLayout) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := filepath.Base(doc.Path)
	if e.panicFor[name] {
		panic("renderer exploded")
	}
	if err := e.failFor[name]; err != nil {
		return err
	}
	e.rendered = append(e.rendered, name)
	return os.WriteFile(doc.PDFPath, []byte("%PDF-1.4 stub"), 0o644)
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return nil
}

// factoryFor returns an EngineFactory handing out e and counting starts.
func factoryFor(e *fakeEngine, starts *int) EngineFactory {
	return func(context.Context) (Engine, error) {
		*starts++
		return e, nil
	}
}

// ---------------------------------------------------------------------------
// Fake printer
// ---------------------------------------------------------------------------

type fakePrinter struct {
	data   string
	err    error
	remove string // path deleted during printing
	req    *proto.PagePrintToPDF
	url    string
}

func (p *fakePrinter) PrintToPDF(_ context.Context, url string, req *proto.PagePrintToPDF, w io.Writer) error {
	p.req = req
	p.url = url
	if p.err != nil {
		return p.err
	}
	if p.remove != "" {
		_ = os.Remove(p.remove)
	}
	_, err := w.Write([]byte(p.data))
	return err
}

// testProfile is a valid letter profile.
func testProfile(crop bool) ConversionProfile {
	return ConversionProfile{
		Name: "Use-Cases",
		Layout: PageLayout{
			Format:          FormatLetter,
			PrintBackground: true,
			Scale:           0.7,
			Margin:          Margins{Top: "0", Bottom: "0", Left: "0.5in", Right: "0.5in"},
		},
		DPI:  600,
		Crop: crop,
	}
}
