package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/go-html2png/internal/assets"
	"github.com/alnah/go-html2png/internal/console"
)

// Sentinel errors for dashboard generation.
var (
	ErrScan      = errors.New("failed to scan directory tree")
	ErrEmptyTree = errors.New("no files or directories found")
	ErrTemplate  = errors.New("invalid dashboard template")
	ErrWrite     = errors.New("failed to write dashboard")
)

// Defaults for Generator fields left empty.
const (
	DefaultOutput = "index.html"
	DefaultTitle  = "Project Dashboard"
)

// Page is the data passed to the dashboard template.
type Page struct {
	Title      string
	Categories []Category
}

// Generator writes the dashboard for one root directory.
type Generator struct {
	Root      string
	Output    string // file name inside Root
	Title     string
	Ignore    func(name string) bool
	Templates assets.AssetLoader // embedded template when nil
	Logger    *slog.Logger
}

// Generate scans Root and writes the dashboard, returning its path.
// An empty tree logs a warning, writes nothing and returns ErrEmptyTree.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	output := g.Output
	if output == "" {
		output = DefaultOutput
	}
	title := g.Title
	if title == "" {
		title = DefaultTitle
	}

	logger.Info("Starting tree generation...")

	// The dashboard never lists itself.
	ignore := func(name string) bool {
		return name == output || (g.Ignore != nil && g.Ignore(name))
	}
	tree, err := BuildTree(g.Root, ignore)
	if err != nil {
		return "", err
	}
	if tree.Empty() {
		logger.Warn("No files or directories found!")
		return "", ErrEmptyTree
	}

	tmpl, err := g.template()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := Render(&buf, tmpl, Page{Title: title, Categories: Categories(tree)}); err != nil {
		return "", err
	}

	outPath := filepath.Join(g.Root, output)
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- public index page
		logger.Error(fmt.Sprintf("Error saving %s: %v", outPath, err))
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	logger.Log(ctx, console.LevelSuccess, "Generated: "+outPath)
	logger.Info("Open " + outPath + " in your browser")
	return outPath, nil
}

func (g *Generator) template() (*template.Template, error) {
	loader := g.Templates
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	src, err := loader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, err
	}
	return Parse(src)
}

// Parse compiles a dashboard template.
func Parse(src string) (*template.Template, error) {
	tmpl, err := template.New(assets.DefaultTemplateName).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return tmpl, nil
}

// Render executes tmpl with page.
func Render(w io.Writer, tmpl *template.Template, page Page) error {
	if err := tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return nil
}
