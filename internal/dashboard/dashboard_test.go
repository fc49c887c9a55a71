package dashboard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-html2png/internal/assets"
	"github.com/alnah/go-html2png/internal/console"
)

// Notes:
// - Trees are built on disk under t.TempDir(); file contents do not matter.

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

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("setup: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
}

func ignoreNames(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func projectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t, root,
		"README.md",
		".hidden",
		"index.html",
		"empty/",
		"node_modules/pkg/index.js",
		"Use-Cases/notes.txt",
		"Use-Cases/login/login.html",
		"Use-Cases/login/login.pdf",
		"Use-Cases/login/login-1.png",
		"Use-Cases/login/login-2.png",
		"Use-Cases/sign_up/sign_up.html",
		"Wireframes/home/home.pdf",
	)
	return root
}

// ---------------------------------------------------------------------------
// TestBuildTree - scanning and pruning
// ---------------------------------------------------------------------------

func TestBuildTree(t *testing.T) {
	t.Parallel()

	root := projectTree(t)
	tree, err := BuildTree(root, ignoreNames("node_modules", "index.html"))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	if !reflect.DeepEqual(tree.Files, []string{"README.md"}) {
		t.Errorf("root files = %v, want [README.md]", tree.Files)
	}
	if len(tree.Dirs) != 2 || tree.Dirs["Use-Cases"] == nil || tree.Dirs["Wireframes"] == nil {
		t.Errorf("root dirs = %v, want Use-Cases and Wireframes", tree.Dirs)
	}

	login := tree.Dirs["Use-Cases"].Dirs["login"]
	want := []string{"login-1.png", "login-2.png", "login.html", "login.pdf"}
	if !reflect.DeepEqual(login.Files, want) {
		t.Errorf("login files = %v, want %v", login.Files, want)
	}
}

func TestBuildTree_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := BuildTree(filepath.Join(t.TempDir(), "nope"), nil)
	if !errors.Is(err, ErrScan) {
		t.Errorf("error = %v, want ErrScan", err)
	}
}

// ---------------------------------------------------------------------------
// TestCategories - flattening and ordering
// ---------------------------------------------------------------------------

func TestCategories(t *testing.T) {
	t.Parallel()

	tree, err := BuildTree(projectTree(t), ignoreNames("node_modules", "index.html"))
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	want := []Category{
		{Title: "Root", Elements: []Element{
			{Label: "README.md", Links: []Link{{Label: "View", Href: "README.md"}}},
		}},
		{Title: "Use Cases", Elements: []Element{
			{Label: "login", Links: []Link{
				{Label: "PNG", Href: "Use-Cases/login/login-1.png"},
				{Label: "PNG2", Href: "Use-Cases/login/login-2.png"},
				{Label: "HTML", Href: "Use-Cases/login/login.html"},
				{Label: "PDF", Href: "Use-Cases/login/login.pdf"},
			}},
			{Label: "sign up", Links: []Link{{Label: "HTML", Href: "Use-Cases/sign_up/sign_up.html"}}},
			{Label: "notes.txt", Links: []Link{{Label: "View", Href: "Use-Cases/notes.txt"}}},
		}},
		{Title: "Wireframes", Elements: []Element{
			{Label: "home", Links: []Link{{Label: "PDF", Href: "Wireframes/home/home.pdf"}}},
		}},
	}

	if got := Categories(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestCategories_OrderedByElementCount(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root,
		"A/x/x.pdf",
		"B/y/y.pdf",
		"B/z/z.pdf",
		"C/deep/w/w.pdf",
		"C/deep/v/v.pdf",
		"C/deep/u/u.pdf",
	)
	tree, err := BuildTree(root, nil)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	var titles []string
	for _, c := range Categories(tree) {
		titles = append(titles, c.Title)
	}
	want := []string{"C/deep", "B", "A"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestCategories_Empty(t *testing.T) {
	t.Parallel()

	if got := Categories(&Node{}); got != nil {
		t.Errorf("Categories(empty) = %v, want nil", got)
	}
}

// ---------------------------------------------------------------------------
// TestGenerator - end to end
// ---------------------------------------------------------------------------

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	root := projectTree(t)
	buf := &syncBuffer{}
	g := &Generator{
		Root:   root,
		Ignore: ignoreNames("node_modules"),
		Logger: console.New(buf, &console.Options{NoColor: true}),
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != filepath.Join(root, "index.html") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	html := string(data)
	for _, want := range []string{
		"<title>Project Dashboard</title>",
		"<h2>Root</h2>",
		"<h2>Use Cases</h2>",
		`<a class="btn" href="Use-Cases/login/login.pdf" target="_blank">PDF</a>`,
		`>PNG2</a>`,
		`<span>sign up</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(html, "node_modules") || strings.Contains(html, ".hidden") {
		t.Error("dashboard lists ignored entries")
	}
	if strings.Index(html, "<h2>Root</h2>") > strings.Index(html, "<h2>Use Cases</h2>") {
		t.Error("Root card is not first")
	}
	if !strings.Contains(buf.String(), "[SUCCESS] Generated: "+out) {
		t.Errorf("missing success line in:\n%s", buf.String())
	}
}

func TestGenerator_EmptyTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root, ".git/config", "empty/")
	buf := &syncBuffer{}
	g := &Generator{Root: root, Logger: console.New(buf, &console.Options{NoColor: true})}

	if _, err := g.Generate(context.Background()); !errors.Is(err, ErrEmptyTree) {
		t.Fatalf("error = %v, want ErrEmptyTree", err)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultOutput)); !os.IsNotExist(err) {
		t.Error("dashboard written for empty tree")
	}
	if !strings.Contains(buf.String(), "[WARNING] No files or directories found!") {
		t.Errorf("missing warning in:\n%s", buf.String())
	}
}

func TestGenerator_CustomTemplate(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	touch(t, base, "templates/")
	tmpl := `{{.Title}}|{{range .Categories}}{{.Title}};{{end}}`
	if err := os.WriteFile(filepath.Join(base, "templates", "dashboard.html"), []byte(tmpl), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	resolver, err := assets.NewAssetResolver(base)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	root := t.TempDir()
	touch(t, root, "a.html", "Docs/x/x.pdf")
	g := &Generator{
		Root:      root,
		Output:    "tree.html",
		Title:     "Specs",
		Templates: resolver,
		Logger:    console.New(&syncBuffer{}, nil),
	}
	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, _ := os.ReadFile(out)
	if got := string(data); got != "Specs|Root;Docs;" {
		t.Errorf("output = %q", got)
	}

	// The previous dashboard is not listed on regeneration.
	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	data, _ = os.ReadFile(out)
	if got := string(data); got != "Specs|Root;Docs;" {
		t.Errorf("regenerated output = %q", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := Parse("{{.Title"); !errors.Is(err, ErrTemplate) {
		t.Errorf("error = %v, want ErrTemplate", err)
	}
}
