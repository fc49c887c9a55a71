package html2png

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// defaultIgnoredNames covers version control and OS metadata, lockfiles,
// dashboard outputs and the tooling directory.
var defaultIgnoredNames = []string{
	"node_modules",
	".git",
	".gitignore",
	".DS_Store",
	"package-lock.json",
	"tree.json",
	"tree.html",
	"index.html",
	"Scripts",
}

// IgnoreSet decides which directory entries discovery skips.
// Dot-prefixed names are always ignored.
type IgnoreSet struct {
	names map[string]struct{}
}

// NewIgnoreSet builds an IgnoreSet from exact entry names.
func NewIgnoreSet(names ...string) IgnoreSet {
	s := IgnoreSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			s.names[n] = struct{}{}
		}
	}
	return s
}

// DefaultIgnoreSet returns the built-in ignore list.
func DefaultIgnoreSet() IgnoreSet {
	return NewIgnoreSet(defaultIgnoredNames...)
}

// Match reports whether an entry name is ignored.
func (s IgnoreSet) Match(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// Names returns the explicit names in the set, sorted.
func (s IgnoreSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Locate returns every .html file under root in directory traversal order,
// skipping ignored entries at every level. An ignored directory prunes its
// whole subtree.
func Locate(root string, ignore IgnoreSet) ([]SourceDocument, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	var docs []SourceDocument
	if err := locateDir(abs, ignore, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func locateDir(dir string, ignore IgnoreSet, docs *[]SourceDocument) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: scanning %s: %v", ErrDiscovery, dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if ignore.Match(name) {
			continue
		}
		path := filepath.Join(dir, name)

		switch {
		case e.IsDir():
			if err := locateDir(path, ignore, docs); err != nil {
				return err
			}
		case e.Type().IsRegular() && strings.HasSuffix(name, htmlSuffix):
			*docs = append(*docs, NewSourceDocument(path))
		}
	}
	return nil
}

// EligibleFolders lists the top-level directories of root that have a
// profile in reg and are not ignored, sorted by name.
func EligibleFolders(root string, reg *Registry, ignore IgnoreSet) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() && reg.Has(e.Name()) && !ignore.Match(e.Name()) {
			folders = append(folders, e.Name())
		}
	}
	if len(folders) == 0 {
		return nil, ErrNoFolders
	}
	return folders, nil
}
