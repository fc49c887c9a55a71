package dashboard

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Node is one directory of the scanned tree. Empty directories are pruned.
type Node struct {
	Files []string         // sorted file names
	Dirs  map[string]*Node // non-empty subdirectories
}

// Empty reports whether the node holds neither files nor directories.
func (n *Node) Empty() bool {
	return n == nil || (len(n.Files) == 0 && len(n.Dirs) == 0)
}

// leaf reports whether the node holds only files.
func (n *Node) leaf() bool {
	return len(n.Dirs) == 0 && len(n.Files) > 0
}

// BuildTree scans root recursively. Names for which ignore returns true
// are skipped at every level, along with every dot-prefixed name.
func BuildTree(root string, ignore func(name string) bool) (*Node, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScan, err)
	}

	n := &Node{Dirs: map[string]*Node{}}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || (ignore != nil && ignore(name)) {
			continue
		}
		if e.IsDir() {
			sub, err := BuildTree(filepath.Join(root, name), ignore)
			if err != nil {
				return nil, err
			}
			if !sub.Empty() {
				n.Dirs[name] = sub
			}
			continue
		}
		n.Files = append(n.Files, name)
	}
	sort.Strings(n.Files)
	return n, nil
}

// Link is one button on a card row.
type Link struct {
	Label string
	Href  string // slash-separated, relative to the root
}

// Element is one row of a card.
type Element struct {
	Label string
	Links []Link
}

// Category is one card.
type Category struct {
	Title    string
	Elements []Element
}

// RootTitle names the card holding the root's own elements.
const RootTitle = "Root"

// Categories flattens the tree into ordered cards.
func Categories(root *Node) []Category {
	if root.Empty() {
		return nil
	}

	var cats []Category
	flatten(root, "", &cats)

	var ordered []Category
	rest := cats[:0:0]
	for _, c := range cats {
		if c.Title == RootTitle && ordered == nil {
			ordered = append(ordered, c)
			continue
		}
		rest = append(rest, c)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return len(rest[i].Elements) > len(rest[j].Elements)
	})
	ordered = append(ordered, rest...)

	for i := range ordered {
		ordered[i].Title = displayName(ordered[i].Title)
	}
	return ordered
}

// flatten appends the card for n, if it has elements, followed by the cards
// of its non-leaf subdirectories in name order.
func flatten(n *Node, rel string, cats *[]Category) {
	names := make([]string, 0, len(n.Dirs))
	for name := range n.Dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	var elems []Element
	for _, name := range names {
		sub := n.Dirs[name]
		if sub.leaf() {
			elems = append(elems, Element{
				Label: displayName(name),
				Links: extensionLinks(path.Join(rel, name), sub.Files),
			})
		}
	}
	for _, f := range n.Files {
		elems = append(elems, Element{
			Label: displayName(f),
			Links: []Link{{Label: "View", Href: path.Join(rel, f)}},
		})
	}

	if len(elems) > 0 {
		title := rel
		if title == "" {
			title = RootTitle
		}
		*cats = append(*cats, Category{Title: title, Elements: elems})
	}

	for _, name := range names {
		if sub := n.Dirs[name]; !sub.leaf() {
			flatten(sub, path.Join(rel, name), cats)
		}
	}
}

// extensionLinks labels files by upper-cased extension, numbering repeats:
// a.pdf a-1.png a-2.png gives PDF, PNG, PNG2.
func extensionLinks(dir string, files []string) []Link {
	counts := map[string]int{}
	links := make([]Link, 0, len(files))
	for _, f := range files {
		ext := strings.ToUpper(f[strings.LastIndex(f, ".")+1:])
		counts[ext]++
		label := ext
		if counts[ext] > 1 {
			label = fmt.Sprintf("%s%d", ext, counts[ext])
		}
		links = append(links, Link{Label: label, Href: path.Join(dir, f)})
	}
	return links
}

func displayName(s string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}
