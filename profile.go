package html2png

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// Paper format names accepted by PageLayout.Format.
const (
	FormatLetter  = "letter"
	FormatLegal   = "legal"
	FormatTabloid = "tabloid"
	FormatLedger  = "ledger"
	FormatA0      = "a0"
	FormatA1      = "a1"
	FormatA2      = "a2"
	FormatA3      = "a3"
	FormatA4      = "a4"
	FormatA5      = "a5"
	FormatA6      = "a6"
)

// paperSizes maps formats to portrait width/height in inches.
var paperSizes = map[string][2]float64{
	FormatLetter:  {8.5, 11},
	FormatLegal:   {8.5, 14},
	FormatTabloid: {11, 17},
	FormatLedger:  {17, 11},
	FormatA0:      {33.1, 46.8},
	FormatA1:      {23.4, 33.1},
	FormatA2:      {16.54, 23.4},
	FormatA3:      {11.7, 16.54},
	FormatA4:      {8.27, 11.7},
	FormatA5:      {5.83, 8.27},
	FormatA6:      {4.13, 5.83},
}

// Scale and resolution bounds.
const (
	MinScale = 0.1
	MaxScale = 2.0
	MinDPI   = 36
	MaxDPI   = 1200
)

// Margins holds per-edge margins as CSS lengths ("0.5in", "10mm", "0").
type Margins struct {
	Top    string
	Bottom string
	Left   string
	Right  string
}

// PageLayout configures how a document is printed to PDF.
type PageLayout struct {
	Format              string
	Landscape           bool
	PrintBackground     bool
	DisplayHeaderFooter bool
	Scale               float64
	Margin              Margins
}

// ConversionProfile is the fixed set of conversion parameters bound to a
// folder category.
type ConversionProfile struct {
	Name   string
	Layout PageLayout
	DPI    int
	Crop   bool
}

// Validate checks that the profile can be handed to the render and
// rasterize stages.
func (p ConversionProfile) Validate() error {
	if err := p.Layout.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if p.DPI < MinDPI || p.DPI > MaxDPI {
		return fmt.Errorf("profile %q: %w: %d (must be between %d and %d)", p.Name, ErrInvalidDPI, p.DPI, MinDPI, MaxDPI)
	}
	return nil
}

// Validate checks format, scale and margins.
func (l PageLayout) Validate() error {
	if _, ok := paperSizes[strings.ToLower(l.Format)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, l.Format)
	}
	if l.Scale < MinScale || l.Scale > MaxScale {
		return fmt.Errorf("%w: %.2f (must be between %.1f and %.1f)", ErrInvalidScale, l.Scale, MinScale, MaxScale)
	}
	for _, m := range []string{l.Margin.Top, l.Margin.Bottom, l.Margin.Left, l.Margin.Right} {
		if _, err := ParseLength(m); err != nil {
			return err
		}
	}
	return nil
}

// printOptions builds the Chrome print request for the layout.
// Header and footer templates are always blank.
func (l PageLayout) printOptions() (*proto.PagePrintToPDF, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	size := paperSizes[strings.ToLower(l.Format)]
	width, height := size[0], size[1]

	top, _ := ParseLength(l.Margin.Top)
	bottom, _ := ParseLength(l.Margin.Bottom)
	left, _ := ParseLength(l.Margin.Left)
	right, _ := ParseLength(l.Margin.Right)

	return &proto.PagePrintToPDF{
		Landscape:           l.Landscape,
		DisplayHeaderFooter: l.DisplayHeaderFooter,
		HeaderTemplate:      "<span></span>",
		FooterTemplate:      "<span></span>",
		PrintBackground:     l.PrintBackground,
		Scale:               floatPtr(l.Scale),
		PaperWidth:          floatPtr(width),
		PaperHeight:         floatPtr(height),
		MarginTop:           floatPtr(top),
		MarginBottom:        floatPtr(bottom),
		MarginLeft:          floatPtr(left),
		MarginRight:         floatPtr(right),
	}, nil
}

// Length units and their size in inches.
var lengthUnits = map[string]float64{
	"in": 1,
	"cm": 1 / 2.54,
	"mm": 1 / 25.4,
	"px": 1.0 / 96,
	"pt": 1.0 / 72,
}

// ParseLength converts a CSS length to inches. An empty string and a bare
// "0" mean zero; any other unitless number is read as pixels.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "0" {
		return 0, nil
	}

	factor := lengthUnits["px"]
	num := s
	for unit, f := range lengthUnits {
		if strings.HasSuffix(s, unit) {
			factor = f
			num = strings.TrimSpace(strings.TrimSuffix(s, unit))
			break
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMargin, s)
	}
	return v * factor, nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// Registry maps folder categories to their conversion profiles.
// It is immutable once built; Lookup hands out copies.
type Registry struct {
	profiles map[string]ConversionProfile
}

// NewRegistry validates the profiles and indexes them by name.
// Duplicate names are rejected.
func NewRegistry(profiles ...ConversionProfile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]ConversionProfile, len(profiles))}
	for _, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: empty profile name", ErrProfileNotFound)
		}
		if _, dup := r.profiles[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.profiles[p.Name] = p
	}
	return r, nil
}

// Lookup returns the profile bound to a folder category.
func (r *Registry) Lookup(category string) (ConversionProfile, error) {
	p, ok := r.profiles[category]
	if !ok {
		return ConversionProfile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, category)
	}
	return p, nil
}

// Has reports whether a profile exists for the category.
func (r *Registry) Has(category string) bool {
	_, ok := r.profiles[category]
	return ok
}

// Categories returns the configured category names, sorted.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
