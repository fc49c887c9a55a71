package html2png

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Source and output suffixes.
const (
	htmlSuffix = ".html"
	pdfSuffix  = ".pdf"
	pngSuffix  = ".png"
)

// SourceDocument is a discovered HTML file and the output paths derived
// from it. Identity is Path.
type SourceDocument struct {
	Path        string // absolute path to the .html file
	PDFPath     string // same directory, .pdf suffix
	PNGBasePath string // same directory, .png suffix; pages get -N appended
}

// NewSourceDocument derives output paths from an HTML path.
// Only the trailing .html suffix is substituted.
func NewSourceDocument(path string) SourceDocument {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	stem := strings.TrimSuffix(path, htmlSuffix)
	return SourceDocument{
		Path:        path,
		PDFPath:     stem + pdfSuffix,
		PNGBasePath: stem + pngSuffix,
	}
}

// Dir returns the directory holding the document and its outputs.
func (d SourceDocument) Dir() string {
	return filepath.Dir(d.Path)
}

// Prefix returns the filename prefix shared by the rasterized pages.
func (d SourceDocument) Prefix() string {
	return strings.TrimSuffix(filepath.Base(d.PNGBasePath), pngSuffix)
}

// URL returns the file:// URL loaded by the browser, with the path escaped.
func (d SourceDocument) URL() string {
	p := filepath.ToSlash(d.Path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive paths
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// Stage is the furthest point a document reached in the pipeline.
type Stage int

// Pipeline stages in order. Failed can follow any of them.
const (
	StageDiscovered Stage = iota
	StageRendered
	StageRasterized
	StageCropped
	StageCropSkipped
	StageCleanedUp
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageDiscovered:  "discovered",
	StageRendered:    "rendered",
	StageRasterized:  "rasterized",
	StageCropped:     "cropped",
	StageCropSkipped: "crop-skipped",
	StageCleanedUp:   "cleaned-up",
	StageDone:        "done",
	StageFailed:      "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// CropReport counts per-page crop outcomes for one document.
type CropReport struct {
	Cropped int
	Skipped int // page not ready, left uncropped
	Failed  int // crop or temp verification failed, original kept
}

// ConversionResult is the outcome of one document. Reached is the last
// stage completed before Err, if any.
type ConversionResult struct {
	Source   SourceDocument
	Stage    Stage
	Reached  Stage
	Err      error
	Pages    []string
	Crop     CropReport
	Duration time.Duration
}

// Failed reports whether the document ended in StageFailed.
func (r ConversionResult) Failed() bool {
	return r.Stage == StageFailed
}

// RunSummary aggregates the results of one batch run.
type RunSummary struct {
	Results   []ConversionResult
	Succeeded int
	Failed    int
}

// Total returns the number of documents processed.
func (s RunSummary) Total() int {
	return s.Succeeded + s.Failed
}

// summarize tallies succeeded and failed conversions.
func summarize(results []ConversionResult) RunSummary {
	summary := RunSummary{Results: results}
	for _, r := range results {
		if r.Failed() {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}
