package html2png

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// DefaultCropTolerance is the per-channel difference from the corner color
// still treated as border.
const DefaultCropTolerance = 10

// PageCropper trims uniform borders from rasterized pages in place.
type PageCropper interface {
	CropPages(ctx context.Context, pages []string) (CropReport, error)
}

// Cropper crops each page into a temp sibling and swaps it over the
// original. A failing page is left as rasterized.
type Cropper struct {
	Tolerance uint8
	Settle    time.Duration
	Sleep     Sleeper
	Logger    *slog.Logger
	Now       func() time.Time
}

var _ PageCropper = (*Cropper)(nil)

// NewCropper returns a Cropper with the default tolerance and settle delay.
func NewCropper() *Cropper {
	return &Cropper{
		Tolerance: DefaultCropTolerance,
		Settle:    DefaultSettleDelay,
		Sleep:     Sleep,
		Logger:    slog.Default(),
		Now:       time.Now,
	}
}

// CropPages waits the settle delay, then crops every page. Only context
// cancellation is returned as an error; page problems are counted and logged.
func (c *Cropper) CropPages(ctx context.Context, pages []string) (CropReport, error) {
	var report CropReport
	logger := c.logger()

	sleep := c.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	if err := sleep(ctx, c.Settle); err != nil {
		return report, err
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !fileutil.IsFileReady(page) {
			logger.Warn("File not ready, skipping: " + page)
			report.Skipped++
			continue
		}
		if err := c.cropPage(page); err != nil {
			logger.Warn("Cropping failed: "+page, "error", err)
			report.Failed++
			continue
		}
		logger.Log(ctx, LevelSuccess, "Cropped image: "+page)
		report.Cropped++
	}
	return report, nil
}

// cropPage writes the trimmed page to a temp sibling and promotes it.
// The temp file never outlives this call unless the process dies between
// the delete and the rename in fileutil.ReplaceFile.
func (c *Cropper) cropPage(path string) error {
	src, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrCrop, path, err)
	}

	trimmed := TrimBorders(src, c.Tolerance)

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	tmp := fileutil.TempSiblingPath(path, now())

	if err := imaging.Save(trimmed, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: encoding %s: %v", ErrCrop, tmp, err)
	}
	if !fileutil.IsFileReady(tmp) {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: temp file invalid: %s", ErrCrop, tmp)
	}
	if err := fileutil.ReplaceFile(path, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrCrop, err)
	}
	return nil
}

func (c *Cropper) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// TrimBorders removes rows and columns at the edges whose pixels all match
// the top-left pixel within tolerance. An image that is entirely border is
// returned unchanged.
func TrimBorders(img image.Image, tolerance uint8) image.Image {
	src := imaging.Clone(img)
	b := src.Bounds()
	if b.Empty() {
		return src
	}

	ref := src.Pix[0:4]
	matches := func(x, y int) bool {
		i := src.PixOffset(x, y)
		for ch := 0; ch < 4; ch++ {
			d := int(src.Pix[i+ch]) - int(ref[ch])
			if d < 0 {
				d = -d
			}
			if d > int(tolerance) {
				return false
			}
		}
		return true
	}
	rowIsBorder := func(y, x0, x1 int) bool {
		for x := x0; x < x1; x++ {
			if !matches(x, y) {
				return false
			}
		}
		return true
	}
	colIsBorder := func(x, y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			if !matches(x, y) {
				return false
			}
		}
		return true
	}

	top, bottom := b.Min.Y, b.Max.Y
	for top < bottom && rowIsBorder(top, b.Min.X, b.Max.X) {
		top++
	}
	if top == bottom {
		return src
	}
	for bottom > top && rowIsBorder(bottom-1, b.Min.X, b.Max.X) {
		bottom--
	}

	left, right := b.Min.X, b.Max.X
	for left < right && colIsBorder(left, top, bottom) {
		left++
	}
	for right > left && colIsBorder(right-1, top, bottom) {
		right--
	}

	rect := image.Rect(left, top, right, bottom)
	if rect == b {
		return src
	}
	return imaging.Crop(src, rect)
}
