package html2png

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// CleanupTempArtifacts deletes leftover crop temp files of the pages
// <prefix>-N in dir and returns how many were removed. Temp files of other
// documents sharing the prefix ("ab", "a-1") are left alone. It is
// best-effort and never fails.
func CleanupTempArtifacts(dir, prefix string, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug("temp cleanup skipped", "dir", dir, "error", err)
		return 0
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isPageTempArtifact(name, prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			logger.Debug("temp cleanup failed", "file", name, "error", err)
			continue
		}
		logger.Info("Cleaned temp file: " + name)
		removed++
	}
	return removed
}

// isPageTempArtifact reports whether name is a temp file of page
// <prefix>-N: the page number is followed directly by a temp marker.
func isPageTempArtifact(name, prefix string) bool {
	rest, ok := strings.CutPrefix(name, prefix+"-")
	if !ok {
		return false
	}
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return false
	}
	rest = rest[digits:]
	return strings.HasPrefix(rest, fileutil.TempInfix) || rest == fileutil.TempSuffix
}
