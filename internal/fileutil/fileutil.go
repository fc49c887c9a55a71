// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Temp artifact markers. TempInfix is written by TempSiblingPath;
// TempSuffix is a reserved suffix left by older runs and still cleaned up.
const (
	TempInfix  = "_temp_"
	TempSuffix = ".tmp.png"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrSamePath    = errors.New("source and destination are the same file")
	ErrReplaceFile = errors.New("failed to replace file")
)

// tempSeq disambiguates temp names created within the same clock tick.
var tempSeq atomic.Uint64

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFileReady returns true if the path is a regular file with a non-zero size.
func IsFileReady(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// TempSiblingPath returns a unique path next to target for an in-progress
// rewrite: "page-1.png" becomes "page-1_temp_<nanos>-<seq>.png".
func TempSiblingPath(target string, now time.Time) string {
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	seq := tempSeq.Add(1)
	return stem + TempInfix + strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(seq, 10) + ext
}

// IsTempArtifact reports whether a filename carries a temp marker.
func IsTempArtifact(name string) bool {
	return strings.Contains(name, TempInfix) || strings.HasSuffix(name, TempSuffix)
}

// ReplaceFile removes dst and renames src into its place.
//
// The two steps are not atomic: a crash between them leaves dst missing
// and src behind as a temp artifact.
func ReplaceFile(dst, src string) error {
	if dst == "" || src == "" {
		return ErrEmptyPath
	}
	if filepath.Clean(dst) == filepath.Clean(src) {
		return fmt.Errorf("%w: %s", ErrSamePath, dst)
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", ErrReplaceFile, dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: renaming %s: %v", ErrReplaceFile, src, err)
	}
	return nil
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "profiles" -> false (name)
//   - "./profiles.yaml" -> true (relative path)
//   - "/etc/html2png.yaml" -> true (absolute)
//   - "C:\config\html2png.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
