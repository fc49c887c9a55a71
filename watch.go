package html2png

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a document must stay quiet before it is
// converted again.
const DefaultDebounce = 500 * time.Millisecond

// DocumentProcessor converts one document. *Session implements it.
type DocumentProcessor interface {
	Process(ctx context.Context, doc SourceDocument) ConversionResult
}

var _ DocumentProcessor = (*Session)(nil)

// Watcher re-runs the pipeline for HTML documents created or written under
// Root. Conversions run one at a time on a single worker.
type Watcher struct {
	Root      string
	Ignore    IgnoreSet
	Debounce  time.Duration
	Processor DocumentProcessor
	Logger    *slog.Logger

	// OnResult, if set, receives every conversion result.
	OnResult func(ConversionResult)

	// Ready, if set, is closed once the initial directories are watched.
	Ready chan struct{}
}

// Run watches until ctx is cancelled. The document being converted when
// ctx is cancelled finishes with a cancelled context.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.Root, nil, logger); err != nil {
		return err
	}
	logger.Info("Watching " + w.Root)
	if w.Ready != nil {
		close(w.Ready)
	}

	done := make(chan struct{})
	queue := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case path := <-queue:
				res := w.Processor.Process(ctx, NewSourceDocument(path))
				if w.OnResult != nil {
					w.OnResult(res)
				}
			}
		}
	}()

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Stop()
		}
		timers[path] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case queue <- path:
			case <-done:
			}
		})
	}

	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
		close(done)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event, schedule, logger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event, schedule func(string), logger *slog.Logger) {
	name := filepath.Base(event.Name)
	if w.Ignore.Match(name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// Files written before the directory was watched are picked up here.
			if err := w.addTree(fw, event.Name, schedule, logger); err != nil {
				logger.Warn("Failed to watch "+event.Name, "error", err)
			}
			return
		}
	}

	if strings.HasSuffix(name, htmlSuffix) {
		logger.Debug("change detected", "file", event.Name)
		schedule(event.Name)
	}
}

// addTree watches dir and every non-ignored directory below it. found, if
// set, receives the HTML files already present.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string, found func(string), logger *slog.Logger) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDiscovery, err)
		}
		if path != dir && w.Ignore.Match(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if found != nil && d.Type().IsRegular() && strings.HasSuffix(d.Name(), htmlSuffix) {
				found(path)
			}
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		logger.Debug("watching directory", "dir", path)
		return nil
	})
}
