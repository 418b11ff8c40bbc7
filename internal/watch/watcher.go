// Package watch re-runs the analysis when files under a project root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codeprofile/internal/analyzer"
	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/traverse"
	"github.com/standardbeagle/codeprofile/internal/types"
	"github.com/standardbeagle/codeprofile/pkg/pathutil"
)

// FileEventType represents the type of file system event
type FileEventType int

const (
	FileEventCreate FileEventType = iota
	FileEventWrite
	FileEventRemove
	FileEventRename
)

func (t FileEventType) String() string {
	switch t {
	case FileEventCreate:
		return "create"
	case FileEventWrite:
		return "write"
	case FileEventRemove:
		return "remove"
	case FileEventRename:
		return "rename"
	}
	return "unknown"
}

// Watcher monitors a project tree and re-analyzes it after a quiet period.
type Watcher struct {
	watcher  *fsnotify.Watcher
	analyzer *analyzer.Analyzer
	ignore   *config.IgnoreMatcher
	root     string
	patterns []string
	debounce time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	onResult func(*types.ProjectAnalysis, []string)
	onError  func(error)

	eventsProcessed int64
	reanalyses      int64
	errorCount      int64
	lastEventTime   time.Time
	active          bool
	statsMu         sync.RWMutex
}

// New creates a watcher for root. ignore holds the same caller patterns
// passed to Analyze so ignored paths never trigger a run.
func New(a *analyzer.Analyzer, cfg *config.Config, root string, ignore []string) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving watch root %s: %w", root, err)
	}
	m, err := traverse.BuildMatcher(cfg, abs, ignore)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(cfg.Performance.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	return &Watcher{
		watcher:  fw,
		analyzer: a,
		ignore:   m,
		root:     abs,
		patterns: ignore,
		debounce: debounce,
	}, nil
}

// SetCallbacks sets the handlers for finished analyses and failures.
// onResult receives the analysis and the sorted paths that triggered it.
func (w *Watcher) SetCallbacks(onResult func(*types.ProjectAnalysis, []string), onError func(error)) {
	w.onResult = onResult
	w.onError = onError
}

// Start adds watches for every non-ignored directory and begins processing
// events in the background until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	debug.LogWatch("starting watcher for %s\n", w.root)

	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.setActive(true)
	w.wg.Add(1)
	go w.processEvents(ctx)
	return nil
}

// Stop ends event processing, closes the underlying watcher and waits for
// an in-flight analysis to finish.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	w.wg.Wait()
	w.setActive(false)
	debug.LogWatch("watcher for %s stopped\n", w.root)
	return err
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) rel(path string) (string, bool) {
	return pathutil.RelSlash(w.root, path)
}

// addWatches recursively adds watches to all relevant directories
func (w *Watcher) addWatches(root string) error {
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return filepath.SkipDir
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if rel, ok := w.rel(path); ok && rel != "." && w.ignore.ShouldIgnore(rel, true) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

// processEvents collects events into a pending set and runs one analysis
// once no event has arrived for the debounce period.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]FileEventType)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			rel, eventType, keep := w.classify(event)
			if !keep {
				continue
			}
			pending[rel] = eventType
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.incrementStats(0, 0, 1)
			log.Printf("File watcher error: %v", err)

		case <-fire:
			fire = nil
			batch := pending
			pending = make(map[string]FileEventType)
			w.flush(ctx, batch)
		}
	}
}

// classify filters an event and maps it to a FileEventType. New
// directories get a watch of their own.
func (w *Watcher) classify(event fsnotify.Event) (string, FileEventType, bool) {
	rel, ok := w.rel(event.Name)
	if !ok || rel == "." {
		return "", 0, false
	}

	var eventType FileEventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = FileEventCreate
	case event.Op&fsnotify.Write != 0:
		eventType = FileEventWrite
	case event.Op&fsnotify.Remove != 0:
		eventType = FileEventRemove
	case event.Op&fsnotify.Rename != 0:
		eventType = FileEventRename
	default:
		return "", 0, false
	}

	isDir := false
	if eventType == FileEventCreate {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			isDir = true
		}
	}
	if w.ignore.ShouldIgnore(rel, isDir) {
		debug.LogWatch("ignoring %s %s\n", eventType, rel)
		return "", 0, false
	}
	if isDir {
		if err := w.addWatches(event.Name); err != nil {
			log.Printf("Warning: failed to add watch for new directory %s: %v", event.Name, err)
		}
	}
	debug.LogWatch("%s %s\n", eventType, rel)
	return rel, eventType, true
}

// flush invalidates cached results for the root and analyzes it again.
func (w *Watcher) flush(ctx context.Context, events map[string]FileEventType) {
	if len(events) == 0 {
		return
	}
	paths := make([]string, 0, len(events))
	for p := range events {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	debug.LogWatch("re-analyzing after %d changed paths\n", len(paths))

	w.analyzer.Invalidate(w.root)
	res, err := w.analyzer.Analyze(ctx, w.root, w.patterns)
	if err != nil {
		w.incrementStats(int64(len(paths)), 0, 1)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.incrementStats(int64(len(paths)), 1, 0)
	if ctx.Err() != nil {
		return
	}
	if w.onResult != nil {
		w.onResult(res, paths)
	}
}

func (w *Watcher) setActive(active bool) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.active = active
}

// incrementStats updates watch mode statistics
func (w *Watcher) incrementStats(events, reanalyses, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsProcessed += events
	w.reanalyses += reanalyses
	w.errorCount += errors
	w.lastEventTime = time.Now()
}

// GetStats returns current watch mode statistics
func (w *Watcher) GetStats() WatchStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return WatchStats{
		EventsProcessed: w.eventsProcessed,
		Reanalyses:      w.reanalyses,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		IsActive:        w.active,
	}
}

// WatchStats contains statistics about file watching operations
type WatchStats struct {
	EventsProcessed int64
	Reanalyses      int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}
