// Package watch keeps the symbol catalog in sync with declaration files
// changing on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/workspace"
)

// Sink receives the declaration files the watcher observes. The service
// implements it.
type Sink interface {
	LoadDeclarationFile(path, text string) error
	RemoveDeclarationFile(path string) bool
}

// Options configure a Watcher.
type Options struct {
	Workspace workspace.Options
	Debounce  time.Duration
}

type eventType int

const (
	eventCreate eventType = iota
	eventWrite
	eventRemove
)

// Watcher monitors the workspace root and forwards declaration file
// changes to a Sink in debounced batches.
type Watcher struct {
	watcher   *fsnotify.Watcher
	matcher   *workspace.Matcher
	loader    *workspace.Loader
	sink      Sink
	maxSize   int64
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	onBatch func(count int, took time.Duration)

	statsMu sync.RWMutex
	stats   Stats
}

// Stats describe the work done since Start.
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// New creates a watcher that is idle until Start.
func New(opts Options, sink Sink) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher: fsw,
		matcher: workspace.NewMatcher(opts.Workspace),
		loader:  workspace.NewLoader(opts.Workspace),
		sink:    sink,
		maxSize: opts.Workspace.MaxFileSize,
	}
	w.debouncer = newEventDebouncer(opts.Debounce, w.flush)
	return w, nil
}

// OnBatch registers a callback run after every processed batch.
func (w *Watcher) OnBatch(fn func(count int, took time.Duration)) {
	w.onBatch = fn
}

// Start adds watches below the workspace root and begins processing
// events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	root := w.matcher.Root()
	debug.LogWatch("starting file watcher for %s", root)

	if err := w.addWatches(root, false); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.setActive(true)

	w.wg.Add(2)
	go w.processEvents()
	go w.debouncer.run(w.ctx, &w.wg)
	return nil
}

// Stop ends event processing and waits for in-flight batches. Pending
// events are dropped.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.debouncer.stop()
	err := w.watcher.Close()
	w.wg.Wait()
	w.setActive(false)
	debug.LogWatch("file watcher stopped")
	return err
}

// addWatches watches every directory below root. With queue set, files
// already present are queued as creates; a new directory may be filled
// before its watch exists.
func (w *Watcher) addWatches(root string, queue bool) error {
	visitedDirs := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !info.IsDir() {
			if queue && w.matcher.MatchFile(path) {
				w.debouncer.add(path, eventCreate)
			}
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && w.matcher.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			debug.LogWatch("failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.LogWatch("file watcher error: %v", err)
			w.incrementStats(0, 1)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received %v for %s", event.Op, path)

	info, err := os.Stat(path)
	if err != nil {
		// Gone: removed, or renamed away
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.matcher.MatchFile(path) {
			w.debouncer.add(path, eventRemove)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.matcher.SkipDir(path) {
			if err := w.addWatches(path, true); err != nil {
				debug.LogWatch("failed to watch new directory %s: %v", path, err)
			}
		}
		return
	}

	if !w.matcher.MatchFile(path) {
		return
	}
	if w.maxSize > 0 && info.Size() > w.maxSize {
		debug.LogWatch("skipping oversized %s (%d bytes)", path, info.Size())
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.debouncer.add(path, eventCreate)
	case event.Op&(fsnotify.Write|fsnotify.Rename) != 0:
		w.debouncer.add(path, eventWrite)
	}
}

// flush applies one batch: removals first, then changes, then creates.
func (w *Watcher) flush(events map[string]eventType) {
	debug.LogWatch("processing %d debounced file events", len(events))
	start := time.Now()

	var creates, removes, changes []string
	for path, et := range events {
		switch et {
		case eventCreate:
			creates = append(creates, path)
		case eventRemove:
			removes = append(removes, path)
		case eventWrite:
			changes = append(changes, path)
		}
	}
	sort.Strings(creates)
	sort.Strings(removes)
	sort.Strings(changes)

	for _, path := range removes {
		w.sink.RemoveDeclarationFile(path)
		w.incrementStats(1, 0)
	}
	for _, path := range append(changes, creates...) {
		if w.ctx.Err() != nil {
			return
		}
		w.reload(path)
	}

	if w.onBatch != nil {
		w.onBatch(len(events), time.Since(start))
	}
}

func (w *Watcher) reload(path string) {
	text, err := w.loader.ReadFile(w.ctx, path)
	if err != nil {
		debug.LogWatch("%v", err)
		w.incrementStats(1, 1)
		return
	}
	if err := w.sink.LoadDeclarationFile(path, text); err != nil {
		w.incrementStats(1, 1)
		return
	}
	w.incrementStats(1, 0)
}

func (w *Watcher) incrementStats(events, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.stats.EventsProcessed += events
	w.stats.ErrorCount += errors
	w.stats.LastEventTime = time.Now()
}

func (w *Watcher) setActive(active bool) {
	w.statsMu.Lock()
	w.stats.IsActive = active
	w.statsMu.Unlock()
}

// Stats returns a copy of the current statistics.
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}
