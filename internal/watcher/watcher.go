package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mediasorter/internal/logging"
)

// Handler processes one settled file. root is the watched directory the file
// was found under.
type Handler func(ctx context.Context, root, path string)

// Options configures a Watcher.
type Options struct {
	Settle    time.Duration
	Recursive bool
	// Accept filters candidate files; nil accepts every non-hidden file.
	Accept func(path string) bool
	Logger *slog.Logger
}

const (
	defaultSettle = 5 * time.Second
	readyBuffer   = 64
)

// Watcher feeds settled files from a set of root directories to a Handler.
type Watcher struct {
	roots  []string
	handle Handler
	opts   Options
	logger *slog.Logger

	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
	done   chan struct{}
}

// New validates the roots and prepares a watcher. Nothing is watched until
// Run is called.
func New(roots []string, handle Handler, opts Options) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("watcher requires a handler")
	}
	if len(roots) == 0 {
		return nil, errors.New("watcher requires at least one directory")
	}
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("watch %s: not a directory", root)
		}
		cleaned = append(cleaned, abs)
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	return &Watcher{
		roots:  cleaned,
		handle: handle,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "watcher"),
		timers: make(map[string]*time.Timer),
		ready:  make(chan string, readyBuffer),
		done:   make(chan struct{}),
	}, nil
}

// Run watches until ctx is canceled. A handler that is running when ctx ends
// is allowed to finish.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.fsw = fsw
	defer fsw.Close()

	for _, root := range w.roots {
		if err := w.add(root); err != nil {
			return err
		}
	}
	for _, root := range w.roots {
		w.enqueueExisting(root)
	}
	w.logger.Info("watching directories",
		logging.String(logging.FieldEventType, "watch_start"),
		logging.Int("roots", len(w.roots)),
		logging.Bool("recursive", w.opts.Recursive),
		logging.Duration("settle", w.opts.Settle),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.process(ctx)
	}()
	defer func() {
		close(w.done)
		w.stopTimers()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.onEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "filesystem watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may be missed"),
			)
		}
	}
}

func (w *Watcher) add(root string) error {
	if !w.opts.Recursive {
		if err := w.fsw.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			w.logger.Warn("skipping unreadable directory", logging.String("path", path), logging.Error(err))
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) onEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if hidden(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if w.opts.Recursive && event.Has(fsnotify.Create) {
			if err := w.add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", logging.String("path", event.Name), logging.Error(err))
				return
			}
			w.enqueueExisting(event.Name)
		}
		return
	}
	if !info.Mode().IsRegular() || !w.accept(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// enqueueExisting schedules files already present below dir: a root at
// startup, or a new directory written before it was registered.
func (w *Watcher) enqueueExisting(dir string) {
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if path != dir && (hidden(path) || !w.opts.Recursive) {
				return fs.SkipDir
			}
			return nil
		}
		if hidden(path) {
			return nil
		}
		if entry.Type().IsRegular() && w.accept(path) {
			w.schedule(path)
		}
		return nil
	})
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) process(ctx context.Context) {
	for {
		select {
		case <-w.done:
			return
		case path := <-w.ready:
			if _, err := os.Stat(path); err != nil {
				continue
			}
			root := w.rootOf(path)
			w.logger.Debug("file settled", logging.String(logging.FieldSource, path))
			w.handle(ctx, root, path)
		}
	}
}

// rootOf returns the most specific watched root containing path.
func (w *Watcher) rootOf(path string) string {
	best := ""
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

func (w *Watcher) accept(path string) bool {
	if w.opts.Accept == nil {
		return true
	}
	return w.opts.Accept(path)
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
