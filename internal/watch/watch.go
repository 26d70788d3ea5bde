package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mgpai22/lekh/internal/logging"
)

const DefaultDelay = 500 * time.Millisecond

// called once per settled file
type Handler func(ctx context.Context, path string) error

// Watcher hands files dropped into a directory to a Handler once writes to
// them have been quiet for the debounce delay.
type Watcher struct {
	dir        string
	extensions map[string]bool
	delay      time.Duration
	handle     Handler
	logger     *logging.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

type Option func(*Watcher)

func WithDelay(delay time.Duration) Option {
	return func(w *Watcher) {
		if delay > 0 {
			w.delay = delay
		}
	}
}

// only files with these extensions (".srt", ...) reach the handler
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			w.extensions[strings.ToLower(ext)] = true
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New starts watching dir immediately; events are queued until Run.
func New(dir string, handle Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		delay:   DefaultDelay,
		handle:  handle,
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNop(w.logger)

	return w, nil
}

// Run dispatches events until ctx is done, then cancels pending files and
// waits for running handlers.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	w.logger.Infow("Watching directory", "dir", w.dir, "delay", w.delay)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("File watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.shouldProcess(event.Name) {
		return
	}

	w.logger.Debugw("File event", "path", event.Name, "op", event.Op.String())
	w.schedule(ctx, event.Name)
}

// skips hidden and editor temp files, then filters by extension
func (w *Watcher) shouldProcess(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	for _, pattern := range []string{"*.tmp", "*.part", "*.swp", "*.crdownload"} {
		if matched, _ := filepath.Match(pattern, name); matched {
			return false
		}
	}
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(name))]
}

// (re)arms the debounce timer for path
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok && timer.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.delay, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		w.process(ctx, path)
	})
	w.pending[path] = timer
}

func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := w.handle(ctx, path); err != nil {
		w.logger.Warnw("Failed to process file", "path", path, "error", err)
		return
	}
	w.logger.Infow("Processed file", "path", path, "elapsed", time.Since(start).Round(time.Millisecond))
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, timer := range w.pending {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.fsw.Close()
	w.wg.Wait()
}
