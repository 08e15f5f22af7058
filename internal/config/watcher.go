package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/caret/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// ChangeHandler receives a successfully reloaded configuration.
type ChangeHandler func(cfg *Config)

// ErrorHandler receives reload and watch errors.
type ErrorHandler func(err error)

// Watcher reloads a configuration file when it changes.
//
// The file's directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are noticed.
// Handlers run on the watcher's own goroutine, one at a time, and never
// after Close has returned.
type Watcher struct {
	mu sync.Mutex

	path   string
	dir    string
	loader *Loader
	delay  time.Duration
	log    *logging.Logger

	onChange ChangeHandler
	onError  ErrorHandler

	fsw *fsnotify.Watcher

	// Lifecycle
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithErrorHandler registers a handler for reload and watch errors.
func WithErrorHandler(fn ErrorHandler) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithLoader reloads through l instead of the default loader.
func WithLoader(l *Loader) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.loader = l
		}
	}
}

// NewWatcher starts watching path and calls onChange with every valid
// reload. The file does not need to exist yet.
func NewWatcher(path string, onChange ChangeHandler, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		loader:   NewLoader(),
		delay:    DefaultDebounce,
		log:      logging.Nop(),
		onChange: onChange,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("config").WithField("path", abs)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// processLoop handles incoming fsnotify events and runs debounced
// reloads, so every handler call happens on this goroutine.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.affects(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
			w.reportError(err)
		}
	}
}

// affects reports whether ev should trigger a reload.
func (w *Watcher) affects(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// reload loads the file and dispatches the result.
func (w *Watcher) reload() {
	cfg, err := w.loader.Load(w.path)
	if w.closing() {
		return
	}
	if err != nil {
		w.log.Warn("reload failed: %v", err)
		w.reportError(err)
		return
	}
	w.log.Info("configuration reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

func (w *Watcher) closing() bool {
	select {
	case <-w.closeCh:
		return true
	default:
		return false
	}
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops the watcher and waits for its goroutine to exit. Pending
// reloads are dropped and no handler runs once Close returns. Handlers
// must not call Close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	// Wait for processLoop to finish
	w.closedWg.Wait()

	return w.fsw.Close()
}
