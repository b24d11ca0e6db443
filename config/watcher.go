package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/rewind/diag"
)

// ReloadHandler is called with the freshly loaded configuration after
// the watched file changes.
type ReloadHandler func(Config)

// Watcher monitors one configuration file and reloads it on change.
// Editors commonly save via rename, so the file's directory is watched
// and events are filtered by name.
type Watcher struct {
	mu       sync.Mutex
	handlers []ReloadHandler

	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *diag.Logger

	closeCh chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must stay quiet before a reload
// fires. Defaults to 100ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the diagnostic logger. Defaults to a no-op
// logger.
func WithWatchLogger(l *diag.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l.WithComponent("config")
		}
	}
}

// NewWatcher starts watching the config file at path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		fsw:      fsw,
		debounce: 100 * time.Millisecond,
		log:      diag.Nop(),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// OnReload registers a handler for configuration changes.
func (w *Watcher) OnReload(h ReloadHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// loop consumes fsnotify events, debounces rapid writes, and triggers
// reloads.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("config watch error: %v", err)
		}
	}
}

// reload loads the file and fans the result out to the handlers. A
// failed load keeps the previous configuration in effect.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed: %v", err)
		return
	}

	w.mu.Lock()
	handlers := make([]ReloadHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	w.log.Info("config reloaded from %s", w.path)
	for _, h := range handlers {
		w.safeCall(h, cfg)
	}
}

// safeCall invokes a handler with panic recovery so one bad handler
// cannot kill the watch goroutine.
func (w *Watcher) safeCall(h ReloadHandler, cfg Config) {
	defer func() {
		_ = recover()
	}()
	h(cfg)
}
