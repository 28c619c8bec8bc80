package tlsclient

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"apiconnect/pkg/logging"
)

const (
	// DefaultDebounceInterval is the time to wait after the last change
	// before OnChange fires.
	DefaultDebounceInterval = 500 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 30 * time.Second
)

// WatcherConfig holds configuration for a KeyStoreWatcher.
type WatcherConfig struct {
	// Files are the key store and trust bundle paths to watch.
	Files []string

	// PollInterval is the fallback polling interval.
	PollInterval time.Duration

	// Debounce collapses bursts of events into one OnChange call.
	Debounce time.Duration

	// OnChange is called after a watched file is written or replaced.
	OnChange func()
}

// KeyStoreWatcher notifies when key material on disk changes, so a
// connection can be re-established with a rotated certificate.
type KeyStoreWatcher struct {
	mu sync.Mutex

	config  WatcherConfig
	files   map[string]struct{}
	running bool
	stopCh  chan struct{}

	fsWatcher    *fsnotify.Watcher
	lastModTimes map[string]time.Time

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewKeyStoreWatcher creates a watcher. Empty paths in cfg.Files are ignored.
func NewKeyStoreWatcher(cfg WatcherConfig) *KeyStoreWatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounceInterval
	}

	files := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		files[filepath.Clean(f)] = struct{}{}
	}

	return &KeyStoreWatcher{
		config:       cfg,
		files:        files,
		lastModTimes: make(map[string]time.Time),
	}
}

// Start begins watching. Directories are watched rather than the files
// themselves so that atomic replacement (write to temp, rename) is seen.
func (w *KeyStoreWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("KeyStoreWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.poll()
		return nil
	}

	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logging.Warn("KeyStoreWatcher", "Failed to watch %s, falling back to polling: %v", dir, err)
			watcher.Close()
			go w.poll()
			return nil
		}
	}

	w.fsWatcher = watcher
	go w.processEvents(watcher.Events, watcher.Errors)

	logging.Info("KeyStoreWatcher", "Watching %d key store file(s)", len(w.files))
	return nil
}

func (w *KeyStoreWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("KeyStoreWatcher", err, "fsnotify error")
		}
	}
}

func (w *KeyStoreWatcher) handleEvent(event fsnotify.Event) {
	if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("KeyStoreWatcher", "Key store file changed: %s", event.Name)
	w.triggerDebounced()
}

func (w *KeyStoreWatcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

func (w *KeyStoreWatcher) poll() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.changed()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.changed() {
				logging.Debug("KeyStoreWatcher", "Key store change detected via polling")
				w.triggerDebounced()
			}
		}
	}
}

// changed records current modification times and reports whether any
// file is newer than the last observation.
func (w *KeyStoreWatcher) changed() bool {
	changed := false
	for file := range w.files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if last, seen := w.lastModTimes[file]; seen && mod.After(last) {
			changed = true
		}
		w.lastModTimes[file] = mod
	}
	return changed
}

// Stop stops the watcher. It is safe to call more than once.
func (w *KeyStoreWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("KeyStoreWatcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("KeyStoreWatcher", "Stopped key store watcher")
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *KeyStoreWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
