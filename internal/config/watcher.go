package config

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls a config file and calls onChange with the previous and the
// new config whenever the file's content changes and still validates. An
// invalid edit is logged and ignored; the last good config stays current.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(old, new *Config)
	onError  func(error)

	mu       sync.Mutex
	current  *Config
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	lastMtime time.Time
	lastHash  [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 5 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithErrorHandler is called with every reload that failed to load or
// validate, in addition to the warning log.
func WithErrorHandler(f func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = f }
}

// NewWatcher loads the config at path and starts polling it in a background
// goroutine. It fails if the initial load fails.
func NewWatcher(path string, onChange func(old, new *Config), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: 5 * time.Second,
		onChange: onChange,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	cfg, hash, mtime, err := w.load()
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.current = cfg
	w.lastHash = hash
	w.lastMtime = mtime

	go w.poll()
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop stops polling and waits for an in-flight check to finish. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
	<-w.stopped
}

func (w *Watcher) poll() {
	defer close(w.stopped)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reloads the file when its mtime moved and its content hash changed.
func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.fail(err)
		return
	}

	w.mu.Lock()
	mtime := w.lastMtime
	w.mu.Unlock()
	if info.ModTime().Equal(mtime) {
		return
	}

	cfg, hash, newMtime, err := w.load()
	if err != nil {
		w.fail(err)
		// Remember the mtime so a broken file is reported once, not on
		// every tick.
		w.mu.Lock()
		w.lastMtime = info.ModTime()
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	if hash == w.lastHash {
		w.lastMtime = newMtime
		w.mu.Unlock()
		return
	}
	old := w.current
	w.current = cfg
	w.lastHash = hash
	w.lastMtime = newMtime
	w.mu.Unlock()

	slog.Info("config watcher: configuration reloaded", "path", w.path)

	// Outside the lock so the callback may call Current.
	if w.onChange != nil {
		w.onChange(old, cfg)
	}
}

func (w *Watcher) fail(err error) {
	slog.Warn("config watcher: reload failed, keeping previous config", "path", w.path, "err", err)
	if w.onError != nil {
		w.onError(err)
	}
}

// load reads, hashes, parses and validates the file.
func (w *Watcher) load() (*Config, [sha256.Size]byte, time.Time, error) {
	var zero [sha256.Size]byte

	info, err := os.Stat(w.path)
	if err != nil {
		return nil, zero, time.Time{}, err
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, zero, time.Time{}, err
	}
	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, zero, time.Time{}, err
	}
	return cfg, sha256.Sum256(data), info.ModTime(), nil
}
