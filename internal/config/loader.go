package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrRejected marks a reload whose file parsed but was refused by an OnChange callback.
var ErrRejected = errors.New("config: rejected")

// Loader reads a YAML board file and watches it for changes.
type Loader struct {
	path     string
	reloadMu sync.Mutex // serializes Reload between the watcher and callers
	mu       sync.RWMutex
	current  *BoardConfig
	onChange []func(*BoardConfig) error
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched file path.
func (l *Loader) Path() string { return l.path }

// Config returns the last configuration that every OnChange callback accepted.
func (l *Loader) Config() *BoardConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked with every newly parsed config before it
// becomes current. A callback error rejects the new config.
func (l *Loader) OnChange(fn func(*BoardConfig) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if _, err := l.Reload(); err != nil {
					slog.Warn("config reload failed, keeping previous board", "path", l.path, "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file.
// The previous config stays current when the file cannot be read or parsed, or
// when a callback refuses it; the latter error wraps ErrRejected.
func (l *Loader) Reload() (*BoardConfig, error) {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()

	cfg, err := LoadFile(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	callbacks := make([]func(*BoardConfig) error, len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.RUnlock()
	for _, fn := range callbacks {
		if err := fn(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRejected, err)
		}
	}
	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

// LoadFile reads and parses a board file, applying defaults.
func LoadFile(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML board data and applies defaults.
func Parse(data []byte) (*BoardConfig, error) {
	var cfg BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills zero-valued tunables.
func ApplyDefaults(cfg *BoardConfig) {
	if cfg.Sessions.MaxBoards == 0 {
		cfg.Sessions.MaxBoards = 256
	}
	if cfg.Sessions.AnalysisWorkers == 0 {
		cfg.Sessions.AnalysisWorkers = 4
	}
	if cfg.Sessions.QueueDepth == 0 {
		cfg.Sessions.QueueDepth = 1024
	}
	if cfg.Layout.OriginX == 0 {
		cfg.Layout.OriginX = 100
	}
	if cfg.Layout.OriginY == 0 {
		cfg.Layout.OriginY = 80
	}
	if cfg.Layout.ColumnGap == 0 {
		cfg.Layout.ColumnGap = 250
	}
	if cfg.Layout.RowGap == 0 {
		cfg.Layout.RowGap = 120
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].Status == "" {
			cfg.Tasks[i].Status = "todo"
		}
		if cfg.Tasks[i].Priority == "" {
			cfg.Tasks[i].Priority = "medium"
		}
	}
}
