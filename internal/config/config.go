package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of fsnotify events editors emit
// when saving a file.
const reloadDebounce = 100 * time.Millisecond

// Observer receives the new snapshot after a reload.
type Observer func(Settings)

// Config owns the merged settings snapshot and the file watcher that
// keeps it fresh.
type Config struct {
	mu       sync.RWMutex
	settings Settings
	loaded   bool

	userConfigDir    string
	projectConfigDir string
	enableWatcher    bool

	watcher   *fsnotify.Watcher
	observers []Observer
	reloadCh  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Config.
type Option func(*Config)

// WithUserConfigDir overrides the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(c *Config) { c.userConfigDir = dir }
}

// WithProjectConfigDir sets the project configuration directory.
func WithProjectConfigDir(dir string) Option {
	return func(c *Config) { c.projectConfigDir = dir }
}

// WithWatcher enables or disables live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) { c.enableWatcher = enable }
}

// New creates a Config. Call Load before reading settings.
func New(opts ...Option) *Config {
	c := &Config{
		settings:      Default(),
		enableWatcher: true,
		reloadCh:      make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userConfigDir == "" {
		c.userConfigDir = defaultUserConfigDir()
	}
	return c
}

func defaultUserConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "keystorm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keystorm")
}

// userSettingsPath returns the user settings file path.
func (c *Config) userSettingsPath() string {
	if c.userConfigDir == "" {
		return ""
	}
	return filepath.Join(c.userConfigDir, SettingsFileName)
}

// projectSettingsPath returns the project settings file path.
func (c *Config) projectSettingsPath() string {
	if c.projectConfigDir == "" {
		return ""
	}
	return filepath.Join(c.projectConfigDir, SettingsFileName)
}

// Load builds the snapshot from defaults, the user file, the project
// file, and the environment, then starts the watcher.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	settings, err := c.buildSettings()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.settings = settings
	c.loaded = true
	c.mu.Unlock()

	if c.enableWatcher {
		if err := c.startWatcher(); err != nil {
			// Live reload is a convenience; a missing inotify budget must
			// not block startup.
			c.watcher = nil
		}
	}
	return nil
}

func (c *Config) buildSettings() (Settings, error) {
	settings := Default()
	if path := c.userSettingsPath(); path != "" {
		if err := mergeFile(&settings, path); err != nil {
			return Settings{}, err
		}
	}
	if path := c.projectSettingsPath(); path != "" {
		if err := mergeFile(&settings, path); err != nil {
			return Settings{}, err
		}
	}
	mergeEnvironment(&settings, os.Environ())
	settings.Normalize()
	return settings, nil
}

// Settings returns the current snapshot.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Subscribe registers an observer for reloads. The observer is called
// from the watcher goroutine.
func (c *Config) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, observer)
	c.mu.Unlock()
}

// Reload rebuilds the snapshot from disk and notifies observers.
func (c *Config) Reload() error {
	settings, err := c.buildSettings()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.settings = settings
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, observer := range observers {
		observer(settings)
	}
	return nil
}

// startWatcher watches the config directories for changes to the
// settings files.
func (c *Config) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	watching := false
	for _, dir := range []string{c.userConfigDir, c.projectConfigDir} {
		if dir == "" {
			continue
		}
		if err := w.Add(dir); err == nil {
			watching = true
		}
	}
	if !watching {
		w.Close()
		return ErrNotLoaded
	}
	c.watcher = w

	go c.watchLoop(w)
	go c.reloadLoop()
	return nil
}

// watchLoop turns raw fsnotify events into debounced reload signals.
func (c *Config) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != SettingsFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			select {
			case c.reloadCh <- struct{}{}:
			default:
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}

// reloadLoop debounces reload signals.
func (c *Config) reloadLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.reloadCh:
			timer := time.NewTimer(reloadDebounce)
		drain:
			for {
				select {
				case <-c.done:
					timer.Stop()
					return
				case <-c.reloadCh:
					// Keep absorbing the save burst.
				case <-timer.C:
					break drain
				}
			}
			_ = c.Reload()
		}
	}
}

// Close stops the watcher.
func (c *Config) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.watcher != nil {
			c.watcher.Close()
		}
	})
}
