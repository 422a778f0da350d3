package telemetry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay debounces bursts of file events into one reload.
const DefaultReloadDelay = 500 * time.Millisecond

// ConfigWatcher applies debug level changes from a configuration file to a
// running Telemetry.
type ConfigWatcher struct {
	path    string
	tel     *Telemetry
	logger  *Logger
	delay   time.Duration
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	reloads int
}

// NewConfigWatcher creates a watcher for path. A zero delay uses DefaultReloadDelay.
func NewConfigWatcher(path string, tel *Telemetry, delay time.Duration) *ConfigWatcher {
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	return &ConfigWatcher{
		path:   filepath.Clean(path),
		tel:    tel,
		logger: tel.Logger().NewComponentLogger("config-watcher"),
		delay:  delay,
	}
}

// Start begins watching in the background until ctx is done. The parent
// directory is watched so that editors that replace the file are seen.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = watcher

	go w.processEvents(ctx)

	w.logger.WithField("path", w.path).Info("watching config for level changes")
	return nil
}

// Reloads returns how many reloads have been applied.
func (w *ConfigWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *ConfigWatcher) processEvents(ctx context.Context) {
	var reloadTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			_ = w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(w.delay, func() {
				if err := w.Reload(); err != nil {
					w.logger.WithError(err).Error("failed to reload config")
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("watcher error")
		}
	}
}

// Reload reads the file and applies its debug level when it differs from
// the current one.
func (w *ConfigWatcher) Reload() error {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	if cfg.DebugLevel == w.tel.Level() {
		w.logger.Debugf("debug level unchanged at %s after reload", cfg.DebugLevel)
		return nil
	}
	w.tel.SetLevel(cfg.DebugLevel)
	return nil
}
