package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"yoforex-admin/internal/logger"
)

// Watch re-reads the config file whenever it changes and calls onChange with
// the fresh snapshot. Returns a stop function. A missing file is fine; the
// watcher picks it up once the containing directory produces events.
func Watch(path string, onChange func(AppConfig)) (func(), error) {
	if path == "" {
		path = filepath.Join("config", "config.yaml")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				v := newViper(path)
				if err := v.ReadInConfig(); err != nil {
					logger.Errorf("config reload failed: %v", err)
					continue
				}
				cfg = fromViper(v)
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Errorf("config watcher: %v", err)
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}
