// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// HOT RELOAD
// =============================================================================

// Watcher reloads the global configuration when the config file changes
// on disk.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *log.Logger
	onLoad func(*Config)
	done   chan struct{}
}

// Watch starts watching the config directory. onLoad (optional) is
// invoked with each successfully reloaded configuration. logger may be
// nil.
func Watch(logger *log.Logger, onLoad func(*Config)) (*Watcher, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{fs: fs, logger: logger, onLoad: onLoad, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

// Close stops the watcher and releases its inotify resources.
func (w *Watcher) Close() {
	close(w.done)
	w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if name != "config.toml" && name != "config.json" {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load()
			if err != nil {
				w.logf("config: reload failed: %v", err)
				continue
			}
			SetGlobal(cfg)
			if w.onLoad != nil {
				w.onLoad(cfg)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logf("config: watch error: %v", err)
		}
	}
}

func (w *Watcher) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
