// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"path/filepath"

	"github.com/dialtonehq/callcheck/logger"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file whenever it changes and hands the result to
// onChange. The parent directory is watched instead of the file itself so the
// watch survives editors that replace the file on save. The returned function
// stops watching.
func Watch(path string, log *logger.Logger, onChange func(Config)) (func(), error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	done := make(chan struct{})

	go func() {
		defer func() { _ = watcher.Close() }()

		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := Load(path, "")
				if err != nil {
					log.Warningf("config reload failed: %v", err)
					continue
				}
				log.Infof("config file '%s' changed, applying", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warningf("config watcher: %v", err)
			}
		}
	}()

	return func() { close(done) }, nil
}
