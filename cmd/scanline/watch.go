package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchConfig reloads the scene file whenever it is written and sends the
// result on the returned channel. Files that fail to load or validate are
// logged and skipped. The watcher stops when ctx is done.
//
// The directory is watched rather than the file, since editors often
// replace the file with a rename.
func watchConfig(ctx context.Context, path string) (<-chan *Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	reloads := make(chan *Config, 1)
	go func() {
		defer watcher.Close()
		defer close(reloads)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
					continue
				}
				cfg, err := LoadConfig(path)
				if err == nil {
					err = cfg.Validate()
				}
				if err != nil {
					slog.Warn("config reload failed", "path", path, "err", err)
					continue
				}
				// Keep only the newest config if the viewer is behind.
				select {
				case <-reloads:
				default:
				}
				reloads <- cfg
				slog.Info("config reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watch error", "err", err)
			}
		}
	}()
	return reloads, nil
}
