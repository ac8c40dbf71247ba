package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay coalesces the burst of events a single save produces.
const settleDelay = 100 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes each
// valid result to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temp file and renaming it over path keep working.
// A reload that fails to parse or validate is logged and skipped.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	slog.Info("config: watching for changes", "path", abs)

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			settle.Reset(settleDelay)

		case <-settle.C:
			cfg, err := Load(abs)
			if err != nil {
				slog.Warn("config: reload skipped", "path", abs, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", abs, "log_level", cfg.Server.LogLevel)
			onChange(cfg)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
