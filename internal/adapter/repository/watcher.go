package repository

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"resume-builder/internal/draft"
)

// SlotChanged is called when a slot file is created, rewritten or removed.
type SlotChanged func(namespace string, key draft.Key)

// WatchFS watches an FSDrafts root until ctx is cancelled and reports slot
// changes, including the ones made by other processes sharing the
// directory. New namespace directories are picked up as they appear.
func WatchFS(ctx context.Context, root string, logger *slog.Logger, cb SlotChanged) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(root, e.Name())); err != nil {
				logger.Warn("drafts watcher: add dir failed", slog.String("dir", e.Name()), slog.String("error", err.Error()))
			}
		}
	}

	logger.Info("drafts watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("drafts watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("drafts watcher: add dir failed", slog.String("dir", ev.Name), slog.String("error", addErr.Error()))
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			ns, key, ok := slotFromPath(root, ev.Name)
			if !ok {
				continue
			}
			logger.Debug("drafts watcher: slot changed", slog.String("namespace", ns), slog.String("key", string(key)), slog.String("op", ev.Op.String()))
			if cb != nil {
				cb(ns, key)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("drafts watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
