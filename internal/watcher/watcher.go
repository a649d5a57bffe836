// Package watcher turns filesystem notifications on the vault into note
// change events. It maintains no state about the vault contents; it only
// reports what happened so interested parties (the SSE feed) can react.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback receives a vault change. kind is one of "created",
// "updated", "deleted"; path is vault-relative with forward slashes.
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and emits events for
// markdown file changes until ctx is cancelled. New directories created at
// runtime are added to the watch list; a rename shows up as a "deleted"
// event for the old path followed by a "created" event for the new one.
func Watch(ctx context.Context, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			handleEvent(w, ev, vaultRoot, logger, cb)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func handleEvent(w *fsnotify.Watcher, ev fsnotify.Event, vaultRoot string, logger *slog.Logger, cb EventCallback) {
	absPath := ev.Name

	// New directories need to be watched, and any .md files they already
	// contain (moved in wholesale) announced.
	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if addErr := addDirsRecursive(w, absPath); addErr != nil {
				logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			}
			announceDir(vaultRoot, absPath, logger, cb)
			return
		}
	}

	if !strings.HasSuffix(absPath, ".md") {
		return
	}
	rel, relErr := filepath.Rel(vaultRoot, absPath)
	if relErr != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&fsnotify.Create != 0:
		emit(logger, cb, "created", rel)
	case ev.Op&fsnotify.Write != 0:
		emit(logger, cb, "updated", rel)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// fsnotify fires Rename on the OLD path only; the new path
		// arrives as its own Create event.
		emit(logger, cb, "deleted", rel)
	}
}

func emit(logger *slog.Logger, cb EventCallback, kind, rel string) {
	logger.Debug("watcher: event", slog.String("op", kind), slog.String("path", rel))
	if cb != nil {
		cb(kind, rel)
	}
}

// announceDir reports any .md files found in a newly created directory.
func announceDir(vaultRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		emit(logger, cb, "created", filepath.ToSlash(rel))
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
