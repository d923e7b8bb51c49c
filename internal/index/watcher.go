package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/storage"
)

const debounceDelay = 300 * time.Millisecond

// SyncCallback is called after every watcher-driven sync run.
type SyncCallback func(Report, error)

// Watch watches the workspace root and its memory/ directory and runs a full
// Sync shortly after markdown files change, until ctx is cancelled. Bursts of
// events collapse into one run. Removed files are not deleted from the store.
//
// A memory/ directory created after Watch starts is picked up automatically.
func Watch(ctx context.Context, db MemoryIndex, p storage.Provider, r *redact.Redactor, logger *slog.Logger, cb SyncCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := p.Root()
	memDir := filepath.Join(root, storage.MemoryDir)
	if err := w.Add(root); err != nil {
		return err
	}
	watchMemoryDir(w, memDir, logger)

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounceDelay)
			fire = timer.C
		} else {
			timer.Reset(debounceDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			rep, syncErr := Sync(ctx, db, p, r, logger)
			if syncErr != nil {
				logger.Warn("watcher: sync failed", slog.String("error", syncErr.Error()))
			}
			if cb != nil {
				cb(rep, syncErr)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name == memDir && ev.Op&fsnotify.Create != 0 {
				watchMemoryDir(w, memDir, logger)
				schedule()
				continue
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("file", filepath.Base(ev.Name)), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func watchMemoryDir(w *fsnotify.Watcher, dir string, logger *slog.Logger) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.Add(dir); err != nil {
		logger.Warn("watcher: add memory dir failed", slog.String("error", err.Error()))
	}
}
