package content

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce coalesces editor save bursts into one notification.
const watchDebounce = 150 * time.Millisecond

// AssetWatcher notifies surfaces when dev assets change on disk.
type AssetWatcher struct {
	logger zerolog.Logger
	dir    string
	notify func(paths []string)
}

// NewAssetWatcher creates a watcher over dir. notify receives the batch of
// changed paths after each debounce window.
func NewAssetWatcher(dir string, notify func(paths []string), logger zerolog.Logger) *AssetWatcher {
	return &AssetWatcher{logger: logger, dir: dir, notify: notify}
}

// Run watches until ctx is cancelled. Subdirectories are watched
// recursively, including ones created while running.
func (w *AssetWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, w.dir); err != nil {
		return err
	}

	w.logger.Info().Str("dir", w.dir).Msg("watching dev assets")

	var (
		pending []string
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}
			pending = append(pending, event.Name)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			batch := dedupe(pending)
			pending = nil
			fire = nil
			w.logger.Debug().Int("files", len(batch)).Msg("dev assets changed")
			w.notify(batch)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("asset watcher error")
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
