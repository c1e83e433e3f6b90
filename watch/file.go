package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchFile notifies when name is written or replaced. The parent directory is
// watched since editors often save by renaming a new file over the old one.
func watchFile(ctx context.Context, name string, logger *slog.Logger) (<-chan struct{}, error) {
	name, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", name, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: create watcher: %w", name, err)
	}
	if err := watcher.Add(filepath.Dir(name)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: update watcher: %w", name, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					logger.Debug("watch: config changed", "file", name, "op", event.Op.String())
					notify(ch)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch: watcher error", "file", name, "error", err)
			}
		}
	}()
	return ch, nil
}
