package keymap

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Watch reports changed files from the given list. Editors tend to write a file
// several times in a row, bursts are collapsed into one notification per file and quiet period.
// Directories of the files are watched so replaced files are still tracked.
func Watch(ctx context.Context, quiet time.Duration, paths ...string) <-chan string {
	var changes = make(chan string)

	go func() {
		defer close(changes)
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Info("failed to create file watcher", zap.Error(err), logger.Warning)
			return
		}
		defer watcher.Close()

		watched := make(map[string]bool, len(paths))
		for _, path := range paths {
			abs, err := filepath.Abs(path)
			if err != nil {
				continue
			}
			watched[abs] = true
			err = watcher.Add(filepath.Dir(abs))
			if err != nil {
				log.Info("failed to watch directory", zap.String("path", path), zap.Error(err), logger.Warning)
			}
		}

		debounced := debounce.New(quiet)
		pending := make(chan string, len(watched)+1)

		var mu sync.Mutex
		dirty := make(map[string]bool, len(watched))
		flush := func() {
			mu.Lock()
			defer mu.Unlock()
			for name := range dirty {
				select {
				case pending <- name:
				default:
				}
				delete(dirty, name)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case name := <-pending:
				select {
				case changes <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Info("file watcher error", zap.Error(err), logger.Debug)
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || !watched[name] {
					continue
				}
				log.Info("change detected", zap.String("path", event.Name), logger.Debug)
				mu.Lock()
				dirty[name] = true
				mu.Unlock()
				debounced(flush)
			}
		}
	}()

	return changes
}
