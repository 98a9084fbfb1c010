package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Benny93/socialnet-go/internal/network"
)

// ReloadDelay is how long the watcher waits after the last change before
// reloading, so a burst of writes from an editor triggers one reload.
const ReloadDelay = 500 * time.Millisecond

// WatchOptions tunes WatchNetworkFile.
type WatchOptions struct {
	// Delay overrides ReloadDelay when positive.
	Delay time.Duration

	// OnReload, when set, is called after every reload attempt.
	OnReload func(result *LoadResult, err error)
}

// WatchNetworkFile reloads the network file into net whenever it changes.
// A file that fails to load leaves the current graph in place.
// Blocks until the context is cancelled.
func WatchNetworkFile(ctx context.Context, path string, net *network.Network, logger *zap.Logger, opts WatchOptions) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = ReloadDelay
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it, so the directory
	// is watched and events are filtered by name.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("setting up watcher: %w", err)
	}

	batchTimer := time.NewTimer(delay)
	batchTimer.Stop()
	pending := false

	logger.Info("watching network file", zap.String("path", absPath))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldReload(event, absPath) {
				continue
			}
			pending = true
			batchTimer.Reset(delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-batchTimer.C:
			if !pending {
				continue
			}
			pending = false
			result, err := reload(absPath, net, logger)
			if opts.OnReload != nil {
				opts.OnReload(result, err)
			}
		}
	}
}

// reload loads the file and swaps the graph only on success.
func reload(path string, net *network.Network, logger *zap.Logger) (*LoadResult, error) {
	g, result, err := LoadNetworkFile(path, net.Limits())
	if err != nil {
		logger.Warn("network file reload failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	net.Replace(g)
	logger.Info("network file reloaded",
		zap.String("path", path),
		zap.Int("users", result.Users),
		zap.Int("friendships", result.Friendships),
	)
	return result, nil
}

// shouldReload reports whether event touches the watched file.
func shouldReload(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
