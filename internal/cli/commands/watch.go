package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/tmdlint/internal/parser"
)

// watchDebounce is the quiet period after the last change before a re-run.
var watchDebounce = 100 * time.Millisecond

// watchModel re-runs run whenever a .tmdl file below modelPath changes,
// until ctx is canceled or the process is interrupted. Runs never overlap;
// changes made during a run trigger one more run afterwards.
func watchModel(ctx context.Context, cc *CommandContext, modelPath string, run func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, modelPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", modelPath, err)
	}
	cc.Logger.Info("watching model", "path", modelPath)
	cc.Renderer.Success("watching " + modelPath + " for changes (Ctrl+C to stop)")

	trigger := make(chan struct{}, 1)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-egctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Create) {
					// new folders are watched as they appear
					_ = watchDirRecursive(watcher, event.Name)
				}
				if !isModelChange(event) {
					continue
				}

				cc.Logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(watchDebounce, func() {
					select {
					case trigger <- struct{}{}:
					default:
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				cc.Logger.Error("watcher error", "error", err)
			}
		}
	})

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-trigger:
				if err := run(egctx); err != nil && egctx.Err() == nil {
					cc.Renderer.Warning(err.Error())
				}
			}
		}
	})

	return eg.Wait()
}

func isModelChange(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), parser.FileExtension) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
