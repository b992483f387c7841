package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tsiemens/cgt/log"
	"github.com/tsiemens/cgt/tradefile"
)

// Editors often save in several steps.
const DefaultWatchDebounce = 200 * time.Millisecond

func addWatchDirs(watcher *fsnotify.Watcher, basePath string) error {
	if err := watcher.Add(basePath); err != nil {
		return fmt.Errorf("Watching %s: %w", basePath, err)
	}
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			dir := filepath.Join(basePath, e.Name())
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("Watching %s: %w", dir, err)
			}
		}
	}
	return nil
}

func isTradeFileEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Ext(event.Name) == tradefile.TradeFileExt
}

// WatchTrades calls run once, then again each time the trade files under
// basePath change, until ctx is done. Errors from run are printed and do not
// stop watching.
func WatchTrades(
	ctx context.Context,
	basePath string,
	debounce time.Duration,
	run func() error,
	errPrinter log.ErrorPrinter) error {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("Creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, basePath); err != nil {
		return err
	}

	rerun := func() {
		if err := run(); err != nil {
			errPrinter.Ln("Error:", err)
		}
	}
	rerun()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Tracef("watch", "%s", event)
			if event.Has(fsnotify.Create) {
				// New year directories need watching too
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						errPrinter.Ln("Warning: Could not watch", event.Name, err)
					}
					continue
				}
			}
			if !isTradeFileEvent(event) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			errPrinter.Ln("Warning: File watcher:", err)
		case <-timer.C:
			rerun()
		}
	}
}
