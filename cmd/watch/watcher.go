package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hepsoft/rootsense/generator"
	"github.com/hepsoft/rootsense/internal/logger"
	"github.com/hepsoft/rootsense/scan"
)

const debounceInterval = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":    true,
	".svn":    true,
	".idea":   true,
	".vscode": true,
}

func watchAndRegenerate(ctx context.Context, root string, cfg generator.Config, log *logger.Console) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevantChange(event, cfg) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				regenerate(cfg, log)
			})

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}

func regenerate(cfg generator.Config, log *logger.Console) {
	summary, err := generator.Run(cfg)
	if err != nil {
		log.Errorf("regeneration failed: %v", err)
		return
	}
	log.Successf("wrote %s (%d headers included, %d excluded)",
		summary.OutputPath, len(summary.Included), len(summary.Excluded))
}

// isRelevantChange filters watcher noise. The aggregate itself is ignored,
// otherwise every regeneration would trigger the next one.
func isRelevantChange(event fsnotify.Event, cfg generator.Config) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if name == cfg.OutputName {
		return false
	}
	return matchesExtensions(name, cfg.Extensions)
}

func matchesExtensions(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, want := range extensions {
		if want == scan.Wildcard || want == ext {
			return true
		}
	}
	return false
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return addWatchDirsWithAdder(root, watcher.Add)
}

// addWatchDirsWithAdder walks the tree and registers every directory.
// Directories that vanish mid-walk are tolerated.
func addWatchDirsWithAdder(root string, add func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := add(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirs(watcher, path)
	}
}
