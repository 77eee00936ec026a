package builder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch builds once, then rebuilds whenever a JavaScript or docs source
// changes. Bursts of events within the configured debounce interval cause a
// single rebuild. onBuild, when set, sees the result of every build. Watch
// returns when ctx is done.
func (b *Builder) Watch(ctx context.Context, onBuild func(*Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	outAbs, _ := filepath.Abs(b.cfg.Out)
	for _, root := range append([]string{b.cfg.Docs}, b.cfg.Sources...) {
		if err := b.watchTree(watcher, root, outAbs); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}

	rebuild := func() {
		report, err := b.Build(ctx)
		if err != nil {
			b.log.WithError(err).Error("build failed")
		}
		if onBuild != nil {
			onBuild(report, err)
		}
	}
	rebuild()

	// pending fires once the debounce interval has passed without events.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := b.watchTree(watcher, event.Name, outAbs); err != nil {
						b.log.WithError(err).WithField("dir", event.Name).Warn("cannot watch new directory")
					}
					continue
				}
			}
			if !b.relevant(event) {
				continue
			}
			b.log.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("source changed")
			pending = time.After(b.cfg.Debounce)
		case <-pending:
			pending = nil
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.WithError(err).Warn("watch error")
		}
	}
}

func (b *Builder) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if outAbs, err := filepath.Abs(b.cfg.Out); err == nil {
		if abs, err := filepath.Abs(event.Name); err == nil && strings.HasPrefix(abs, outAbs+string(filepath.Separator)) {
			return false
		}
	}
	return strings.HasSuffix(event.Name, b.cfg.DocsSuffix) || b.scanner.Matches(event.Name)
}

// watchTree adds root and its subdirectories, skipping the build directory,
// dot directories and node_modules.
func (b *Builder) watchTree(w *fsnotify.Watcher, root, outAbs string) error {
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.IsDir() {
			return nil
		}
		if path != root {
			if abs, _ := filepath.Abs(path); abs == outAbs || strings.HasPrefix(de.Name(), ".") || de.Name() == "node_modules" {
				return filepath.SkipDir
			}
		}
		return w.Add(path)
	})
}
