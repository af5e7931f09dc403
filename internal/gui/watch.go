package gui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	. "modernc.org/tk9.0"

	"github.com/thiagokokada/gitrepo-go/internal/app"
	"github.com/thiagokokada/gitrepo-go/internal/debounce"
)

const watchDebounceDelay = 350 * time.Millisecond

// ignoredGitPaths are matched against paths relative to .git. Running git
// itself touches these, so reacting to them would refresh in a loop.
var ignoredGitPaths = []string{
	"**/*.lock",
	"**/*.ipc",
	"index",
	"FETCH_HEAD",
	"gc.pid",
	"objects/**",
	"logs/**",
}

type watchState struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
}

// restartWatcher points the watcher at root's .git directory. An empty root
// only stops it.
func (w *window) restartWatcher(root string) {
	w.stopWatcher()
	if !w.cfg.watch || root == "" {
		return
	}
	if err := w.startWatcher(root); err != nil {
		slog.Warn("repository watcher disabled", slog.String("root", root), slog.Any("error", err))
	}
}

func (w *window) startWatcher(root string) error {
	paths := watchPaths(root)
	if len(paths) == 0 {
		return fmt.Errorf("no .git directory under %s", root)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	for _, path := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			err := errors.Join(err, watcher.Close())
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	w.watch.mu.Lock()
	defer w.watch.mu.Unlock()
	debounce.Ensure(&w.watch.debounce, watchDebounceDelay, func() {
		PostEvent(func() {
			w.ctrl.Dispatch(app.Request{Op: app.OpRefreshLocal})
		}, false)
	})
	w.watch.watcher = watcher
	go w.watchLoop(watcher, paths[0])
	return nil
}

func (w *window) stopWatcher() {
	w.watch.mu.Lock()
	defer w.watch.mu.Unlock()
	if w.watch.debounce != nil {
		w.watch.debounce.Stop()
	}
	if w.watch.watcher != nil {
		if err := w.watch.watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
		w.watch.watcher = nil
	}
}

func (w *window) watchLoop(fw *fsnotify.Watcher, gitDir string) {
	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(gitDir, ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.scheduleLocalRefresh(fw)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *window) scheduleLocalRefresh(fw *fsnotify.Watcher) {
	w.watch.mu.Lock()
	defer w.watch.mu.Unlock()
	if w.watch.watcher != fw || w.watch.debounce == nil {
		return
	}
	w.watch.debounce.Trigger()
}

// watchPaths lists the directories to watch for root. fsnotify is not
// recursive, so the ref directories are added explicitly. Nil when root has
// no .git directory.
func watchPaths(root string) []string {
	if root == "" {
		return nil
	}
	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return nil
	}
	paths := []string{gitDir}
	for _, sub := range []string{filepath.Join("refs", "heads"), filepath.Join("refs", "tags")} {
		p := filepath.Join(gitDir, sub)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			paths = append(paths, p)
		}
	}
	return paths
}

func shouldIgnoreWatchPath(gitDir, name string) bool {
	rel, err := filepath.Rel(gitDir, name)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range ignoredGitPaths {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
