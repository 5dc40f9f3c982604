// Package watch reports repository and queue changes. It only notifies;
// reloading stays an explicit operator action.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDelay = 350 * time.Millisecond

type Watcher struct {
	fs        *fsnotify.Watcher
	debounce  *debouncer
	events    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Paths lists the directories whose changes mean the review data may be
// stale: jj operation heads or the git directory, plus the queue directory.
func Paths(repoRoot, queueDir string) []string {
	var paths []string
	opHeads := filepath.Join(repoRoot, ".jj", "repo", "op_heads", "heads")
	gitDir := filepath.Join(repoRoot, ".git")
	switch {
	case isDir(opHeads):
		paths = append(paths, opHeads)
	case isDir(gitDir):
		paths = append(paths, gitDir, filepath.Join(gitDir, "refs", "heads"))
	}
	if queueDir != "" && isDir(queueDir) {
		paths = append(paths, queueDir)
	}
	return paths
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func Start(paths []string, delay time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("nothing to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, path := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := fsw.Add(path); err != nil {
			err := errors.Join(err, fsw.Close())
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w := &Watcher{
		fs:     fsw,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	w.debounce = newDebouncer(delay, w.post)
	go w.loop()
	return w, nil
}

// Events receives one value per debounced burst of changes.
func (w *Watcher) Events() <-chan struct{} { return w.events }

func (w *Watcher) post() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnore(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.debounce.Trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func shouldIgnore(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".ipc", ".tmp":
		return true
	}
	return false
}

func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.debounce.Stop()
		w.closeErr = w.fs.Close()
	})
	return w.closeErr
}
