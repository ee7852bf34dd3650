package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// DefaultDebounce is the quiet window between the last change and a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher turns filesystem changes under a content root into debounced
// rebuild requests.
type Watcher struct {
	root      string
	debounce  time.Duration
	rebuilder *Rebuilder
	logger    *slog.Logger

	mu    sync.Mutex
	timer *time.Timer

	readyOnce sync.Once
	ready     chan struct{}
}

// NewWatcher creates a Watcher for root. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(root string, debounce time.Duration, rebuilder *Rebuilder, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:      root,
		debounce:  debounce,
		rebuilder: rebuilder,
		logger:    logger,
		ready:     make(chan struct{}),
	}
}

// Ready is closed once every existing directory is watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if st, err := os.Stat(w.root); err != nil || !st.IsDir() {
		return ferrors.FileSystemError("content root is not a directory").
			WithContext("path", w.root).
			Build()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	w.addRecursive(fw, w.root)
	w.readyOnce.Do(func() { close(w.ready) })
	w.logger.Info("Watching content", logfields.Path(w.root), slog.Duration("debounce", w.debounce))

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || w.ignored(ev.Name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

// trigger restarts the debounce timer.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.rebuilder.Request("watch") })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// ignored reports events for hidden paths and editor scratch files.
func (w *Watcher) ignored(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		rel = p
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(seg) {
			return true
		}
	}
	return isScratchFile(filepath.Base(p))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func isScratchFile(base string) bool {
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		len(base) > 1 && strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
