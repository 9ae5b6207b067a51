package directory

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"namedesk/internal/infrastructure/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of filesystem events
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc receives the watched root after a debounced change
type ChangeFunc func(root string)

// Watcher watches one directory tree at a time. Watching a new root
// replaces the previous watch.
type Watcher struct {
	debounce time.Duration
	lister   *Lister
	onChange ChangeFunc
	logger   logging.Logger

	mu     sync.Mutex
	root   string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates an idle watcher. lister supplies the ignore patterns;
// events on ignored paths never fire onChange.
func NewWatcher(debounce time.Duration, lister *Lister, onChange ChangeFunc, logger logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if lister == nil {
		lister = NewLister(nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{
		debounce: debounce,
		lister:   lister,
		onChange: onChange,
		logger:   logger,
	}
}

// Watch starts watching root recursively. Watching the current root again
// is a no-op.
func (w *Watcher) Watch(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil && w.root == abs {
		return nil
	}
	w.stopLocked()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addDirsRecursive(fw, abs); err != nil {
		fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w.root, w.cancel, w.done = abs, cancel, done

	go w.run(ctx, fw, abs, done)
	w.logger.Info("watcher: started", "root", abs)
	return nil
}

// Root returns the watched root, or "" when idle
func (w *Watcher) Root() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.root
}

// Stop ends the current watch and waits for its goroutine to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.logger.Info("watcher: stopped", "root", w.root)
	w.root, w.cancel, w.done = "", nil, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, root string, done chan struct{}) {
	defer close(done)
	defer fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-fire:
			if w.onChange != nil {
				// Called off the event loop so a callback that re-lists and
				// re-watches the same root cannot block it.
				go w.onChange(root)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(fw, ev.Name); err != nil {
						w.logger.Warn("watcher: add new dir failed", "path", ev.Name, "error", err)
					}
				}
			}
			rel, err := filepath.Rel(root, ev.Name)
			if err != nil || w.lister.Ignored(rel) {
				continue
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("watcher: event", "path", rel, "op", ev.Op.String())
			schedule()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher: error", "error", err)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
