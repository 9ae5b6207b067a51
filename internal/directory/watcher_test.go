package directory

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"namedesk/internal/testutils"
)

type changeRecorder struct {
	mu    sync.Mutex
	roots []string
}

func (c *changeRecorder) record(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roots = append(c.roots, root)
}

func (c *changeRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.roots)
}

func (c *changeRecorder) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.roots) == 0 {
		return ""
	}
	return c.roots[len(c.roots)-1]
}

func TestWatcherReportsChangesInSubdirectories(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{"sub/a.txt": "a"})

	rec := &changeRecorder{}
	w := NewWatcher(20*time.Millisecond, nil, rec.record, nil)
	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Stop()

	testutils.WriteTree(t, root, map[string]string{"sub/b.txt": "b"})
	testutils.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return rec.count() > 0
	}, "no change reported for nested write")

	abs, _ := filepath.Abs(root)
	if rec.last() != abs {
		t.Errorf("root = %q, want %q", rec.last(), abs)
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	rec := &changeRecorder{}
	w := NewWatcher(150*time.Millisecond, nil, rec.record, nil)
	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		testutils.WriteTree(t, root, map[string]string{"f.txt": string(rune('a' + i))})
	}
	testutils.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return rec.count() > 0
	}, "burst not reported")
	time.Sleep(300 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("burst reported %d times, want 1", n)
	}
}

func TestWatcherIgnoresMetadataFile(t *testing.T) {
	root := t.TempDir()
	rec := &changeRecorder{}
	w := NewWatcher(20*time.Millisecond, nil, rec.record, nil)
	if err := w.Watch(root); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, DefaultIgnore), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("metadata write reported %d changes", n)
	}
}

func TestWatcherReplaceAndStop(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	rec := &changeRecorder{}
	w := NewWatcher(20*time.Millisecond, nil, rec.record, nil)

	if err := w.Watch(first); err != nil {
		t.Fatalf("Watch first: %v", err)
	}
	if err := w.Watch(first); err != nil {
		t.Fatalf("re-watching the same root: %v", err)
	}
	if err := w.Watch(second); err != nil {
		t.Fatalf("Watch second: %v", err)
	}
	abs, _ := filepath.Abs(second)
	if w.Root() != abs {
		t.Errorf("Root = %q, want %q", w.Root(), abs)
	}

	w.Stop()
	w.Stop()
	if w.Root() != "" {
		t.Errorf("Root after Stop = %q", w.Root())
	}

	testutils.WriteTree(t, second, map[string]string{"late.txt": ""})
	time.Sleep(150 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("stopped watcher reported %d changes", n)
	}
}

func TestWatchMissingRoot(t *testing.T) {
	w := NewWatcher(0, nil, nil, nil)
	if err := w.Watch(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("watching a missing directory should fail")
	}
	if w.Root() != "" {
		t.Error("failed Watch must leave the watcher idle")
	}
}
