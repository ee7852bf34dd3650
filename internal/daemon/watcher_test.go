package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedRebuilds struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordedRebuilds) fn(_ context.Context, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *recordedRebuilds) count() int {
	return len(r.snapshot())
}

func (r *recordedRebuilds) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reasons...)
}

func startWatcher(t *testing.T, root string) *recordedRebuilds {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recordedRebuilds{}
	rb := NewRebuilder(rec.fn, nil)
	w := NewWatcher(root, 30*time.Millisecond, rb, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); rb.Run(ctx) }()
	go func() { defer wg.Done(); _ = w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not become ready")
	}
	return rec
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(root, "page.md"), []byte{byte('a' + i)}, 0o600))
	}

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Never(t, func() bool { return rec.count() > 1 }, 150*time.Millisecond, 10*time.Millisecond)
	require.Equal(t, []string{"watch"}, rec.snapshot())
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	dir := filepath.Join(root, "speedrun")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "halo.md"), []byte("# Halo"), 0o600))
	require.Eventually(t, func() bool { return rec.count() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresHiddenAndScratchFiles(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".draft.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "page.md.swp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "page.md~"), []byte("x"), 0o600))

	require.Never(t, func() bool { return rec.count() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestWatcher_MissingRootFails(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, NewRebuilder(func(context.Context, string) error { return nil }, nil), nil)
	require.Error(t, w.Run(context.Background()))
}

func TestIgnored(t *testing.T) {
	w := NewWatcher("/content", 0, nil, nil)
	cases := map[string]bool{
		"/content/halo/index.md":      false,
		"/content/halo/toc.yml":       false,
		"/content/.git/HEAD":          true,
		"/content/halo/.hidden.md":    true,
		"/content/halo/index.md.swp":  true,
		"/content/halo/index.md.swx":  true,
		"/content/halo/index.md~":     true,
		"/content/halo/#index.md#":    true,
		"/content/halo/upload.tmp":    true,
		"/content/halo/notes/deep.md": false,
	}
	for p, want := range cases {
		require.Equal(t, want, w.ignored(p), p)
	}
}
