package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sitekit/internal/testutil"
)

var exts = []string{".md"}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(_ context.Context, changed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changed)
}

func (r *recorder) has(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		for _, p := range b {
			if p == path {
				return true
			}
		}
	}
	return false
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startWatcher(t *testing.T) (string, *recorder) {
	t.Helper()
	dir, store := testutil.TestContent(t)
	testutil.WriteFile(t, dir, "existing.md", testutil.Post("existing", "go"))

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	w := New(store.Root(), exts, 50*time.Millisecond, logger)
	require.NoError(t, w.Prime(store))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec := &recorder{}
	go func() { _ = w.Run(ctx, rec.record) }()
	time.Sleep(100 * time.Millisecond)

	return store.Root(), rec
}

func TestWatcher_NewFileTriggersRun(t *testing.T) {
	root, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte(testutil.Post("new", "web")), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("new.md")
	}, "new file did not trigger a run")
}

func TestWatcher_UnchangedRewriteIgnored(t *testing.T) {
	root, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(root, "existing.md"), []byte(testutil.Post("existing", "go")), 0o644)
	time.Sleep(500 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("identical rewrite triggered %d run(s)", rec.count())
	}
}

func TestWatcher_OtherExtensionsIgnored(t *testing.T) {
	root, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0o644)
	time.Sleep(500 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("non-content file triggered %d run(s)", rec.count())
	}
}

func TestWatcher_DeleteTriggersRun(t *testing.T) {
	root, rec := startWatcher(t)

	_ = os.Remove(filepath.Join(root, "existing.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("existing.md")
	}, "delete did not trigger a run")
}

func TestWatcher_NewDirectoryWatched(t *testing.T) {
	root, rec := startWatcher(t)

	sub := filepath.Join(root, "2026")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "post.md"), []byte(testutil.Post("post", "go")), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(filepath.Join("2026", "post.md"))
	}, "file in new directory did not trigger a run")
}

func TestSettle_TruncateThenRestoreIsNoChange(t *testing.T) {
	dir, store := testutil.TestContent(t)
	original := testutil.Post("existing", "go")
	testutil.WriteFile(t, dir, "existing.md", original)

	w := New(store.Root(), exts, 0, nil)
	require.NoError(t, w.Prime(store))

	path := filepath.Join(dir, "existing.md")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	assert.Empty(t, w.settle(map[string]struct{}{"existing.md": {}}))
}

func TestSettle_ReportsEditsOnceAndDeletes(t *testing.T) {
	dir, store := testutil.TestContent(t)
	testutil.WriteFile(t, dir, "a.md", testutil.Post("a", "go"))
	testutil.WriteFile(t, dir, "b.md", testutil.Post("b", "go"))

	w := New(store.Root(), exts, 0, nil)
	require.NoError(t, w.Prime(store))

	testutil.WriteFile(t, dir, "b.md", testutil.Post("b", "web"))
	require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))
	pending := map[string]struct{}{"a.md": {}, "b.md": {}, "never.md": {}}

	assert.Equal(t, []string{"a.md", "b.md"}, w.settle(pending))
	assert.Empty(t, w.settle(pending), "already delivered")
}

func TestWatcher_TruncateThenRestoreIgnored(t *testing.T) {
	root, rec := startWatcher(t)
	path := filepath.Join(root, "existing.md")

	_ = os.WriteFile(path, nil, 0o644)
	time.Sleep(10 * time.Millisecond)
	_ = os.WriteFile(path, []byte(testutil.Post("existing", "go")), 0o644)
	time.Sleep(400 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("net-unchanged file triggered %d run(s)", rec.count())
	}
}
