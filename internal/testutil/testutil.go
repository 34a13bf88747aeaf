// Package testutil provides shared test helpers for setting up content directories.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/sitekit/internal/storage"
)

// TestContent creates a temporary content directory with a storage.FS.
func TestContent(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Post renders a minimal post with the given slug and tags in flow-list form.
// An empty slug omits the slug line.
func Post(slug string, tags ...string) string {
	var b strings.Builder
	b.WriteString("---\ntitle: Test post\n")
	if slug != "" {
		fmt.Fprintf(&b, "slug: %q\n", slug)
	}
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = fmt.Sprintf("%q", tag)
	}
	fmt.Fprintf(&b, "tags: [%s]\n---\n\nBody of %s.\n", strings.Join(quoted, ", "), slug)
	return b.String()
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
