package corpus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sitekit/internal/apperr"
	"github.com/starford/sitekit/internal/models"
	"github.com/starford/sitekit/internal/testutil"
)

var exts = []string{".md", ".mdx"}

func TestLoad_SlugsAndTags(t *testing.T) {
	dir, store := testutil.TestContent(t)
	testutil.WriteFile(t, dir, "a.md", testutil.Post("alpha", "go", "web"))
	testutil.WriteFile(t, dir, "b.md", testutil.Post("", "go"))
	testutil.WriteFile(t, dir, "c/index.mdx", "no frontmatter here")
	testutil.WriteFile(t, dir, "notes.txt", testutil.Post("ignored", "x"))

	docs, err := NewLoader(store, exts, 4, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	bySlug := map[string]models.Document{}
	for _, d := range docs {
		bySlug[d.Slug] = d
	}
	assert.Equal(t, []string{"go", "web"}, bySlug["alpha"].Tags)
	assert.Equal(t, []string{"go"}, bySlug["b"].Tags)
	assert.Empty(t, bySlug["c"].Tags)
	assert.NotEmpty(t, bySlug["alpha"].Checksum)
}

func TestLoad_KeepsListingOrder(t *testing.T) {
	dir, store := testutil.TestContent(t)
	for i := 0; i < 20; i++ {
		testutil.WriteFile(t, dir, fmt.Sprintf("post-%02d.md", i), testutil.Post(fmt.Sprintf("p%02d", i), "x"))
	}

	sequential, err := NewLoader(store, exts, 1, nil).Load(context.Background())
	require.NoError(t, err)
	parallel, err := NewLoader(store, exts, 8, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, store := testutil.TestContent(t)
	docs, err := NewLoader(store, exts, 2, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoad_CancelledContext(t *testing.T) {
	dir, store := testutil.TestContent(t)
	testutil.WriteFile(t, dir, "a.md", testutil.Post("a", "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(store, exts, 1, nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDocument_UnknownSlugFallsBackToFileName(t *testing.T) {
	doc := NewDocument("blog/hello.md", "sum", []byte("plain text"))
	assert.Equal(t, "hello", doc.Slug)
	assert.Equal(t, "sum", doc.Checksum)
}

// flakyStore lists files it can no longer read, as happens when a post is
// deleted while a scan is running.
type flakyStore struct {
	metas []models.DocumentMetadata
	files map[string]string
	err   error
}

func (s *flakyStore) List(string, []string) ([]models.DocumentMetadata, error) {
	return s.metas, nil
}

func (s *flakyStore) Read(path string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	content, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
	}
	return []byte(content), nil
}

func (s *flakyStore) Write(string, []byte) error { return nil }

func TestLoad_SkipsVanishedDocuments(t *testing.T) {
	store := &flakyStore{
		metas: []models.DocumentMetadata{{Path: "a.md"}, {Path: "gone.md"}, {Path: "c.md"}},
		files: map[string]string{
			"a.md": testutil.Post("a", "go"),
			"c.md": testutil.Post("c", "web"),
		},
	}

	docs, err := NewLoader(store, exts, 2, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Slug)
	assert.Equal(t, "c", docs[1].Slug)
}

func TestLoad_ReadErrorAborts(t *testing.T) {
	store := &flakyStore{
		metas: []models.DocumentMetadata{{Path: "a.md"}},
		err:   errors.New("permission denied"),
	}

	_, err := NewLoader(store, exts, 1, nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus:")
}
