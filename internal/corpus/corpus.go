// Package corpus scans the content directory and extracts tags and slugs from every document.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sitekit/internal/apperr"
	"github.com/starford/sitekit/internal/models"
	"github.com/starford/sitekit/internal/parser"
	"github.com/starford/sitekit/internal/storage"
)

// Loader reads documents from a storage provider.
type Loader struct {
	store   storage.Provider
	exts    []string
	workers int
	logger  *slog.Logger
}

// NewLoader creates a loader for files with the given extensions.
// workers bounds concurrent reads; values below 1 mean sequential.
func NewLoader(store storage.Provider, exts []string, workers int, logger *slog.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, exts: exts, workers: workers, logger: logger}
}

// Load lists and parses every document. The result keeps listing order
// regardless of how many reads ran in parallel. Files removed between listing
// and reading are skipped; any other read failure aborts the scan.
func (l *Loader) Load(ctx context.Context) ([]models.Document, error) {
	metas, err := l.store.List("", l.exts)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, len(metas))
	found := make([]bool, len(metas))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			data, err := l.store.Read(m.Path)
			if errors.Is(err, apperr.ErrNotFound) {
				l.logger.Warn("corpus: document vanished", slog.String("path", m.Path))
				return nil
			}
			if err != nil {
				return fmt.Errorf("corpus: %w", err)
			}
			docs[i] = NewDocument(m.Path, m.Checksum, data)
			found[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := docs[:0]
	for i, doc := range docs {
		if found[i] {
			out = append(out, doc)
		}
	}
	docs = out

	l.logger.Debug("corpus: loaded", slog.Int("documents", len(docs)))
	return docs, nil
}

// NewDocument builds a Document from raw text. The slug comes from the
// frontmatter when present, otherwise from the file name.
func NewDocument(path, sum string, data []byte) models.Document {
	fm := parser.Extract(data)
	slug := fm.Slug
	if slug == "" || slug == parser.UnknownSlug {
		slug = parser.FileSlug(path)
	}
	return models.Document{
		Path:     path,
		Slug:     slug,
		Tags:     fm.Tags,
		Checksum: sum,
	}
}
