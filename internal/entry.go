// Package internal wires configuration, content loading and the tag and render
// commands together.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sitekit/internal/apperr"
	"github.com/starford/sitekit/internal/corpus"
	"github.com/starford/sitekit/internal/models"
	"github.com/starford/sitekit/internal/render"
	"github.com/starford/sitekit/internal/storage"
	"github.com/starford/sitekit/internal/tagcheck"
	"github.com/starford/sitekit/internal/tagusage"
	"github.com/starford/sitekit/internal/taxonomy"
	"github.com/starford/sitekit/internal/watch"
)

// ValidateOptions controls the validate command.
type ValidateOptions struct {
	JSONOut string // optional path for the JSON result
	Watch   bool   // keep running and re-validate on content changes
}

// AnalyzeOptions controls the analyze command.
type AnalyzeOptions struct {
	JSONOut string
}

// RenderOptions controls the render command.
type RenderOptions struct {
	OutDir string // overrides render.out_dir when set
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.logger == nil {
		// Structured JSON logs go to stderr; stdout carries the reports.
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// Validate checks every post's tags and prints the report. It returns
// apperr.ErrTagIssues when any tag fails, so the caller can exit non-zero.
func Validate(ctx context.Context, vo ValidateOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	store, err := app.contentStore()
	if err != nil {
		return err
	}
	tax, err := app.loadTaxonomy()
	if err != nil {
		return err
	}

	res, err := app.validateOnce(ctx, store, tax, vo.JSONOut)
	if err != nil {
		return err
	}

	if vo.Watch {
		// The exit status follows the last completed run.
		err := app.watchContent(ctx, store, func(ctx context.Context, changed []string) {
			app.logger.Info("content changed, re-validating", slog.Int("files", len(changed)))
			latest, err := app.validateOnce(ctx, store, tax, vo.JSONOut)
			if err != nil {
				app.logger.Error("validation run failed", slog.String("error", err.Error()))
				return
			}
			res = latest
		})
		if err != nil {
			return err
		}
	}

	if !res.Valid {
		return apperr.ErrTagIssues
	}
	return nil
}

func (app *application) validateOnce(ctx context.Context, store *storage.FS, tax *taxonomy.Config, jsonOut string) (models.ValidationResult, error) {
	docs, err := app.loader(store).Load(ctx)
	if err != nil {
		return models.ValidationResult{}, err
	}

	res := tagcheck.ValidateCorpus(docs, tax)
	if err := tagcheck.WriteReport(app.stdout, res); err != nil {
		return res, fmt.Errorf("write report: %w", err)
	}
	if jsonOut != "" {
		if err := writeJSON(jsonOut, res); err != nil {
			return res, err
		}
	}

	app.logger.Info("validation finished",
		slog.Int("posts", res.Stats.TotalPosts),
		slog.Int("issues", len(res.Issues)),
		slog.Bool("valid", res.Valid))
	return res, nil
}

// analysisOutput is the JSON shape of the analyze command.
type analysisOutput struct {
	tagusage.Report
	ReuseRate          float64 `json:"reuseRate"`
	SingleUsePercent   float64 `json:"singleUsePercent"`
	MultiUsePercent    float64 `json:"multiUsePercent"`
	AvgTagsPerDocument float64 `json:"avgTagsPerPost"`
	LowReuse           bool    `json:"lowReuse"`
}

// Analyze prints the tag usage report. It only fails on I/O errors.
func Analyze(ctx context.Context, ao AnalyzeOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	store, err := app.contentStore()
	if err != nil {
		return err
	}
	docs, err := app.loader(store).Load(ctx)
	if err != nil {
		return err
	}

	threshold := app.config.Analysis.ReuseThreshold
	rep := tagusage.Analyze(docs, app.config.Analysis.Rules)
	if err := tagusage.WriteReport(app.stdout, rep, threshold); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if ao.JSONOut != "" {
		out := analysisOutput{
			Report:             rep,
			ReuseRate:          rep.ReuseRate(),
			SingleUsePercent:   rep.SingleUsePercent(),
			MultiUsePercent:    rep.MultiUsePercent(),
			AvgTagsPerDocument: rep.AvgTagsPerDocument(),
			LowReuse:           rep.LowReuse(threshold),
		}
		if err := writeJSON(ao.JSONOut, out); err != nil {
			return err
		}
	}

	app.logger.Info("analysis finished",
		slog.Int("posts", rep.Documents),
		slog.Int("unique_tags", rep.UniqueTags),
		slog.Float64("reuse_rate", rep.ReuseRate()),
		slog.Int("suggestions", len(rep.Suggestions)))
	return nil
}

// Render converts every post to an annotated HTML fragment named after its slug.
func Render(ctx context.Context, ro RenderOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	store, err := app.contentStore()
	if err != nil {
		return err
	}

	outDir := app.config.Render.OutDir
	if ro.OutDir != "" {
		outDir = ro.OutDir
	}
	out, err := storage.EnsureFS(outDir)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	metas, err := store.List("", app.config.Content.Extensions)
	if err != nil {
		return err
	}

	r := render.New(app.logger)
	written := make(map[string]string, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := store.Read(m.Path)
		if err != nil {
			return err
		}
		doc := corpus.NewDocument(m.Path, m.Checksum, data)
		if prev, dup := written[doc.Slug]; dup {
			app.logger.Warn("duplicate slug, later post overwrites earlier one",
				slog.String("slug", doc.Slug),
				slog.String("path", m.Path),
				slog.String("previous", prev))
		}

		res, err := r.Render(data)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Path, err)
		}
		if err := out.Write(doc.Slug+".html", res.HTML); err != nil {
			return err
		}
		written[doc.Slug] = m.Path
		app.logger.Debug("rendered",
			slog.String("path", m.Path),
			slog.String("slug", doc.Slug),
			slog.Int("footnotes", res.Footnotes))
	}

	app.logger.Info("render finished", slog.Int("posts", len(written)), slog.String("out_dir", out.Root()))
	return nil
}

func (app *application) contentStore() (*storage.FS, error) {
	store, err := storage.NewFS(app.config.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init content: %w", err)
	}
	return store, nil
}

func (app *application) loader(store storage.Provider) *corpus.Loader {
	return corpus.NewLoader(store, app.config.Content.Extensions, app.config.Content.Workers, app.logger)
}

// loadTaxonomy loads the canonical tag config once. Absent and invalid
// configs both fall back to rule-only checks; only the invalid case warns.
func (app *application) loadTaxonomy() (*taxonomy.Config, error) {
	tax, err := taxonomy.Load(app.config.Taxonomy.Path)
	switch {
	case errors.Is(err, apperr.ErrInvalidTaxonomy):
		app.logger.Warn("canonical tag config is invalid, using rule-only checks",
			slog.String("path", app.config.Taxonomy.Path),
			slog.String("error", err.Error()))
	case err != nil:
		return nil, err
	}

	switch tax.State() {
	case taxonomy.StateAbsent:
		app.logger.Info("no canonical tag config, using rule-only checks",
			slog.String("path", app.config.Taxonomy.Path))
	case taxonomy.StateLoaded:
		app.logger.Info("canonical tag config loaded",
			slog.String("path", tax.Path()),
			slog.Int("canonical_tags", tax.CanonicalCount()))
		for _, tag := range tax.Drift() {
			app.logger.Warn("consolidation target is not a canonical tag", slog.String("tag", tag))
		}
	}
	return tax, nil
}

// watchContent runs the content watcher until a signal arrives or ctx ends.
func (app *application) watchContent(ctx context.Context, store *storage.FS, fn watch.ChangeFunc) error {
	w := watch.New(store.Root(), app.config.Content.Extensions, watch.DefaultDebounce, app.logger)
	if err := w.Prime(store); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		return w.Run(watchCtx, fn)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			app.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-watchCtx.Done():
		}
		stop()
		return nil
	})

	return g.Wait()
}

// writeJSON atomically writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	out, err := storage.EnsureFS(filepath.Dir(path))
	if err != nil {
		return err
	}
	return out.Write(filepath.Base(path), append(data, '\n'))
}
