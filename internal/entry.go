// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/assets"
	"github.com/starford/raido/internal/blob"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/flow"
	"github.com/starford/raido/internal/rewrite"
	"github.com/starford/raido/internal/sink"
)

// Run generates and publishes every archived course: one course at a time,
// one module at a time, one item at a time.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	db, err := catalog.Open(cfg.Archive.SQLitePath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	courses, err := db.Courses()
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	if len(courses) == 0 {
		// A legitimate nothing-to-do state, not a failure.
		logger.Warn("nothing to generate", slog.String("reason", apperr.ErrNoCourses.Error()))
		return nil
	}

	_, resolver, closeStore, err := app.assetPipeline(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	documentSink, err := app.documentSink()
	if err != nil {
		return err
	}

	rewriter := rewrite.New(db, resolver, logger)
	builder := flow.NewBuilder(db, rewriter, resolver, documentSink, logger)

	for _, course := range courses {
		logger.Info("generating course", slog.String("course", course.Slug))
		if err := builder.BuildCourse(ctx, course); err != nil {
			return fmt.Errorf("generate course %s: %w", course.Slug, err)
		}
	}

	logger.Info("generation complete", slog.Int("courses", len(courses)))
	return nil
}

// Backup publishes the catalog database itself to the document sink under a
// timestamped name.
func Backup(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(app.config.Archive.SQLitePath)
	if err != nil {
		return fmt.Errorf("read catalog db: %w", err)
	}

	documentSink, err := app.documentSink()
	if err != nil {
		return err
	}

	name := fmt.Sprintf("course_%s.db", time.Now().Format("2006-01-02-15-04"))
	if err := documentSink.Publish(ctx, name, data); err != nil {
		return fmt.Errorf("backup catalog db: %w", err)
	}
	app.logger.Info("catalog backed up", slog.String("name", name), slog.Int("bytes", len(data)))
	return nil
}

// Prune runs blob-store maintenance over every course namespace: duplicate
// removal and/or deletion by key extension.
func Prune(ctx context.Context, duplicates bool, ext string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	db, err := catalog.Open(app.config.Archive.SQLitePath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer db.Close()

	courses, err := db.Courses()
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}

	store, _, closeStore, err := app.assetPipeline(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}
	if store == nil {
		return fmt.Errorf("prune requires publish mode (no blob store configured)")
	}

	for _, course := range courses {
		if duplicates {
			if _, err := store.PruneDuplicates(ctx, course.Slug); err != nil {
				return fmt.Errorf("prune duplicates for %s: %w", course.Slug, err)
			}
		}
		if ext != "" {
			if _, err := store.PruneByExtension(ctx, course.Slug, ext); err != nil {
				return fmt.Errorf("prune %s objects for %s: %w", ext, course.Slug, err)
			}
		}
	}
	return nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	app.logger.Info("configuration loaded",
		slog.String("archive_root", app.config.Archive.Root),
		slog.String("sqlite_path", app.config.Archive.SQLitePath),
		slog.String("assets_mode", app.config.Assets.Mode),
		slog.String("sink_mode", app.config.Sink.Mode))
	return app, nil
}

// assetPipeline builds the dedup store and resolver for the configured mode.
// In relative mode no blob store is needed and store is nil. The returned
// close function releases the remote client when one was created.
func (a *application) assetPipeline(ctx context.Context) (*assets.Store, *assets.Resolver, func() error, error) {
	cfg := a.config
	var (
		bs      = a.blob
		closeFn func() error
	)
	if bs == nil && cfg.Assets.Mode == assets.ModePublish {
		gcs, err := blob.NewGCS(ctx, cfg.Assets.Bucket, cfg.Assets.CredentialsFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init blob store: %w", err)
		}
		bs = gcs
		closeFn = gcs.Close
	}

	var store *assets.Store
	if bs != nil {
		store = assets.NewStore(assets.StoreConfig{
			Blob:          bs,
			Root:          cfg.Archive.Root,
			KeyPrefix:     cfg.Assets.KeyPrefix,
			MaxImageWidth: cfg.Assets.MaxImageWidth,
			Logger:        a.logger,
			Progress:      uploadProgress,
		})
	}

	resolver := assets.NewResolver(cfg.Assets.Mode, cfg.Assets.BaseURL, cfg.Archive.Root, store)
	return store, resolver, closeFn, nil
}

func (a *application) documentSink() (sink.Sink, error) {
	if a.sink != nil {
		return a.sink, nil
	}
	cfg := a.config
	if cfg.Sink.Mode == SinkModeRemote {
		return sink.NewHTTP(cfg.Sink.Endpoint, cfg.Sink.Token, a.logger), nil
	}
	local, err := sink.NewLocal(cfg.Sink.OutDir)
	if err != nil {
		return nil, fmt.Errorf("init local sink: %w", err)
	}
	return local, nil
}

// uploadProgress renders a byte progress bar for one blob transfer.
func uploadProgress(label string, size int64) blob.ProgressFunc {
	bar := progressbar.DefaultBytes(size, label)
	return func(written, _ int64) {
		_ = bar.Set64(written)
	}
}
