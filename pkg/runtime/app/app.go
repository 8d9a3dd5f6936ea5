// Package app wires the services a resp-atlas process runs on out of its
// configuration. Both the CLI and the web entrypoint start from Build.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/de-tools/resp-atlas/pkg/pages"
	"github.com/de-tools/resp-atlas/pkg/services/config"
	"github.com/de-tools/resp-atlas/pkg/services/content"
	"github.com/de-tools/resp-atlas/pkg/services/dashboard"
	"github.com/de-tools/resp-atlas/pkg/services/filter"
	"github.com/de-tools/resp-atlas/pkg/services/hydrate"
	"github.com/de-tools/resp-atlas/pkg/services/ingest"
	"github.com/de-tools/resp-atlas/pkg/services/source"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/snapshot"
	"github.com/rs/zerolog"
)

type App struct {
	Config    *config.Config
	Catalog   *pages.Catalog
	Loader    *source.Loader
	Filterer  *filter.Filterer
	Dashboard dashboard.Service
	Snapshots snapshot.Store
	Runs      runs.Store
	Ingester  *ingest.Ingester

	db *sql.DB
}

// Load reads the config at configPath, applies overrides and builds the
// App. The global log level follows log_level.
func Load(ctx context.Context, configPath string, overrides ...func(*config.Config)) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	zerolog.SetGlobalLevel(cfg.Level())
	return Build(ctx, cfg)
}

// Build opens the local store and assembles the pipeline. The returned
// App must be closed.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := zerolog.Ctx(ctx)

	registry, err := source.NewRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	catalog, err := pages.NewCatalog(pages.Builtin()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in pages: %w", err)
	}
	if cfg.PagesDir != "" {
		n, err := catalog.LoadDir(cfg.PagesDir)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("dir", cfg.PagesDir).Int("pages", n).Msg("page configs loaded")
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DbPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	snapshots, err := snapshot.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	runStore, err := runs.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create ingest run store: %w", err)
	}

	cache := filter.NewNop()
	if cfg.CacheSize > 0 {
		cache = filter.NewLRU(cfg.CacheSize)
	}
	filterer := filter.NewFilterer(cache)
	loader := source.NewLoader(registry, source.NewFactory(snapshots))

	svc := dashboard.NewService(
		catalog,
		pages.DefaultTexts(),
		loader,
		hydrate.New(filterer),
		content.NewLoader(os.DirFS(cfg.ContentDir)),
		dashboard.Settings{DefaultSource: cfg.DefaultSource},
	)

	return &App{
		Config:    cfg,
		Catalog:   catalog,
		Loader:    loader,
		Filterer:  filterer,
		Dashboard: svc,
		Snapshots: snapshots,
		Runs:      runStore,
		Ingester:  ingest.NewIngester(db, loader, snapshots, runStore),
		db:        db,
	}, nil
}

// RefreshRunner returns a runner that reloads every configured source, or
// nil when refresh_interval is zero.
func (a *App) RefreshRunner() *ingest.Runner {
	if a.Config.RefreshInterval <= 0 {
		return nil
	}
	return ingest.NewRunner(func(ctx context.Context) error {
		return a.Dashboard.Refresh(ctx)
	}, ingest.RunnerConfig{Interval: a.Config.RefreshInterval})
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
