package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/snapshot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultParallelism = 4

// Factory builds the Source for a config.
type Factory func(ctx context.Context, cfg Config) (Source, error)

// NewFactory returns the default Factory. snapshots may be nil when no
// local store is configured.
func NewFactory(snapshots snapshot.Store) Factory {
	return func(ctx context.Context, cfg Config) (Source, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		switch cfg.Kind {
		case KindFile:
			return NewFile(cfg.Path, cfg.Format), nil
		case KindHTTP:
			return NewHTTP(cfg.URL, cfg.Format, cfg.Timeout, cfg.MaxRetries), nil
		case KindS3:
			client, err := LoadS3Client(ctx, cfg.Profile, cfg.Region)
			if err != nil {
				return nil, err
			}
			return NewS3(client, cfg.Bucket, cfg.Key, cfg.Format), nil
		case KindSQL:
			return SourceFunc(func(ctx context.Context) ([]domain.Row, error) {
				db, err := OpenDB(cfg)
				if err != nil {
					return nil, err
				}
				defer db.Close()
				return NewSQL(db, cfg.Query).Fetch(ctx)
			}), nil
		case KindSnapshot:
			dataset := cfg.Dataset
			if dataset == "" {
				dataset = cfg.Name
			}
			return NewSnapshot(snapshots, dataset), nil
		default:
			return nil, fmt.Errorf("%q: %w", cfg.Kind, ErrUnknownKind)
		}
	}
}

type Loader struct {
	registry    Registry
	factory     Factory
	parallelism int
	now         func() time.Time
	newID       func() string
}

type LoaderOption func(*Loader)

func WithParallelism(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.parallelism = n
		}
	}
}

func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

func NewLoader(registry Registry, factory Factory, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry:    registry,
		factory:     factory,
		parallelism: defaultParallelism,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Registry() Registry {
	return l.registry
}

// Load fetches one source into a dataset with a fresh ID. On error the
// returned dataset is still usable: it has the ID and name but no rows.
func (l *Loader) Load(ctx context.Context, name string) (domain.Dataset, error) {
	ds := domain.Dataset{
		ID:       l.newID(),
		Name:     name,
		LoadedAt: l.now().UTC(),
		Rows:     []domain.Row{},
	}

	logger := zerolog.Ctx(ctx).With().Str("source", name).Logger()

	cfg, err := l.registry.Config(ctx, name)
	if err != nil {
		return ds, fmt.Errorf("fetch source %q: %w", name, err)
	}
	src, err := l.factory(ctx, cfg)
	if err != nil {
		return ds, fmt.Errorf("fetch source %q: %w", name, err)
	}

	start := time.Now()
	rows, err := src.Fetch(logger.WithContext(ctx))
	if err != nil {
		return ds, fmt.Errorf("fetch source %q: %w", name, err)
	}
	if rows != nil {
		ds.Rows = rows
	}

	logger.Debug().
		Str("dataset_id", ds.ID).
		Int("rows", len(ds.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("source loaded")
	return ds, nil
}

// Result is the outcome of loading one source. Dataset is usable even
// when Err is set.
type Result struct {
	Dataset domain.Dataset
	Err     error
}

// FetchAll loads names concurrently, in input order. The returned error
// is set only when ctx is cancelled; per-source failures are in the
// results.
func (l *Loader) FetchAll(ctx context.Context, names []string) ([]Result, error) {
	out := make([]Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)

	for i, name := range names {
		g.Go(func() error {
			ds, err := l.Load(gctx, name)
			out[i] = Result{Dataset: ds, Err: err}
			if errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return out, g.Wait()
}

// LoadAll is FetchAll with the per-source errors joined. Every name gets
// a dataset; failed ones are empty.
func (l *Loader) LoadAll(ctx context.Context, names []string) ([]domain.Dataset, error) {
	results, err := l.FetchAll(ctx, names)

	datasets := make([]domain.Dataset, len(results))
	errs := make([]error, 0, len(results)+1)
	errs = append(errs, err)
	for i, r := range results {
		datasets[i] = r.Dataset
		errs = append(errs, r.Err)
	}
	return datasets, errors.Join(errs...)
}
