// Package ingest copies sources into the local snapshot store and keeps
// served datasets fresh.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/store"
	"github.com/de-tools/resp-atlas/pkg/services/source"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/snapshot"
	"github.com/rs/zerolog"
)

type Ingester struct {
	db        *sql.DB
	loader    *source.Loader
	snapshots snapshot.Store
	runs      runs.Store
	now       func() time.Time
}

func NewIngester(db *sql.DB, loader *source.Loader, snapshots snapshot.Store, runStore runs.Store) *Ingester {
	return &Ingester{
		db:        db,
		loader:    loader,
		snapshots: snapshots,
		runs:      runStore,
		now:       time.Now,
	}
}

// Ingest loads name and stores it as a snapshot under the same name. Every
// attempt is written to the ingest log, failed ones with their error.
func (i *Ingester) Ingest(ctx context.Context, name string) (store.IngestRun, error) {
	logger := zerolog.Ctx(ctx).With().Str("source", name).Logger()
	run := store.IngestRun{Source: name, StartedAt: i.now().UTC()}

	ds, err := i.loader.Load(ctx, name)
	if err != nil {
		return i.fail(ctx, run, err)
	}

	err = duckdb.InTransaction(ctx, i.db, func(ctx context.Context) error {
		if err := i.snapshots.Save(ctx, ds); err != nil {
			return fmt.Errorf("save snapshot %q: %w", name, err)
		}
		run.DatasetID = ds.ID
		run.Rows = int64(len(ds.Rows))
		return i.runs.Record(ctx, run)
	})
	if err != nil {
		run.DatasetID, run.Rows = "", 0
		return i.fail(ctx, run, err)
	}

	logger.Info().
		Str("dataset_id", run.DatasetID).
		Int64("rows", run.Rows).
		Msg("source ingested")
	return run, nil
}

// IngestAll ingests names one after another and returns the runs in the
// same order. It stops early only when ctx is done.
func (i *Ingester) IngestAll(ctx context.Context, names []string) ([]store.IngestRun, error) {
	out := make([]store.IngestRun, 0, len(names))
	failed := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		run, err := i.Ingest(ctx, name)
		if err != nil {
			failed++
		}
		out = append(out, run)
	}
	if failed > 0 {
		return out, fmt.Errorf("%d of %d sources failed to ingest", failed, len(names))
	}
	return out, nil
}

func (i *Ingester) fail(ctx context.Context, run store.IngestRun, cause error) (store.IngestRun, error) {
	msg := cause.Error()
	run.Error = &msg
	if err := i.runs.Record(ctx, run); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("source", run.Source).Msg("failed to record ingest run")
	}
	return run, cause
}
