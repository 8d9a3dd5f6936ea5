package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/source"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ingester  *Ingester
	snapshots snapshot.Store
	runs      runs.Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	snapshots, err := snapshot.NewStore(db)
	require.NoError(t, err)
	runStore, err := runs.NewStore(db)
	require.NoError(t, err)

	reg := source.StaticRegistry{
		{Name: "weekly", Kind: source.KindFile, Path: "weekly.csv"},
		{Name: "down", Kind: source.KindFile, Path: "down.csv"},
	}
	factory := func(ctx context.Context, cfg source.Config) (source.Source, error) {
		return source.SourceFunc(func(ctx context.Context) ([]domain.Row, error) {
			if cfg.Name == "down" {
				return nil, errors.New("connection refused")
			}
			return []domain.Row{
				{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DateValid: true, Metric: "RSV visits", Value: domain.Float(1.5), ValueRaw: "1.5"},
				{Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), DateValid: true, Metric: "RSV visits", ValueRaw: "<5"},
			}, nil
		}), nil
	}

	return &fixture{
		ingester:  NewIngester(db, source.NewLoader(reg, factory), snapshots, runStore),
		snapshots: snapshots,
		runs:      runStore,
	}
}

func TestIngester_Ingest(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// When
	run, err := f.ingester.Ingest(ctx, "weekly")

	// Then
	require.NoError(t, err)
	assert.Equal(t, int64(2), run.Rows)
	assert.NotEmpty(t, run.DatasetID)

	ds, err := f.snapshots.Load(ctx, "weekly")
	require.NoError(t, err)
	assert.Equal(t, run.DatasetID, ds.ID)
	require.Len(t, ds.Rows, 2)
	assert.Nil(t, ds.Rows[1].Value)

	logged, err := f.runs.List(ctx, "weekly")
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Nil(t, logged[0].Error)
}

func TestIngester_IngestAllRecordsFailures(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	out, err := f.ingester.IngestAll(ctx, []string{"weekly", "down"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	require.Len(t, out, 2)
	require.NotNil(t, out[1].Error)

	logged, err := f.runs.List(ctx, "down")
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.NotNil(t, logged[0].Error)
	assert.Contains(t, *logged[0].Error, "connection refused")

	_, err = f.snapshots.Load(ctx, "down")
	assert.True(t, errors.Is(err, snapshot.ErrDatasetNotFound))
}

func TestRunner(t *testing.T) {
	var calls int32
	step := func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1)%2 == 0 {
			return errors.New("source down")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(step, RunnerConfig{Interval: 5 * time.Millisecond})
	go r.Run(ctx)

	first := <-r.Progress()
	second := <-r.Progress()
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Equal(t, int64(1), first.Cycle)
	assert.NoError(t, first.LastErr)
	assert.Equal(t, int64(2), second.Cycle)
	assert.Equal(t, int64(1), second.Failures)
	assert.Error(t, second.LastErr)
}
