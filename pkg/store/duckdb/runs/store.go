package runs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/resp-atlas/pkg/models/store"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb"
)

// Store is the ingest log: one entry per attempt to pull a source into
// the snapshot store.
type Store interface {
	Record(ctx context.Context, run store.IngestRun) error
	List(ctx context.Context, source string) ([]store.IngestRun, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) Record(ctx context.Context, run store.IngestRun) error {
	var datasetID sql.NullString
	if run.DatasetID != "" {
		datasetID = sql.NullString{String: run.DatasetID, Valid: true}
	}

	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO ingest_runs (source, dataset_id, started_at, row_count, error) VALUES (?, ?, ?, ?, ?)`,
		run.Source, datasetID, run.StartedAt, run.Rows, run.Error,
	)
	if err != nil {
		return fmt.Errorf("record ingest run: %w", err)
	}
	return nil
}

// List returns runs newest first. An empty source lists every source.
func (s *defaultStore) List(ctx context.Context, source string) ([]store.IngestRun, error) {
	query := `SELECT source, dataset_id, started_at, row_count, error FROM ingest_runs`
	args := []interface{}{}
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}
	query += " ORDER BY started_at DESC"

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ingest runs: %w", err)
	}
	defer rows.Close()

	out := make([]store.IngestRun, 0)
	for rows.Next() {
		var (
			run       store.IngestRun
			datasetID sql.NullString
			errText   sql.NullString
		)
		if err := rows.Scan(&run.Source, &datasetID, &run.StartedAt, &run.Rows, &errText); err != nil {
			return nil, err
		}
		run.DatasetID = datasetID.String
		if errText.Valid {
			e := errText.String
			run.Error = &e
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
