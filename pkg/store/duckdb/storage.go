package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const DatasetsTableSchema = `
	CREATE TABLE IF NOT EXISTS datasets (
		id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		loaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	);
`
const RowsTableSchema = `
	CREATE TABLE IF NOT EXISTS dataset_rows (
		dataset_id VARCHAR NOT NULL,
		position BIGINT NOT NULL,
		date DATE,
		metric VARCHAR,
		submetric VARCHAR,
		display VARCHAR,
		value DOUBLE,
		value_raw VARCHAR,
		PRIMARY KEY (dataset_id, position)
	);
`
const IngestRunsTableSchema = `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		source VARCHAR NOT NULL,
		dataset_id VARCHAR,
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		row_count BIGINT NOT NULL DEFAULT 0,
		error VARCHAR NULL
	);
`

var bootQueries = []string{
	DatasetsTableSchema,
	RowsTableSchema,
	IngestRunsTableSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

// InTransaction runs fn with a transaction carried in ctx, committing when
// fn returns nil.
func InTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if GetTransaction(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(WithTransaction(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
