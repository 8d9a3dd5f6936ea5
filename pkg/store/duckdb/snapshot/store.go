package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/resp-atlas/pkg/adapters"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/models/store"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

var ErrDatasetNotFound = errors.New("dataset not found")

// Store persists normalized datasets by name. Saving a name again replaces
// the previous snapshot.
type Store interface {
	Save(ctx context.Context, ds domain.Dataset) error
	Load(ctx context.Context, name string) (domain.Dataset, error)
	List(ctx context.Context) ([]store.Dataset, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db}, nil
}

func (s *snapshotStore) Save(ctx context.Context, ds domain.Dataset) error {
	if ds.Name == "" {
		return fmt.Errorf("dataset name is required")
	}

	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		conn := duckdb.Conn(ctx, s.db)

		var previous string
		err := conn.QueryRowContext(ctx, `SELECT id FROM datasets WHERE name = ?`, ds.Name).Scan(&previous)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("lookup dataset: %w", err)
		default:
			if _, err := conn.ExecContext(ctx, `DELETE FROM dataset_rows WHERE dataset_id = ?`, previous); err != nil {
				return fmt.Errorf("delete rows: %w", err)
			}
			if _, err := conn.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, ds.Name); err != nil {
				return fmt.Errorf("delete dataset: %w", err)
			}
		}

		if _, err := conn.ExecContext(ctx,
			`INSERT INTO datasets (id, name, loaded_at) VALUES (?, ?, ?)`,
			ds.ID, ds.Name, ds.LoadedAt,
		); err != nil {
			return fmt.Errorf("insert dataset: %w", err)
		}

		return s.addRows(ctx, conn, ds)
	})
}

func (s *snapshotStore) addRows(ctx context.Context, conn duckdb.Execer, ds domain.Dataset) error {
	if len(ds.Rows) == 0 {
		return nil
	}

	stmt, err := conn.PrepareContext(ctx, `
		INSERT INTO dataset_rows (
			dataset_id, position, date, metric, submetric, display, value, value_raw
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?
		)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range ds.Rows {
		rec := adapters.MapDomainRowToStoreRecord(ds.ID, int64(i), row)
		if _, err := stmt.ExecContext(ctx,
			rec.DatasetID,
			rec.Position,
			rec.Date,
			rec.Metric,
			rec.Submetric,
			rec.Display,
			rec.Value,
			rec.ValueRaw,
		); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("dataset", ds.Name).
		Int("rows", len(ds.Rows)).
		Msg("snapshot rows stored")
	return nil
}

func (s *snapshotStore) Load(ctx context.Context, name string) (domain.Dataset, error) {
	conn := duckdb.Conn(ctx, s.db)

	var meta store.Dataset
	err := conn.QueryRowContext(ctx,
		`SELECT id, name, loaded_at FROM datasets WHERE name = ?`, name,
	).Scan(&meta.ID, &meta.Name, &meta.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Dataset{}, fmt.Errorf("%q: %w", name, ErrDatasetNotFound)
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT dataset_id, position, date, metric, submetric, display, value, value_raw
		FROM dataset_rows
		WHERE dataset_id = ?
		ORDER BY position
	`, meta.ID)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return domain.Dataset{}, err
	}
	return adapters.MapStoreDatasetToDomain(meta, records), nil
}

func (s *snapshotStore) List(ctx context.Context) ([]store.Dataset, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT d.id, d.name, d.loaded_at, COUNT(r.position)
		FROM datasets d
		LEFT JOIN dataset_rows r ON r.dataset_id = d.id
		GROUP BY d.id, d.name, d.loaded_at
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	out := make([]store.Dataset, 0)
	for rows.Next() {
		var d store.Dataset
		if err := rows.Scan(&d.ID, &d.Name, &d.LoadedAt, &d.RowCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanRows(rows *sql.Rows) ([]store.RowRecord, error) {
	records := make([]store.RowRecord, 0)
	for rows.Next() {
		var (
			rec                        store.RowRecord
			metric, submetric, display sql.NullString
			valueRaw                   sql.NullString
		)
		if err := rows.Scan(
			&rec.DatasetID, &rec.Position, &rec.Date,
			&metric, &submetric, &display, &rec.Value, &valueRaw,
		); err != nil {
			return nil, err
		}
		rec.Metric = metric.String
		rec.Submetric = submetric.String
		rec.Display = display.String
		rec.ValueRaw = valueRaw.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
