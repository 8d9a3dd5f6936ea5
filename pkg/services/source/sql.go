package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog"
	sf "github.com/snowflakedb/gosnowflake"
)

const (
	DriverDuckDB     = "duckdb"
	DriverSnowflake  = "snowflake"
	DriverDatabricks = "databricks"
)

type sqlSource struct {
	db    *sql.DB
	query string
}

// NewSQL runs query against db. The result columns are matched by name,
// the same way CSV headers are.
func NewSQL(db *sql.DB, query string) Source {
	return &sqlSource{db: db, query: query}
}

func (s *sqlSource) Fetch(ctx context.Context) ([]domain.Row, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("source query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close source query rows")
		}
	}(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = strings.ToLower(strings.TrimSpace(c))
	}
	if err := normalize.CheckColumns(names); err != nil {
		return nil, err
	}

	out := make([]domain.Row, 0)
	values := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec := make(map[string]string, len(columns))
		for i, name := range names {
			rec[name] = values[i].String
		}
		out = append(out, normalize.NormalizeRecord(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	logger.Debug().Int("rows", len(out)).Msg("source query returned")
	return out, nil
}

// DSN builds the driver connection string. An explicit DSN wins.
func DSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	switch cfg.Driver {
	case DriverDuckDB:
		return cfg.Path, nil
	case DriverSnowflake:
		return sf.DSN(&sf.Config{
			Account:   cfg.Account,
			User:      cfg.User,
			Password:  cfg.Password,
			Database:  cfg.Database,
			Schema:    cfg.Schema,
			Warehouse: cfg.Warehouse,
			Role:      cfg.Role,
		})
	case DriverDatabricks:
		if cfg.Host == "" || cfg.Token == "" || cfg.HTTPPath == "" {
			return "", fmt.Errorf("source %s: %w: host, token and http_path", cfg.Name, ErrMissingSetting)
		}
		return fmt.Sprintf("token:%s@%s%s", cfg.Token, cfg.Host, cfg.HTTPPath), nil
	default:
		return "", fmt.Errorf("%q: %w", cfg.Driver, ErrUnsupportedDriver)
	}
}

func OpenDB(cfg Config) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	return db, nil
}
