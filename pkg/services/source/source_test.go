package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const weeklyCSV = "date,metric,submetric,display,value\n" +
	"2024-01-01,COVID-19 visits,Overall,Percent,2.5\n" +
	"2024-01-08,COVID-19 visits,Overall,Percent,<5\n"

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly.csv")
	require.NoError(t, os.WriteFile(path, []byte(weeklyCSV), 0o644))

	rows, err := NewFile(path, "").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2.5, *rows[0].Value)
	assert.Nil(t, rows[1].Value)
	assert.Equal(t, "<5", rows[1].ValueRaw)

	_, err = NewFile(filepath.Join(dir, "missing.csv"), "").Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	t.Run("json by content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(`[{"date":"2024-01-01","metric":"RSV visits","value":1.25}]`))
		}))
		defer srv.Close()

		rows, err := NewHTTP(srv.URL+"/data", "", time.Second, 0).Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "RSV visits", rows[0].Metric)
		assert.Equal(t, 1.25, *rows[0].Value)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(weeklyCSV))
		}))
		defer srv.Close()

		src := NewHTTP(srv.URL+"/weekly.csv", "", time.Second, 2).(*httpSource)
		src.retryWait = time.Millisecond

		rows, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("oversized body fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(weeklyCSV))
		}))
		defer srv.Close()

		src := NewHTTP(srv.URL+"/weekly.csv", "", time.Second, 0).(*httpSource)
		src.maxBytes = int64(len(weeklyCSV) - 1)

		rows, err := src.Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBodyTooLarge))
		assert.Nil(t, rows)

		src.maxBytes = int64(len(weeklyCSV))
		rows, err = src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := NewHTTP(srv.URL, "csv", time.Second, 0).Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("abcd"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))

	_, err = readLimited(strings.NewReader("abcde"), 4)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))
}

type mockObjectGetter struct {
	mock.Mock
}

func (m *mockObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestS3Source(t *testing.T) {
	client := &mockObjectGetter{}
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == "surveillance" && *in.Key == "weekly/latest.csv"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(weeklyCSV)))}, nil)

	rows, err := NewS3(client, "surveillance", "weekly/latest.csv", "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	client.AssertExpectations(t)

	failing := &mockObjectGetter{}
	failing.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))
	_, err = NewS3(failing, "b", "k.csv", "").Fetch(context.Background())
	assert.ErrorContains(t, err, "s3://b/k.csv")
}

func TestSQLSource(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := "SELECT date, metric, submetric, display, value FROM weekly"
	mockDB.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(
		sqlmock.NewRows([]string{"DATE", "Metric", "submetric", "display", "value"}).
			AddRow(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "Influenza visits", "Overall", "Percent", 3.75).
			AddRow("2024-01-01", "Influenza visits", "Overall", "Percent", nil),
	)

	rows, err := NewSQL(db, query).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].DateValid)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 3.75, *rows[0].Value)
	assert.Nil(t, rows[1].Value)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSQLSource_MissingColumn(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"date", "metric"}))

	_, err = NewSQL(db, "SELECT date, metric FROM weekly").Fetch(context.Background())
	assert.ErrorContains(t, err, `"value"`)
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(Config{Driver: DriverDatabricks, Host: "dbc.example.com", Token: "tok", HTTPPath: "/sql/1.0/warehouses/wh"})
	require.NoError(t, err)
	assert.Equal(t, "token:tok@dbc.example.com/sql/1.0/warehouses/wh", dsn)

	dsn, err = DSN(Config{Driver: DriverSnowflake, Account: "acme", User: "svc", Password: "pw", Database: "SURV"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "svc:pw@acme"), dsn)

	dsn, err = DSN(Config{Driver: DriverDuckDB, DSN: "snap.db?access_mode=read_only"})
	require.NoError(t, err)
	assert.Equal(t, "snap.db?access_mode=read_only", dsn)

	_, err = DSN(Config{Driver: DriverDatabricks, Host: "h"})
	assert.True(t, errors.Is(err, ErrMissingSetting))

	_, err = DSN(Config{Driver: "oracle"})
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}

const registryINI = `
[weekly]
kind = file
path = testdata/weekly.csv

[seasonal]
kind = http
url = https://data.example.org/seasonal.json
timeout = 5s

[warehouse]
kind = sql
driver = snowflake
account = acme
query = SELECT * FROM weekly

[archive]
kind = duckdb

[broken]
kind = ftp
`

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry([]byte(registryINI))
	require.NoError(t, err)

	names, err := reg.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"weekly", "seasonal", "warehouse", "archive", "broken"}, names)

	seasonal, err := reg.Config(ctx, "seasonal")
	require.NoError(t, err)
	assert.Equal(t, KindHTTP, seasonal.Kind)
	assert.Equal(t, 5*time.Second, seasonal.Timeout)
	assert.Equal(t, 2, seasonal.MaxRetries)

	weekly, err := reg.Config(ctx, "weekly")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, weekly.Timeout)

	archive, err := reg.Config(ctx, "archive")
	require.NoError(t, err)
	assert.Equal(t, "archive", archive.Dataset)

	_, err = reg.Config(ctx, "broken")
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = reg.Config(ctx, "nope")
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Kind: KindS3, Bucket: "b", Key: "k"}.Validate())
	assert.True(t, errors.Is(Config{Kind: KindS3, Bucket: "b"}.Validate(), ErrMissingSetting))
	assert.True(t, errors.Is(Config{Kind: KindSQL, Driver: "duckdb"}.Validate(), ErrMissingSetting))
	assert.True(t, errors.Is(Config{Kind: KindFile}.Validate(), ErrMissingSetting))
}

func TestConfig_Location(t *testing.T) {
	assert.Equal(t, "s3://surveillance/weekly/latest.csv", Config{Kind: KindS3, Bucket: "surveillance", Key: "/weekly/latest.csv"}.Location())
	assert.Equal(t, "databricks://dbc-1.cloud.databricks.com", Config{Kind: KindSQL, Driver: "databricks", Host: "dbc-1.cloud.databricks.com", Token: "secret"}.Location())
	assert.Equal(t, "snapshot:weekly", Config{Name: "weekly", Kind: KindSnapshot}.Location())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "json", DetectFormat("JSON", "x.csv"))
	assert.Equal(t, "csv", DetectFormat("", "/data/weekly.CSV"))
	assert.Equal(t, "", DetectFormat("", "/api/data"))
}

func staticRows(rows ...domain.Row) SourceFunc {
	return func(ctx context.Context) ([]domain.Row, error) {
		return rows, nil
	}
}

func TestLoader_LoadAll(t *testing.T) {
	// Given
	reg := StaticRegistry{
		{Name: "weekly", Kind: KindFile, Path: "weekly.csv"},
		{Name: "down", Kind: KindFile, Path: "down.csv"},
		{Name: "empty", Kind: KindFile, Path: "empty.csv"},
	}
	factory := func(ctx context.Context, cfg Config) (Source, error) {
		switch cfg.Name {
		case "weekly":
			return staticRows(domain.Row{Metric: "COVID-19 visits"}), nil
		case "down":
			return SourceFunc(func(ctx context.Context) ([]domain.Row, error) {
				return nil, errors.New("connection refused")
			}), nil
		default:
			return staticRows(), nil
		}
	}
	loader := NewLoader(reg, factory, WithParallelism(2))

	// When
	datasets, err := loader.LoadAll(context.Background(), []string{"weekly", "down", "empty", "ghost"})

	// Then
	require.Len(t, datasets, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `fetch source "down": connection refused`)
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	assert.Equal(t, "weekly", datasets[0].Name)
	assert.Len(t, datasets[0].Rows, 1)
	for _, ds := range datasets[1:] {
		assert.True(t, ds.Empty(), ds.Name)
		assert.NotNil(t, ds.Rows, ds.Name)
	}

	ids := map[string]bool{}
	for _, ds := range datasets {
		assert.NotEmpty(t, ds.ID)
		ids[ds.ID] = true
	}
	assert.Len(t, ids, 4, "every load gets its own dataset id")
}

func TestLoader_ReloadChangesID(t *testing.T) {
	reg := StaticRegistry{{Name: "weekly", Kind: KindFile, Path: "weekly.csv"}}
	fixed := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	loader := NewLoader(reg, func(ctx context.Context, cfg Config) (Source, error) {
		return staticRows(), nil
	}, WithClock(func() time.Time { return fixed }))

	first, err := loader.Load(context.Background(), "weekly")
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), "weekly")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, fixed, first.LoadedAt)
}

func TestNewFactory(t *testing.T) {
	factory := NewFactory(nil)
	ctx := context.Background()

	src, err := factory(ctx, Config{Name: "f", Kind: KindFile, Path: "x.csv"})
	require.NoError(t, err)
	assert.IsType(t, &fileSource{}, src)

	src, err = factory(ctx, Config{Name: "a", Kind: KindSnapshot})
	require.NoError(t, err)
	_, err = src.Fetch(ctx)
	assert.ErrorContains(t, err, "no snapshot store")

	_, err = factory(ctx, Config{Name: "x", Kind: "ftp"})
	assert.True(t, errors.Is(err, ErrUnknownKind))
}
