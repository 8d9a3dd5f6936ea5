// Package source fetches raw surveillance data and normalizes it into
// rows. Sources are described in an INI registry, one section each.
package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

type Kind string

const (
	KindFile     Kind = "file"
	KindHTTP     Kind = "http"
	KindS3       Kind = "s3"
	KindSQL      Kind = "sql"
	KindSnapshot Kind = "duckdb"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrUnknownKind       = errors.New("unknown source kind")
	ErrSourceNotFound    = errors.New("source not found")
	ErrMissingSetting    = errors.New("missing source setting")
	ErrUnsupportedDriver = errors.New("unsupported sql driver")
)

// Source yields normalized rows. Implementations never sort.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Row, error)
}

type SourceFunc func(ctx context.Context) ([]domain.Row, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]domain.Row, error) {
	return f(ctx)
}

// Config is the union of the settings of every kind. Only the fields of
// Kind are read.
type Config struct {
	Name    string
	Kind    Kind
	Format  string
	Timeout time.Duration

	// file
	Path string

	// http
	URL        string
	MaxRetries int

	// s3
	Bucket  string
	Key     string
	Profile string
	Region  string

	// sql
	Driver    string
	DSN       string
	Query     string
	Host      string
	Token     string
	HTTPPath  string
	Account   string
	User      string
	Password  string
	Database  string
	Warehouse string
	Role      string
	Schema    string

	// duckdb snapshot
	Dataset string
}

func (c Config) Validate() error {
	require := func(field, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("source %s: %w: %s", c.Name, ErrMissingSetting, field)
		}
		return nil
	}

	switch c.Kind {
	case KindFile:
		return require("path", c.Path)
	case KindHTTP:
		return require("url", c.URL)
	case KindS3:
		if err := require("bucket", c.Bucket); err != nil {
			return err
		}
		return require("key", c.Key)
	case KindSQL:
		if err := require("driver", c.Driver); err != nil {
			return err
		}
		return require("query", c.Query)
	case KindSnapshot:
		return nil
	default:
		return fmt.Errorf("source %s: %w: %q", c.Name, ErrUnknownKind, c.Kind)
	}
}

// Location describes where the source reads from, without credentials.
func (c Config) Location() string {
	switch c.Kind {
	case KindFile:
		return c.Path
	case KindHTTP:
		return c.URL
	case KindS3:
		return "s3://" + c.Bucket + "/" + strings.TrimPrefix(c.Key, "/")
	case KindSQL:
		if c.Host != "" {
			return c.Driver + "://" + c.Host
		}
		if c.Account != "" {
			return c.Driver + "://" + c.Account
		}
		if c.Path != "" {
			return c.Driver + "://" + c.Path
		}
		return c.Driver
	case KindSnapshot:
		if c.Dataset != "" {
			return "snapshot:" + c.Dataset
		}
		return "snapshot:" + c.Name
	}
	return ""
}

// DetectFormat prefers the configured format, then the extension of name.
// An empty result lets normalize.Parse sniff the payload.
func DetectFormat(configured, name string) string {
	if configured != "" {
		return strings.ToLower(configured)
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	}
	return ""
}
