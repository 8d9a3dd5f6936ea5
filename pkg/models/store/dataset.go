package store

import (
	"database/sql"
	"time"
)

type Dataset struct {
	ID       string
	Name     string
	LoadedAt time.Time
	RowCount int64
}

// RowRecord is one normalized row as persisted. Date is NULL for rows
// whose source date did not parse, Value is NULL for non-numeric values.
type RowRecord struct {
	DatasetID string
	Position  int64
	Date      sql.NullTime
	Metric    string
	Submetric string
	Display   string
	Value     sql.NullFloat64
	ValueRaw  string
}

type IngestRun struct {
	Source    string
	DatasetID string
	StartedAt time.Time
	Rows      int64
	Error     *string
}
