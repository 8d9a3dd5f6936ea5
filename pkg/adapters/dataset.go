package adapters

import (
	"database/sql"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/models/store"
)

func MapDomainRowToStoreRecord(datasetID string, position int64, row domain.Row) store.RowRecord {
	rec := store.RowRecord{
		DatasetID: datasetID,
		Position:  position,
		Metric:    row.Metric,
		Submetric: row.Submetric,
		Display:   row.Display,
		ValueRaw:  row.ValueRaw,
	}
	if row.DateValid {
		rec.Date = sql.NullTime{Time: row.Date, Valid: true}
	}
	if row.Value != nil {
		rec.Value = sql.NullFloat64{Float64: *row.Value, Valid: true}
	}
	return rec
}

func MapStoreRecordToDomainRow(rec store.RowRecord) domain.Row {
	row := domain.Row{
		Date:      time.Unix(0, 0).UTC(),
		Metric:    rec.Metric,
		Submetric: rec.Submetric,
		Display:   rec.Display,
		ValueRaw:  rec.ValueRaw,
	}
	if rec.Date.Valid {
		t := rec.Date.Time.UTC()
		row.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		row.DateValid = true
	}
	if rec.Value.Valid {
		row.Value = domain.Float(rec.Value.Float64)
	}
	return row
}

func MapStoreDatasetToDomain(meta store.Dataset, records []store.RowRecord) domain.Dataset {
	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, MapStoreRecordToDomainRow(rec))
	}
	return domain.Dataset{
		ID:       meta.ID,
		Name:     meta.Name,
		LoadedAt: meta.LoadedAt,
		Rows:     rows,
	}
}
