package normalize

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
)

var requiredColumns = []string{FieldDate, FieldMetric, FieldValue}

// ParseCSV reads a CSV with a header row. Only an unreadable header or a
// header missing a required column is an error; malformed lines are skipped.
func ParseCSV(r io.Reader) ([]domain.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	if err := CheckColumns(keys); err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0)
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		rec := make(map[string]string, len(keys))
		for i, val := range line {
			if i >= len(keys) {
				break
			}
			rec[keys[i]] = val
		}
		rows = append(rows, NormalizeRecord(rec))
	}

	return rows, nil
}

// ParseJSON reads an array of objects. Values may be strings, numbers or
// null; numbers keep their source text in ValueRaw.
func ParseJSON(r io.Reader) ([]domain.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON rows: %w", err)
	}

	rows := make([]domain.Row, 0, len(records))
	for _, obj := range records {
		rec := make(map[string]string, len(obj))
		for k, v := range obj {
			rec[strings.ToLower(strings.TrimSpace(k))] = stringify(v)
		}
		rows = append(rows, NormalizeRecord(rec))
	}
	return rows, nil
}

// Parse dispatches on format ("csv" or "json"). An empty format sniffs
// the first non-space byte.
func Parse(format string, data []byte) ([]domain.Row, error) {
	switch strings.ToLower(format) {
	case "csv":
		return ParseCSV(bytes.NewReader(data))
	case "json":
		return ParseJSON(bytes.NewReader(data))
	case "":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			return ParseJSON(bytes.NewReader(data))
		}
		return ParseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// CheckColumns reports the first required column missing from keys.
func CheckColumns(keys []string) error {
	have := make(map[string]bool, len(keys))
	for _, k := range keys {
		have[k] = true
	}
	for _, c := range requiredColumns {
		if !have[c] {
			return fmt.Errorf("missing required column %q", c)
		}
	}
	return nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
