package objectstore

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Row is one record keyed by column name. Missing values are absent keys or
// empty strings; all values are carried as text and parsed on demand.
type Row map[string]string

// Dataset is an in-memory tabular sample with ordered columns.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether name is one of the dataset columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Head returns a dataset view of at most n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return &Dataset{Columns: d.Columns, Rows: d.Rows[:n]}
}

// MarshalCSV encodes the dataset as a header-first CSV document.
func (d *Dataset) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(d.Columns); err != nil {
		return nil, err
	}
	record := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, col := range d.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeDataset reads a tabular object into a Dataset based on its file
// extension, sampling at most limit rows. Supported encodings are
// comma-delimited (.csv), newline-delimited JSON (.json) and columnar
// parquet (.parquet).
func DecodeDataset(location string, data []byte, limit int) (*Dataset, error) {
	switch {
	case strings.HasSuffix(location, ".csv"):
		return decodeCSV(data, limit)
	case strings.HasSuffix(location, ".json"):
		return decodeJSONLines(data, limit)
	case strings.HasSuffix(location, ".parquet"):
		return decodeParquet(data, limit)
	default:
		return nil, fmt.Errorf("unsupported data file: %s", location)
	}
}

func decodeCSV(data []byte, limit int) (*Dataset, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	columns := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}

func decodeJSONLines(data []byte, limit int) (*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var columns []string
	seen := make(map[string]bool)
	var rows []Row

	for dec.More() {
		if limit > 0 && len(rows) >= limit {
			break
		}

		keys, record, err := decodeJSONRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("parse json lines: %w", err)
		}

		row := make(Row, len(record))
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
			if v := record[k]; v != nil {
				row[k] = fmt.Sprintf("%v", v)
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("json file has no records")
	}
	return &Dataset{Columns: columns, Rows: rows}, nil
}

// decodeJSONRecord reads one flat JSON object from the stream, returning
// its keys in document order alongside the decoded values. Column order
// must be stable across decodes of the same file, which rules out
// iterating a decoded map.
func decodeJSONRecord(dec *json.Decoder) ([]string, map[string]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected a json object, got %v", tok)
	}

	var keys []string
	values := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key, got %v", keyTok)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func decodeParquet(data []byte, limit int) (*Dataset, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	// Leaf column names in schema order. Nested schemas are flattened to
	// their leading path element, which is sufficient for the flat tabular
	// layouts the agents work with.
	var columns []string
	for _, path := range f.Schema().Columns() {
		columns = append(columns, path[0])
	}

	var rows []Row
	buf := make([]parquet.Row, 64)
	for _, rg := range f.RowGroups() {
		if limit > 0 && len(rows) >= limit {
			break
		}
		reader := rg.Rows()
		for {
			n, readErr := reader.ReadRows(buf)
			for _, pr := range buf[:n] {
				if limit > 0 && len(rows) >= limit {
					break
				}
				row := make(Row, len(columns))
				for _, value := range pr {
					col := value.Column()
					if col < 0 || col >= len(columns) || value.IsNull() {
						continue
					}
					row[columns[col]] = value.String()
				}
				rows = append(rows, row)
			}
			if readErr != nil || n == 0 || (limit > 0 && len(rows) >= limit) {
				break
			}
		}
		reader.Close()
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}
