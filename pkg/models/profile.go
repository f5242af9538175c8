// Package models contains domain types for feature-engine.
package models

import "time"

// ColumnType is the declared type tag for a profiled column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnDatetime    ColumnType = "datetime"
)

// ColumnStats holds per-column summary statistics from a data sample.
// Mean and Std are nil for non-numeric columns.
type ColumnStats struct {
	Mean          *float64 `json:"mean"`
	Std           *float64 `json:"std"`
	DistinctCount int      `json:"unique_values"`
	SampleValues  []string `json:"sample_values"`
}

// DataProfile is the result of sampling a dataset. It is created once per
// exploration call and immutable after creation; a session holds only the
// most recent snapshot.
type DataProfile struct {
	Location      string                 `json:"location"`
	SampleRecords int                    `json:"total_sample_records"`
	Columns       []string               `json:"columns"`
	Types         map[string]ColumnType  `json:"data_types"`
	Stats         map[string]ColumnStats `json:"sample_statistics"`
	MissingValues map[string]int         `json:"missing_values"`
	ProfiledAt    time.Time              `json:"profiled_at"`
}

// HasColumn reports whether name is one of the profiled columns.
func (p *DataProfile) HasColumn(name string) bool {
	for _, c := range p.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// UnknownColumns returns the subset of names absent from the profile,
// preserving order.
func (p *DataProfile) UnknownColumns(names []string) []string {
	var missing []string
	for _, n := range names {
		if !p.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// ColumnsOfType returns the profiled columns carrying the given type tag,
// in profile order.
func (p *DataProfile) ColumnsOfType(t ColumnType) []string {
	var cols []string
	for _, c := range p.Columns {
		if p.Types[c] == t {
			cols = append(cols, c)
		}
	}
	return cols
}
