package objectstore

import (
	"strconv"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/propense/feature-engine/pkg/models"
)

// maxSampleValues bounds the example values kept per column.
const maxSampleValues = 5

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BuildProfile derives a DataProfile from a sampled dataset. The profile is
// immutable after creation.
func BuildProfile(location string, ds *Dataset) *models.DataProfile {
	profile := &models.DataProfile{
		Location:      location,
		SampleRecords: ds.Len(),
		Columns:       ds.Columns,
		Types:         make(map[string]models.ColumnType, len(ds.Columns)),
		Stats:         make(map[string]models.ColumnStats, len(ds.Columns)),
		MissingValues: make(map[string]int, len(ds.Columns)),
		ProfiledAt:    time.Now().UTC(),
	}

	for _, col := range ds.Columns {
		var present []string
		missing := 0
		for _, row := range ds.Rows {
			v, ok := row[col]
			if !ok || v == "" {
				missing++
				continue
			}
			present = append(present, v)
		}

		profile.MissingValues[col] = missing
		profile.Types[col] = classifyColumn(present)
		profile.Stats[col] = columnStats(present, profile.Types[col])
	}

	return profile
}

func classifyColumn(values []string) models.ColumnType {
	if len(values) == 0 {
		return models.ColumnCategorical
	}

	numeric := true
	datetime := true
	for _, v := range values {
		if numeric {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
			}
		}
		if datetime && !parsesAsTime(v) {
			datetime = false
		}
		if !numeric && !datetime {
			break
		}
	}

	switch {
	case numeric:
		return models.ColumnNumeric
	case datetime:
		return models.ColumnDatetime
	default:
		return models.ColumnCategorical
	}
}

func parsesAsTime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func columnStats(values []string, colType models.ColumnType) models.ColumnStats {
	distinct := make(map[string]bool, len(values))
	for _, v := range values {
		distinct[v] = true
	}

	cs := models.ColumnStats{DistinctCount: len(distinct)}
	if n := min(maxSampleValues, len(values)); n > 0 {
		cs.SampleValues = append(cs.SampleValues, values[:n]...)
	}

	if colType != models.ColumnNumeric {
		return cs
	}

	numbers := make([]float64, 0, len(values))
	for _, v := range values {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			numbers = append(numbers, f)
		}
	}
	if len(numbers) == 0 {
		return cs
	}

	if mean, err := stats.Mean(numbers); err == nil {
		cs.Mean = &mean
	}
	if std, err := stats.StandardDeviationSample(numbers); err == nil {
		cs.Std = &std
	}
	return cs
}
