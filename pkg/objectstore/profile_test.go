package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propense/feature-engine/pkg/models"
)

func TestBuildProfile(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"user_id", "monthly_spend", "signup_date", "plan"},
		Rows: []Row{
			{"user_id": "u1", "monthly_spend": "40", "signup_date": "2024-01-10", "plan": "prepaid"},
			{"user_id": "u2", "monthly_spend": "60", "signup_date": "2024-02-01", "plan": "postpaid"},
			{"user_id": "u3", "signup_date": "2024-03-15", "plan": "prepaid"},
		},
	}

	profile := BuildProfile("s3://b/users.csv", ds)

	assert.Equal(t, "s3://b/users.csv", profile.Location)
	assert.Equal(t, 3, profile.SampleRecords)
	assert.Equal(t, ds.Columns, profile.Columns)

	t.Run("types inferred per column", func(t *testing.T) {
		assert.Equal(t, models.ColumnNumeric, profile.Types["monthly_spend"])
		assert.Equal(t, models.ColumnDatetime, profile.Types["signup_date"])
		assert.Equal(t, models.ColumnCategorical, profile.Types["plan"])
		assert.Equal(t, models.ColumnCategorical, profile.Types["user_id"])
	})

	t.Run("numeric stats computed", func(t *testing.T) {
		cs := profile.Stats["monthly_spend"]
		require.NotNil(t, cs.Mean)
		assert.InDelta(t, 50.0, *cs.Mean, 0.001)
		require.NotNil(t, cs.Std)
		assert.Equal(t, 2, cs.DistinctCount)
	})

	t.Run("categorical stats have no moments", func(t *testing.T) {
		cs := profile.Stats["plan"]
		assert.Nil(t, cs.Mean)
		assert.Nil(t, cs.Std)
		assert.Equal(t, 2, cs.DistinctCount)
		assert.Len(t, cs.SampleValues, 3)
	})

	t.Run("missing values counted", func(t *testing.T) {
		assert.Equal(t, 1, profile.MissingValues["monthly_spend"])
		assert.Equal(t, 0, profile.MissingValues["plan"])
	})
}

func TestBuildProfileEmptyColumn(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"empty"},
		Rows:    []Row{{}, {}},
	}

	profile := BuildProfile("s3://b/sparse.csv", ds)
	assert.Equal(t, models.ColumnCategorical, profile.Types["empty"])
	assert.Equal(t, 2, profile.MissingValues["empty"])
	assert.Equal(t, 0, profile.Stats["empty"].DistinctCount)
}

func TestBuildProfileSampleValuesCapped(t *testing.T) {
	rows := make([]Row, 10)
	for i := range rows {
		rows[i] = Row{"v": string(rune('a' + i))}
	}
	ds := &Dataset{Columns: []string{"v"}, Rows: rows}

	profile := BuildProfile("s3://b/many.csv", ds)
	assert.Len(t, profile.Stats["v"].SampleValues, maxSampleValues)
	assert.Equal(t, 10, profile.Stats["v"].DistinctCount)
}
