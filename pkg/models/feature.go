package models

import "time"

// TargetModel identifies which propensity model a feature candidate serves.
type TargetModel string

const (
	TargetCallPropensity        TargetModel = "call_propensity"
	TargetChurnPropensity       TargetModel = "churn_propensity"
	TargetSpendChangePropensity TargetModel = "spend_change_propensity"
)

// TargetModels lists the recognized target models in canonical order.
var TargetModels = []TargetModel{
	TargetCallPropensity,
	TargetChurnPropensity,
	TargetSpendChangePropensity,
}

// IsValid returns true for one of the three recognized target models.
func (t TargetModel) IsValid() bool {
	switch t {
	case TargetCallPropensity, TargetChurnPropensity, TargetSpendChangePropensity:
		return true
	default:
		return false
	}
}

// Provenance tags the origin of a feature candidate.
type Provenance string

const (
	ProvenanceGenerated Provenance = "generated" // suggested by the LLM
	ProvenanceUser      Provenance = "user"      // submitted by the analyst
	ProvenanceRaw       Provenance = "raw"       // raw column pass-through
)

// FeatureCandidate is a proposed transformation over the source dataset.
type FeatureCandidate struct {
	FeatureName   string      `json:"feature_name"`
	Description   string      `json:"description"`
	Formula       string      `json:"formula"`
	SourceColumns []string    `json:"source_columns"`
	TargetModel   TargetModel `json:"target_model"`
	Rationale     string      `json:"rationale"`
	Complexity    string      `json:"complexity"`
	Provenance    Provenance  `json:"provenance"`
	SubmittedAt   time.Time   `json:"submitted_at,omitempty"`
}

// RawFeature synthesizes a raw pass-through candidate for a column name.
// The formula is the column name itself and the source set contains only it.
func RawFeature(column string) FeatureCandidate {
	return FeatureCandidate{
		FeatureName:   column,
		Description:   "Raw column: " + column,
		Formula:       column,
		SourceColumns: []string{column},
		Rationale:     "Raw data column included for model training",
		Complexity:    "Low",
		Provenance:    ProvenanceRaw,
	}
}

// DataSourceRecommendation is an LLM suggestion for additional data that
// would improve a propensity model. It is informational only.
type DataSourceRecommendation struct {
	DataSource     string `json:"data_source"`
	Description    string `json:"description"`
	Rationale      string `json:"rationale"`
	Implementation string `json:"implementation"`
}

// CandidateBatch is one LLM generation round, grouped by target model.
type CandidateBatch struct {
	ByModel         map[TargetModel][]FeatureCandidate         `json:"existing_data_features"`
	Recommendations map[TargetModel][]DataSourceRecommendation `json:"additional_data_recommendations"`
}

// Count returns the total number of candidates across all target models.
func (b *CandidateBatch) Count() int {
	n := 0
	for _, features := range b.ByModel {
		n += len(features)
	}
	return n
}

// FeatureList is the confirmed, ordered feature set bound to one job
// submission. Once assembled it is treated as immutable.
type FeatureList []FeatureCandidate

// ProvenanceCounts partitions the list by provenance tag. The three counts
// always sum to the list length.
type ProvenanceCounts struct {
	Generated int `json:"generated"`
	User      int `json:"user"`
	Raw       int `json:"raw"`
}

// Total returns the sum of the three partitions.
func (c ProvenanceCounts) Total() int {
	return c.Generated + c.User + c.Raw
}

// CountByProvenance tallies the list by provenance tag.
func (l FeatureList) CountByProvenance() ProvenanceCounts {
	var counts ProvenanceCounts
	for _, f := range l {
		switch f.Provenance {
		case ProvenanceGenerated:
			counts.Generated++
		case ProvenanceUser:
			counts.User++
		case ProvenanceRaw:
			counts.Raw++
		}
	}
	return counts
}

// CountByTargetModel tallies the list by target model. Raw pass-through
// features carry no target model and are excluded.
func (l FeatureList) CountByTargetModel() map[TargetModel]int {
	counts := make(map[TargetModel]int)
	for _, f := range l {
		if f.TargetModel.IsValid() {
			counts[f.TargetModel]++
		}
	}
	return counts
}
