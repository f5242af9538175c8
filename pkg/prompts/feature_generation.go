// Package prompts builds the LLM prompts used by the feature engineering
// agents.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/propense/feature-engine/pkg/models"
)

// FeatureGenerationSystemPrompt frames the candidate-generation call. The
// response contract (JSON object, per-model feature lists) is part of the
// prompt; the caller enforces it on decode.
const FeatureGenerationSystemPrompt = `You are a senior data scientist specializing in telecom customer analytics and migration projects.

Based on the provided data analysis, generate specific, actionable features for predicting three post-migration outcomes:
1. Propensity for customers to call support post-migration
2. Propensity for customers to churn post-migration
3. Propensity for customers to change their spending post-migration

For each feature, provide:
- feature_name: Clear, descriptive name
- description: What the feature measures
- formula: Exact mathematical formula using available columns
- source_columns: List of required columns from the data
- rationale: Why this feature is predictive for the specific outcome
- complexity: Low/Medium/High implementation complexity

Consider migration contexts:
- IT stack modernization
- End user device migrations
- Network infrastructure transitions

Focus on features that can be calculated from the available data columns.
Provide 3-5 features per propensity model.

Also suggest 2-3 additional data sources that would significantly improve each model.

Return your response as a structured JSON object with proper escaping.`

// BuildFeatureGenerationPrompt creates the user prompt for candidate
// generation from an exploration profile.
func BuildFeatureGenerationPrompt(profile *models.DataProfile) (string, error) {
	summary := map[string]any{
		"s3_location":          profile.Location,
		"total_sample_records": profile.SampleRecords,
		"available_columns":    profile.Columns,
		"numeric_columns":      profile.ColumnsOfType(models.ColumnNumeric),
		"categorical_columns":  profile.ColumnsOfType(models.ColumnCategorical),
		"date_columns":         profile.ColumnsOfType(models.ColumnDatetime),
		"column_statistics":    profile.Stats,
		"missing_values":       profile.MissingValues,
	}

	encoded, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode data summary: %w", err)
	}

	var prompt strings.Builder
	prompt.WriteString("Based on this telecom customer data, generate specific features for three propensity models:\n\n")
	prompt.WriteString("DATA ANALYSIS:\n")
	prompt.Write(encoded)
	prompt.WriteString("\n\nGenerate features that can be calculated using the available columns. For each feature, provide the exact formula using column names from the data.\n\n")
	prompt.WriteString(`Return a JSON structure with:
{
    "existing_data_features": {
        "call_propensity": [list of feature objects],
        "churn_propensity": [list of feature objects],
        "spend_change_propensity": [list of feature objects]
    },
    "additional_data_recommendations": {
        "call_propensity": [list of data source recommendations],
        "churn_propensity": [list of data source recommendations],
        "spend_change_propensity": [list of data source recommendations]
    }
}

Each feature object should have: feature_name, description, formula, source_columns, rationale, complexity.
Each data source recommendation should have: data_source, description, rationale, implementation.`)

	return prompt.String(), nil
}
