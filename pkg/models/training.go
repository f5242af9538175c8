package models

// ModelType selects which propensity model to train.
type ModelType string

const (
	ModelChurn       ModelType = "churn"
	ModelCall        ModelType = "call"
	ModelSpendChange ModelType = "spend_change"
)

// IsValid returns true for one of the three trainable model types.
func (m ModelType) IsValid() bool {
	switch m {
	case ModelChurn, ModelCall, ModelSpendChange:
		return true
	default:
		return false
	}
}

// Name returns the propensity model name for the type.
func (m ModelType) Name() string {
	switch m {
	case ModelChurn:
		return "churn_propensity"
	case ModelCall:
		return "call_propensity"
	case ModelSpendChange:
		return "spend_change_propensity"
	default:
		return ""
	}
}

// TargetColumn returns the label column the model predicts.
func (m ModelType) TargetColumn() string {
	switch m {
	case ModelChurn:
		return "churn_after_migration"
	case ModelCall:
		return "number_of_calls_post_migration"
	case ModelSpendChange:
		return "change_in_spend"
	default:
		return ""
	}
}

// Binary reports whether the target is a binary classification label, which
// controls stratification of the train/test split.
func (m ModelType) Binary() bool {
	return m == ModelChurn
}

// LeaderboardEntry is one row of the AutoML model leaderboard.
type LeaderboardEntry struct {
	Model string  `json:"model"`
	Score float64 `json:"score_val"`
}

// TrainingResult summarizes one training run. Leaderboard and results are
// best-effort: a failed leaderboard fetch or prediction pass leaves those
// fields empty without failing the run.
type TrainingResult struct {
	ModelName         string             `json:"model_name"`
	ModelType         ModelType          `json:"model_type"`
	Target            string             `json:"target"`
	OutputPath        string             `json:"output_path"`
	DataSource        string             `json:"data_source"`
	Rows              int                `json:"rows"`
	TrainSize         int                `json:"train_size"`
	TestSize          int                `json:"test_size"`
	PredictionsTested int                `json:"predictions_tested"`
	PredictionsCount  int                `json:"predictions_count"`
	Leaderboard       []LeaderboardEntry `json:"leaderboard,omitempty"`
	ResultsPath       string             `json:"results_s3_path,omitempty"`
	Status            string             `json:"status"`
}
