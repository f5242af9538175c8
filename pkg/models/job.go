package models

import "time"

// JobStatus is the local view of a submitted ETL job's lifecycle. Terminal
// success or failure is the external service's responsibility and is not
// tracked here.
type JobStatus string

const (
	JobStatusCreated JobStatus = "created"
	JobStatusRunning JobStatus = "running"
)

// JobRecord is the session-local record of one managed-ETL job submission.
// The job name is treated as a unique key within the session. Records are
// created on submission, mutated on run start, and never deleted.
type JobRecord struct {
	JobName      string           `json:"job_name"`
	InputPath    string           `json:"input_path"`
	OutputPath   string           `json:"output_path"`
	FeatureCount int              `json:"total_features"`
	Breakdown    ProvenanceCounts `json:"feature_breakdown"`
	Script       string           `json:"script_content"`
	Status       JobStatus        `json:"status"`
	RunID        string           `json:"job_run_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
}
