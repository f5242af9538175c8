package models

// Stage is the single monotonic progress marker for a session's workflow.
// Stages only move forward: re-running an earlier operation overwrites that
// operation's state but never rolls the stage back.
type Stage string

const (
	StageInitial             Stage = "initial"
	StageExplored            Stage = "explored"
	StageCandidatesGenerated Stage = "candidates_generated"
	StageUserCandidatesAdded Stage = "user_candidates_added"
	StageConfirmed           Stage = "confirmed"
	StageJobCreated          Stage = "job_created"
)

// stageOrder defines the linear progression. Operations may only advance the
// stage along this order; anything else is ignored.
var stageOrder = map[Stage]int{
	StageInitial:             0,
	StageExplored:            1,
	StageCandidatesGenerated: 2,
	StageUserCandidatesAdded: 3,
	StageConfirmed:           4,
	StageJobCreated:          5,
}

// Index returns the stage's position in the linear progression, or -1 for an
// unknown stage value.
func (s Stage) Index() int {
	if i, ok := stageOrder[s]; ok {
		return i
	}
	return -1
}

// Before reports whether s precedes other in the progression.
func (s Stage) Before(other Stage) bool {
	return s.Index() < other.Index()
}

// SessionState owns all per-session workflow state: the most recent data
// profile, the last LLM candidate batch, user-submitted candidates, the
// confirmed feature list, and the log of created jobs.
//
// Access is single-writer: each agent invocation is handled as one sequential
// execution, so no per-session lock is held.
type SessionState struct {
	ID string `json:"session_id"`

	Stage Stage `json:"conversation_stage"`

	Profile        *DataProfile       `json:"profile,omitempty"`
	Candidates     *CandidateBatch    `json:"candidates,omitempty"`
	UserCandidates []FeatureCandidate `json:"user_candidates"`
	Features       FeatureList        `json:"features"`
	Jobs           []*JobRecord       `json:"jobs"`

	// SourceLocation is the explored input prefix, reused as the default job
	// input path and the raw-data training fallback.
	SourceLocation string `json:"source_location,omitempty"`

	// FeaturesOutputPath is the most recent job output location, used as the
	// default training data source.
	FeaturesOutputPath string `json:"features_output_path,omitempty"`
}

// NewSessionState creates an empty session at the initial stage.
func NewSessionState(id string) *SessionState {
	return &SessionState{ID: id, Stage: StageInitial}
}

// Advance moves the stage forward to target. Returns true if the stage
// changed, false when target is at or behind the current stage (the stage is
// never rolled back).
func (s *SessionState) Advance(target Stage) bool {
	if s.Stage.Index() >= target.Index() {
		return false
	}
	s.Stage = target
	return true
}

// FindJob returns the job record with the given name, or nil.
func (s *SessionState) FindJob(name string) *JobRecord {
	for _, j := range s.Jobs {
		if j.JobName == name {
			return j
		}
	}
	return nil
}

// Counts is a structured snapshot of session progress returned with every
// chat response.
type Counts struct {
	Explored            bool `json:"s3_explored"`
	CandidatesGenerated bool `json:"llm_features_generated"`
	UserFeatures        int  `json:"user_features_count"`
	ConfirmedFeatures   int  `json:"final_features_count"`
	Jobs                int  `json:"glue_jobs_count"`
}

// Snapshot summarizes the session for the chat boundary.
func (s *SessionState) Snapshot() Counts {
	return Counts{
		Explored:            s.Profile != nil,
		CandidatesGenerated: s.Candidates != nil,
		UserFeatures:        len(s.UserCandidates),
		ConfirmedFeatures:   len(s.Features),
		Jobs:                len(s.Jobs),
	}
}
