package services

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/models"
)

// Registry records workflow progress onto session state and enforces the
// stage preconditions between operations. Stages only move forward;
// re-running an earlier operation overwrites its artifacts without
// rolling the stage back.
type Registry struct {
	// allowUnprofiled permits user candidates before any exploration.
	// Column validation is skipped in that case since there is no
	// profile to validate against.
	allowUnprofiled bool
	logger          *zap.Logger
}

// NewRegistry creates a registry.
func NewRegistry(allowUnprofiled bool, logger *zap.Logger) *Registry {
	return &Registry{
		allowUnprofiled: allowUnprofiled,
		logger:          logger.Named("registry"),
	}
}

// RecordExploration stores the most recent data profile and the explored
// location on the session.
func (r *Registry) RecordExploration(s *models.SessionState, location string, profile *models.DataProfile) {
	// A new profile invalidates nothing downstream on its own, but
	// confirmed features and submitted jobs were validated against the
	// old one. Flag the mismatch instead of silently replacing it.
	if len(s.Features) > 0 || len(s.Jobs) > 0 {
		r.logger.Warn("re-running exploration over a session with downstream artifacts",
			zap.String("session_id", s.ID),
			zap.Int("confirmed_features", len(s.Features)),
			zap.Int("jobs", len(s.Jobs)))
	}

	s.Profile = profile
	s.SourceLocation = location
	s.Advance(models.StageExplored)

	r.logger.Info("recorded exploration",
		zap.String("session_id", s.ID),
		zap.String("location", location),
		zap.Int("columns", len(profile.Columns)),
		zap.Int("sample_records", profile.SampleRecords))
}

// RecordCandidates stores a generation round. Requires a prior
// exploration.
func (r *Registry) RecordCandidates(s *models.SessionState, batch *models.CandidateBatch) error {
	if s.Profile == nil {
		return fmt.Errorf("candidate generation requires data exploration first: %w", apperrors.ErrPrecondition)
	}

	s.Candidates = batch
	s.Advance(models.StageCandidatesGenerated)

	r.logger.Info("recorded candidate batch",
		zap.String("session_id", s.ID),
		zap.Int("candidates", batch.Count()))
	return nil
}

// AddUserCandidate validates and appends an analyst-submitted candidate.
// Source columns are checked against the session profile; without a
// profile the call fails unless unprofiled submissions are enabled.
func (r *Registry) AddUserCandidate(s *models.SessionState, candidate models.FeatureCandidate) error {
	if !candidate.TargetModel.IsValid() {
		return fmt.Errorf("target_model %q: %w", candidate.TargetModel, apperrors.ErrInvalidTargetModel)
	}
	if candidate.FeatureName == "" {
		return fmt.Errorf("feature_name is required: %w", apperrors.ErrValidation)
	}

	if s.Profile == nil {
		if !r.allowUnprofiled {
			return fmt.Errorf("user features require data exploration first: %w", apperrors.ErrPrecondition)
		}
		r.logger.Warn("accepting user feature without a data profile",
			zap.String("session_id", s.ID),
			zap.String("feature_name", candidate.FeatureName))
	} else if missing := s.Profile.UnknownColumns(candidate.SourceColumns); len(missing) > 0 {
		return fmt.Errorf("source columns not found in data: %s: %w",
			strings.Join(missing, ", "), apperrors.ErrValidation)
	}

	candidate.Provenance = models.ProvenanceUser
	candidate.Complexity = "User-defined"
	candidate.SubmittedAt = time.Now().UTC()
	s.UserCandidates = append(s.UserCandidates, candidate)
	s.Advance(models.StageUserCandidatesAdded)

	r.logger.Info("added user candidate",
		zap.String("session_id", s.ID),
		zap.String("feature_name", candidate.FeatureName),
		zap.String("target_model", string(candidate.TargetModel)))
	return nil
}

// ConfirmFeatures assembles the final feature list: generated candidates
// selected by name, optionally all user candidates, and raw pass-through
// columns that exist in the profile. Unknown raw columns are skipped
// silently; unknown confirmed names are simply not matched.
func (r *Registry) ConfirmFeatures(s *models.SessionState, confirmedNames []string, includeUserFeatures bool, rawColumns []string) (models.FeatureList, error) {
	if s.Candidates == nil {
		return nil, fmt.Errorf("no generated candidates to confirm: %w", apperrors.ErrPrecondition)
	}

	confirmed := make(map[string]bool, len(confirmedNames))
	for _, name := range confirmedNames {
		confirmed[name] = true
	}

	var final models.FeatureList
	for _, model := range models.TargetModels {
		for _, candidate := range s.Candidates.ByModel[model] {
			if confirmed[candidate.FeatureName] {
				candidate.Provenance = models.ProvenanceGenerated
				candidate.TargetModel = model
				final = append(final, candidate)
			}
		}
	}

	if includeUserFeatures {
		final = append(final, s.UserCandidates...)
	}

	for _, col := range rawColumns {
		if s.Profile != nil && s.Profile.HasColumn(col) {
			final = append(final, models.RawFeature(col))
		}
	}

	s.Features = final
	s.Advance(models.StageConfirmed)

	counts := final.CountByProvenance()
	r.logger.Info("confirmed feature list",
		zap.String("session_id", s.ID),
		zap.Int("total", counts.Total()),
		zap.Int("generated", counts.Generated),
		zap.Int("user", counts.User),
		zap.Int("raw", counts.Raw))
	return final, nil
}

// RecordJobCreation appends a submitted job and remembers its output
// path as the default training data source.
func (r *Registry) RecordJobCreation(s *models.SessionState, job *models.JobRecord) {
	s.Jobs = append(s.Jobs, job)
	s.FeaturesOutputPath = job.OutputPath
	s.Advance(models.StageJobCreated)

	r.logger.Info("recorded job creation",
		zap.String("session_id", s.ID),
		zap.String("job_name", job.JobName))
}

// RecordJobRun marks a previously created job as running.
func (r *Registry) RecordJobRun(s *models.SessionState, jobName, runID string) error {
	job := s.FindJob(jobName)
	if job == nil {
		return fmt.Errorf("job %q not found in session history: %w", jobName, apperrors.ErrNotFound)
	}

	now := time.Now().UTC()
	job.RunID = runID
	job.Status = models.JobStatusRunning
	job.StartedAt = &now
	return nil
}
