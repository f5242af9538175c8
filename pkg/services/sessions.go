// Package services contains the feature-engine business logic.
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/models"
)

// SessionManager owns session lifecycle: lookup by ID, creation with a
// fresh UUID, and TTL-based expiry of idle sessions. Session state is
// held in memory only; an expired or restarted session starts the
// workflow over.
type SessionManager struct {
	store  *cache.Cache
	logger *zap.Logger
}

// NewSessionManager creates a session manager whose sessions expire
// after ttlMinutes of inactivity.
func NewSessionManager(ttlMinutes int, logger *zap.Logger) *SessionManager {
	ttl := time.Duration(ttlMinutes) * time.Minute
	return &SessionManager{
		store:  cache.New(ttl, 10*time.Minute),
		logger: logger.Named("sessions"),
	}
}

// GetOrCreate returns the session for id, creating a fresh one when id
// is empty or unknown. Every access refreshes the TTL.
func (m *SessionManager) GetOrCreate(id string) *models.SessionState {
	if id != "" {
		if v, ok := m.store.Get(id); ok {
			s := v.(*models.SessionState)
			m.store.Set(id, s, cache.DefaultExpiration)
			return s
		}
	}

	if id == "" {
		id = uuid.NewString()
	}
	s := models.NewSessionState(id)
	m.store.Set(id, s, cache.DefaultExpiration)
	m.logger.Debug("created session", zap.String("session_id", id))
	return s
}

// Get returns the session for id or ErrNotFound.
func (m *SessionManager) Get(id string) (*models.SessionState, error) {
	v, ok := m.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return v.(*models.SessionState), nil
}

// Save refreshes the session's TTL. Session state is mutated in place,
// so Save is only needed to extend the retention window.
func (m *SessionManager) Save(s *models.SessionState) {
	m.store.Set(s.ID, s, cache.DefaultExpiration)
}
