package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/models"
)

func TestSessionGetOrCreate(t *testing.T) {
	m := NewSessionManager(120, zap.NewNop())

	t.Run("empty id creates a fresh session", func(t *testing.T) {
		s := m.GetOrCreate("")
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, models.StageInitial, s.Stage)
	})

	t.Run("known id returns the same state", func(t *testing.T) {
		s := m.GetOrCreate("client-1")
		s.SourceLocation = "s3://data/"

		again := m.GetOrCreate("client-1")
		assert.Same(t, s, again)
		assert.Equal(t, "s3://data/", again.SourceLocation)
	})

	t.Run("unknown id starts a new session under that id", func(t *testing.T) {
		s := m.GetOrCreate("never-seen")
		assert.Equal(t, "never-seen", s.ID)
		assert.Equal(t, models.StageInitial, s.Stage)
	})
}

func TestSessionGet(t *testing.T) {
	m := NewSessionManager(120, zap.NewNop())
	created := m.GetOrCreate("client-1")

	found, err := m.Get("client-1")
	require.NoError(t, err)
	assert.Same(t, created, found)

	_, err = m.Get("missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
