package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/objectstore"
)

// listLimit bounds the number of objects scanned when the explored
// location is a prefix rather than a concrete file.
const listLimit = 50

// ExplorationService samples a dataset from object storage and records
// its profile on the session.
type ExplorationService struct {
	store      objectstore.Store
	registry   *Registry
	sampleSize int
	logger     *zap.Logger
}

// NewExplorationService creates an exploration service sampling at most
// sampleSize records per call.
func NewExplorationService(store objectstore.Store, registry *Registry, sampleSize int, logger *zap.Logger) *ExplorationService {
	return &ExplorationService{
		store:      store,
		registry:   registry,
		sampleSize: sampleSize,
		logger:     logger.Named("exploration"),
	}
}

// Explore profiles the dataset at location. A prefix location resolves
// to its first supported data object. The resulting profile replaces any
// previous one on the session.
func (e *ExplorationService) Explore(ctx context.Context, session *models.SessionState, location string) (*models.DataProfile, error) {
	dataLocation := location
	if !objectstore.SupportedDataFile(location) {
		resolved, err := e.resolveDataFile(ctx, location)
		if err != nil {
			return nil, err
		}
		dataLocation = resolved
	}

	body, err := e.store.Get(ctx, dataLocation)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dataLocation, err)
	}

	ds, err := objectstore.DecodeDataset(dataLocation, body, e.sampleSize)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", dataLocation, err)
	}

	profile := objectstore.BuildProfile(dataLocation, ds)
	e.registry.RecordExploration(session, location, profile)
	return profile, nil
}

// resolveDataFile lists a prefix and returns its first supported data
// object.
func (e *ExplorationService) resolveDataFile(ctx context.Context, prefix string) (string, error) {
	objects, err := e.store.List(ctx, prefix, listLimit)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", prefix, err)
	}

	for _, obj := range objects {
		if objectstore.SupportedDataFile(obj.Location) {
			e.logger.Debug("resolved data file under prefix",
				zap.String("prefix", prefix),
				zap.String("location", obj.Location))
			return obj.Location, nil
		}
	}
	return "", fmt.Errorf("no supported data files under %s: %w", prefix, apperrors.ErrNotFound)
}
