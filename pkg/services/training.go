package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/propense/feature-engine/pkg/apperrors"
	"github.com/propense/feature-engine/pkg/automl"
	"github.com/propense/feature-engine/pkg/config"
	"github.com/propense/feature-engine/pkg/models"
	"github.com/propense/feature-engine/pkg/objectstore"
)

// splitSeed fixes the train/test partition so repeated runs over the
// same data compare the same held-out rows.
const splitSeed = 42

// TrainingService trains propensity models over engineered features. At
// most one training run executes per process; concurrent requests fail
// immediately instead of queueing.
type TrainingService struct {
	predictor automl.Predictor
	store     objectstore.Store
	cfg       config.TrainingConfig
	slot      *semaphore.Weighted

	// running mirrors the slot for observers. Reading it never touches
	// the semaphore, so a status check cannot race an acquiring Train
	// call into a spurious rejection.
	running atomic.Bool
	logger  *zap.Logger
}

// NewTrainingService creates a training service.
func NewTrainingService(predictor automl.Predictor, store objectstore.Store, cfg config.TrainingConfig, logger *zap.Logger) *TrainingService {
	return &TrainingService{
		predictor: predictor,
		store:     store,
		cfg:       cfg,
		slot:      semaphore.NewWeighted(1),
		logger:    logger.Named("training"),
	}
}

// InProgress reports whether a training run currently holds the slot.
func (t *TrainingService) InProgress() bool {
	return t.running.Load()
}

// Train runs the full pipeline for one model type: load features, split,
// fit, best-effort leaderboard, deploy, score held-out rows up to the
// prediction cap, persist merged results, and tear the endpoint down.
// featuresPath and outputPath fall back to the session's job output and
// the configured models path; timeLimitSeconds falls back to the
// configured default.
func (t *TrainingService) Train(ctx context.Context, session *models.SessionState, modelType models.ModelType, featuresPath, outputPath string, timeLimitSeconds int) (*models.TrainingResult, error) {
	if !modelType.IsValid() {
		return nil, fmt.Errorf("model_type %q must be one of churn, call, spend_change: %w",
			modelType, apperrors.ErrInvalidTargetModel)
	}

	if !t.slot.TryAcquire(1) {
		return nil, fmt.Errorf("training slot held: %w", apperrors.ErrTrainingInProgress)
	}
	t.running.Store(true)
	defer func() {
		t.running.Store(false)
		t.slot.Release(1)
	}()

	if timeLimitSeconds <= 0 {
		timeLimitSeconds = t.cfg.TimeLimitSeconds
	}
	if outputPath == "" {
		outputPath = t.cfg.ModelsOutputPath
	}
	if outputPath == "" {
		return nil, fmt.Errorf("no models output path configured: %w", apperrors.ErrValidation)
	}

	ds, dataSource, err := t.loadTrainingData(ctx, session, featuresPath)
	if err != nil {
		return nil, err
	}

	target := modelType.TargetColumn()
	if !ds.HasColumn(target) {
		return nil, fmt.Errorf("target column %q not found, available: %s: %w",
			target, strings.Join(ds.Columns, ", "), apperrors.ErrMissingTargetColumn)
	}

	train, test := splitDataset(ds, target, modelType.Binary())
	t.logger.Info("split training data",
		zap.String("model_type", string(modelType)),
		zap.String("data_source", dataSource),
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()))

	modelOutput := strings.TrimSuffix(outputPath, "/") + "/" + modelType.Name() + "/"

	trainCSV, err := train.MarshalCSV()
	if err != nil {
		return nil, fmt.Errorf("encode training split: %w", err)
	}
	trainLocation := modelOutput + "train/train.csv"
	if err := t.store.Put(ctx, trainLocation, trainCSV, "text/csv"); err != nil {
		return nil, fmt.Errorf("upload training split: %v: %w", err, apperrors.ErrExternalService)
	}

	jobName := fmt.Sprintf("%s-%d", strings.ReplaceAll(modelType.Name(), "_", "-"), time.Now().Unix())
	if err := t.predictor.Fit(ctx, automl.FitSpec{
		JobName:           jobName,
		TrainDataLocation: trainLocation,
		TargetColumn:      target,
		Binary:            modelType.Binary(),
		TimeLimitSeconds:  timeLimitSeconds,
		OutputPath:        modelOutput,
	}); err != nil {
		return nil, fmt.Errorf("fit %s: %w", modelType.Name(), err)
	}

	result := &models.TrainingResult{
		ModelName:  modelType.Name(),
		ModelType:  modelType,
		Target:     target,
		OutputPath: modelOutput,
		DataSource: dataSource,
		Rows:       ds.Len(),
		TrainSize:  train.Len(),
		TestSize:   test.Len(),
		Status:     "completed",
	}

	// Leaderboard is informational; a fetch failure never fails the run.
	if leaderboard, err := t.predictor.Leaderboard(ctx, jobName); err != nil {
		t.logger.Warn("could not fetch leaderboard", zap.String("job_name", jobName), zap.Error(err))
	} else {
		result.Leaderboard = leaderboard
	}

	t.scoreHeldOut(ctx, jobName, modelOutput, target, test, result)
	return result, nil
}

// scoreHeldOut deploys a temporary endpoint, scores held-out rows
// sequentially up to the prediction cap, and persists the merged
// results. Failures here degrade the result instead of failing the run,
// and the endpoint is always cleaned up once deployed.
func (t *TrainingService) scoreHeldOut(ctx context.Context, jobName, modelOutput, target string, test *objectstore.Dataset, result *models.TrainingResult) {
	endpoint, err := t.predictor.Deploy(ctx, jobName)
	if err != nil {
		t.logger.Warn("endpoint deployment failed, skipping predictions",
			zap.String("job_name", jobName), zap.Error(err))
		return
	}
	defer func() {
		if err := t.predictor.Cleanup(ctx, endpoint); err != nil {
			t.logger.Warn("endpoint cleanup failed", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}()

	limit := t.cfg.PredictionCap
	if test.Len() < limit {
		limit = test.Len()
	}
	result.PredictionsTested = limit

	featureColumns := make([]string, 0, len(test.Columns))
	for _, col := range test.Columns {
		if col != target {
			featureColumns = append(featureColumns, col)
		}
	}

	predictions := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		record, err := encodeRecord(test.Rows[i], featureColumns)
		if err != nil {
			t.logger.Warn("skipping unencodable record", zap.Int("index", i), zap.Error(err))
			continue
		}
		prediction, err := t.predictor.PredictRealTime(ctx, endpoint, record)
		if err != nil {
			t.logger.Warn("real-time prediction failed, stopping scoring",
				zap.Int("index", i), zap.Error(err))
			break
		}
		predictions = append(predictions, prediction)

		if (i+1)%50 == 0 {
			t.logger.Debug("prediction progress", zap.Int("scored", i+1), zap.Int("limit", limit))
		}
	}
	result.PredictionsCount = len(predictions)
	if len(predictions) == 0 {
		return
	}

	merged := &objectstore.Dataset{
		Columns: append(append([]string{}, test.Columns...), target+"_predicted"),
	}
	for i, prediction := range predictions {
		row := make(objectstore.Row, len(test.Rows[i])+1)
		for k, v := range test.Rows[i] {
			row[k] = v
		}
		row[target+"_predicted"] = prediction
		merged.Rows = append(merged.Rows, row)
	}

	resultsLocation := modelOutput + "test_results_with_predictions.csv"
	body, err := merged.MarshalCSV()
	if err != nil {
		t.logger.Warn("could not encode merged results", zap.Error(err))
		return
	}
	if err := t.store.Put(ctx, resultsLocation, body, "text/csv"); err != nil {
		t.logger.Warn("could not persist merged results", zap.String("location", resultsLocation), zap.Error(err))
		return
	}
	result.ResultsPath = resultsLocation
}

// loadTrainingData resolves and decodes the training dataset. A
// directory path is probed for the job's CSV output first, then its
// parquet output; failures fall back to the session's raw source.
func (t *TrainingService) loadTrainingData(ctx context.Context, session *models.SessionState, featuresPath string) (*objectstore.Dataset, string, error) {
	if featuresPath == "" {
		featuresPath = session.FeaturesOutputPath
	}

	if featuresPath != "" {
		if ds, location, err := t.loadFrom(ctx, featuresPath); err == nil {
			return ds, location, nil
		} else {
			t.logger.Warn("could not load engineered features, falling back to raw data",
				zap.String("features_path", featuresPath), zap.Error(err))
		}
	}

	if session.SourceLocation == "" {
		return nil, "", fmt.Errorf("no feature data or raw data path available, run feature engineering first: %w",
			apperrors.ErrPrecondition)
	}
	ds, location, err := t.loadFrom(ctx, session.SourceLocation)
	if err != nil {
		return nil, "", err
	}
	return ds, location, nil
}

func (t *TrainingService) loadFrom(ctx context.Context, path string) (*objectstore.Dataset, string, error) {
	if strings.HasSuffix(path, "/") {
		for _, sub := range []string{"features_csv/", "features/"} {
			location, err := t.firstDataFile(ctx, path+sub)
			if err != nil {
				continue
			}
			ds, err := t.decode(ctx, location)
			if err != nil {
				continue
			}
			return ds, location, nil
		}
		location, err := t.firstDataFile(ctx, path)
		if err != nil {
			return nil, "", err
		}
		ds, err := t.decode(ctx, location)
		if err != nil {
			return nil, "", err
		}
		return ds, location, nil
	}

	ds, err := t.decode(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return ds, path, nil
}

func (t *TrainingService) firstDataFile(ctx context.Context, prefix string) (string, error) {
	objects, err := t.store.List(ctx, prefix, listLimit)
	if err != nil {
		return "", err
	}
	for _, obj := range objects {
		if objectstore.SupportedDataFile(obj.Location) {
			return obj.Location, nil
		}
	}
	return "", fmt.Errorf("no data files under %s: %w", prefix, apperrors.ErrNotFound)
}

func (t *TrainingService) decode(ctx context.Context, location string) (*objectstore.Dataset, error) {
	body, err := t.store.Get(ctx, location)
	if err != nil {
		return nil, err
	}
	return objectstore.DecodeDataset(location, body, 0)
}

// splitDataset partitions rows 80/20. Binary targets are stratified so
// both classes appear in the held-out split in proportion.
func splitDataset(ds *objectstore.Dataset, target string, stratify bool) (train, test *objectstore.Dataset) {
	rng := rand.New(rand.NewSource(splitSeed))
	train = &objectstore.Dataset{Columns: ds.Columns}
	test = &objectstore.Dataset{Columns: ds.Columns}

	var groups [][]int
	if stratify {
		byClass := make(map[string][]int)
		var order []string
		for i, row := range ds.Rows {
			v := row[target]
			if _, seen := byClass[v]; !seen {
				order = append(order, v)
			}
			byClass[v] = append(byClass[v], i)
		}
		for _, v := range order {
			groups = append(groups, byClass[v])
		}
	} else {
		all := make([]int, ds.Len())
		for i := range all {
			all[i] = i
		}
		groups = [][]int{all}
	}

	for _, group := range groups {
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		testN := len(group) / 5
		for i, idx := range group {
			if i < testN {
				test.Rows = append(test.Rows, ds.Rows[idx])
			} else {
				train.Rows = append(train.Rows, ds.Rows[idx])
			}
		}
	}
	return train, test
}

// encodeRecord encodes one row as a headerless CSV record in column
// order.
func encodeRecord(row objectstore.Row, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	record := make([]string, len(columns))
	for i, col := range columns {
		record[i] = row[col]
	}
	if err := w.Write(record); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
