package training

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"veritext/internal/artifacts"
	"veritext/internal/config"
	"veritext/internal/convnet"
	"veritext/internal/dataset"
	"veritext/internal/logging"
	"veritext/internal/runs"
	"veritext/internal/scaler"
	"veritext/internal/services"
)

// Quick-mode shortcuts for pipeline smoke tests: a subsampled corpus, a
// narrower network, and a short schedule.
const (
	quickPerClass  = 500
	quickEpochs    = 5
	quickBatchSize = 64
	quickEarlyStop = 3
	quickPlateau   = 2
)

// Trainer drives a full training run: corpus load, preparation, split,
// scaler fit, network training, evaluation, and atomic bundle publish.
type Trainer struct {
	cfg    *config.Config
	store  *runs.Store
	logger *slog.Logger
}

// New builds a trainer. The store may be nil, in which case run bookkeeping
// is skipped.
func New(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Trainer{cfg: cfg, store: store, logger: logger}
}

// Run executes one training run end to end. The registry record and the
// evaluation report are returned on success; on failure the record is
// marked failed with the safe error detail and no artifacts are touched.
func (t *Trainer) Run(ctx context.Context, corpusPath string, quick bool) (*runs.Run, *Report, error) {
	mode := "full"
	if quick {
		mode = "quick"
	}
	seed := t.cfg.Training.Seed

	var run *runs.Run
	if t.store != nil {
		var err error
		run, err = t.store.Create(ctx, corpusPath, mode, seed)
		if err != nil {
			return nil, nil, err
		}
		ctx = services.WithRunID(ctx, run.ID)
	}

	logger := t.logger
	if run != nil {
		logger = logger.With(slog.String(logging.FieldRunID, run.ID))
	}
	logger.Info("training run starting",
		slog.String("corpus", corpusPath),
		slog.String("mode", mode),
		slog.Int64("seed", seed))

	report, err := t.execute(ctx, logger, corpusPath, quick, seed, run)
	if err != nil {
		if run != nil && t.store != nil {
			if failErr := t.store.Fail(context.WithoutCancel(ctx), run.ID, services.SafeMessage(err)); failErr != nil {
				logger.Error("recording run failure", logging.Error(failErr))
			}
		}
		return run, nil, err
	}

	if run != nil && t.store != nil {
		metricsJSON, marshalErr := json.Marshal(report)
		if marshalErr != nil {
			return run, report, fmt.Errorf("marshal metrics: %w", marshalErr)
		}
		if err := t.store.Complete(ctx, run.ID, string(metricsJSON)); err != nil {
			return run, report, err
		}
	}
	logger.Info("training run completed",
		slog.Float64("accuracy", report.Accuracy),
		slog.Float64("roc_auc", report.ROCAUC))
	return run, report, nil
}

func (t *Trainer) execute(ctx context.Context, logger *slog.Logger, corpusPath string, quick bool, seed int64, run *runs.Run) (*Report, error) {
	// Stage 1: corpus admission and label resolution.
	if err := t.setStatus(ctx, run, runs.StatusExtracting); err != nil {
		return nil, err
	}
	rows, skipped, err := dataset.LoadCSV(corpusPath, t.cfg.Detection.MinTextLength)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.Warn("skipped rows below minimum text length", slog.Int("skipped", skipped))
	}
	samples, err := dataset.ResolveCorpus(rows, logger)
	if err != nil {
		return nil, err
	}
	if quick {
		samples = dataset.SubsamplePerLabel(samples, quickPerClass, seed)
	}
	human, ai := dataset.CountByLabel(samples)
	logger.Info("corpus loaded",
		slog.Int("samples", len(samples)),
		slog.Int("human", human),
		slog.Int("ai", ai))

	// Stage 2: feature extraction, column pruning, and the stratified
	// split. Pruning runs on the full corpus so every partition shares the
	// manifest.
	if err := t.setStatus(ctx, run, runs.StatusPreparing); err != nil {
		return nil, err
	}
	prep, err := dataset.Prepare(samples, logger)
	if err != nil {
		return nil, err
	}
	split, err := dataset.StratifiedSplit(prep.Labels, seed)
	if err != nil {
		return nil, err
	}
	trainX, trainY := dataset.Gather(prep.Matrix, prep.Labels, split.Train)
	valX, valY := dataset.Gather(prep.Matrix, prep.Labels, split.Val)
	testX, testY := dataset.Gather(prep.Matrix, prep.Labels, split.Test)
	logger.Info("dataset split",
		slog.Int("train", len(trainX)),
		slog.Int("val", len(valX)),
		slog.Int("test", len(testX)))

	// The scaler sees only the training partition; the other splits are
	// transformed with its statistics.
	sc, err := scaler.Fit(trainX, prep.Manifest)
	if err != nil {
		return nil, err
	}
	if trainX, err = sc.TransformAll(trainX); err != nil {
		return nil, err
	}
	if valX, err = sc.TransformAll(valX); err != nil {
		return nil, err
	}
	if testX, err = sc.TransformAll(testX); err != nil {
		return nil, err
	}

	// Stage 3: network training.
	if err := t.setStatus(ctx, run, runs.StatusTraining); err != nil {
		return nil, err
	}
	netCfg := convnet.ProductionConfig()
	fitOpts := convnet.FitOptions{
		Epochs:            t.cfg.Training.Epochs,
		BatchSize:         t.cfg.Training.BatchSize,
		LearningRate:      t.cfg.Training.LearningRate,
		EarlyStopPatience: t.cfg.Training.EarlyStopPatience,
		PlateauPatience:   t.cfg.Training.PlateauPatience,
		PlateauFactor:     t.cfg.Training.PlateauFactor,
		Seed:              seed,
		Logger:            logger,
	}
	if quick {
		netCfg = convnet.QuickConfig()
		fitOpts.Epochs = quickEpochs
		fitOpts.BatchSize = quickBatchSize
		fitOpts.EarlyStopPatience = quickEarlyStop
		fitOpts.PlateauPatience = quickPlateau
	}
	net, err := convnet.New(netCfg, len(prep.Manifest), seed)
	if err != nil {
		return nil, err
	}
	hist, err := net.Fit(ctx, trainX, trainY, valX, valY, fitOpts)
	if err != nil {
		return nil, err
	}

	// Stage 4: held-out evaluation.
	if err := t.setStatus(ctx, run, runs.StatusEvaluating); err != nil {
		return nil, err
	}
	probs, err := net.PredictBatch(testX)
	if err != nil {
		return nil, err
	}
	report, err := Evaluate(probs, testY)
	if err != nil {
		return nil, err
	}
	report.TrainSamples = len(trainX)
	report.ValSamples = len(valX)
	report.Features = len(prep.Manifest)
	report.EpochsRun = len(hist.TrainLoss)
	report.BestEpoch = hist.BestEpoch + 1

	// Stage 5: atomic bundle publish.
	if err := t.setStatus(ctx, run, runs.StatusPublishing); err != nil {
		return nil, err
	}
	err = artifacts.Publish(t.cfg.Paths.ModelDir, func(dir string) error {
		if err := net.Save(filepath.Join(dir, artifacts.WeightsFile)); err != nil {
			return err
		}
		if err := sc.Save(filepath.Join(dir, artifacts.ScalerFile)); err != nil {
			return err
		}
		if err := artifacts.SaveManifest(filepath.Join(dir, artifacts.ManifestFile), prep.Manifest); err != nil {
			return err
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		return os.WriteFile(filepath.Join(dir, artifacts.MetricsFile), data, 0o644)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (t *Trainer) setStatus(ctx context.Context, run *runs.Run, status runs.Status) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTimeout, "training", "run", "run canceled", err)
	}
	if run == nil || t.store == nil {
		return nil
	}
	return t.store.SetStatus(ctx, run.ID, status)
}
