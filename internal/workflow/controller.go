package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ytscribe/internal/audioextract"
	"ytscribe/internal/config"
	"ytscribe/internal/fetch"
	"ytscribe/internal/logging"
	"ytscribe/internal/normalize"
	"ytscribe/internal/notifications"
	"ytscribe/internal/preflight"
	"ytscribe/internal/queue"
	"ytscribe/internal/runner"
	"ytscribe/internal/services"
	"ytscribe/internal/stage"
	"ytscribe/internal/transcribe"
)

// lockFileName is the flock target guarding a work directory across
// processes.
const lockFileName = ".ytscribe.lock"

type pipelineStage struct {
	name             string
	handler          stage.Handler
	processingStatus queue.Status
	doneStatus       queue.Status
}

// StageSet bundles the concrete stage handlers the controller orchestrates.
type StageSet struct {
	Fetcher     stage.Handler
	Normalizer  stage.Handler
	Extractor   stage.Handler
	Transcriber stage.Handler
}

// EngineCheck probes the speech engine before any stage runs. It exists as
// a field so tests can substitute a cheap probe.
type EngineCheck func(ctx context.Context, cfg *config.Config, observer runner.Observer) preflight.Result

// Controller runs the four-stage pipeline for one request at a time.
type Controller struct {
	cfg         *config.Config
	store       *queue.Store
	logger      *slog.Logger
	notifier    notifications.Service
	observer    runner.Observer
	stages      []pipelineStage
	engineCheck EngineCheck

	mu      sync.Mutex
	running bool
}

// NewController wires the default stage handlers into a controller.
func NewController(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer) (*Controller, error) {
	fetcher, err := fetch.NewFetcher(cfg, store, logger, observer)
	if err != nil {
		return nil, fmt.Errorf("fetch stage: %w", err)
	}
	normalizer, err := normalize.NewNormalizer(cfg, store, logger, observer)
	if err != nil {
		return nil, fmt.Errorf("normalize stage: %w", err)
	}
	extractor, err := audioextract.NewExtractor(cfg, store, logger, observer)
	if err != nil {
		return nil, fmt.Errorf("audioextract stage: %w", err)
	}
	transcriber, err := transcribe.NewTranscriber(cfg, store, logger, observer)
	if err != nil {
		return nil, fmt.Errorf("transcribe stage: %w", err)
	}
	stages := StageSet{
		Fetcher:     fetcher,
		Normalizer:  normalizer,
		Extractor:   extractor,
		Transcriber: transcriber,
	}
	return NewControllerWithStages(cfg, store, logger, observer, stages, notifications.NewService(cfg), preflight.CheckEngine), nil
}

// NewControllerWithStages allows injecting custom handlers, notifier, and
// engine probe (used for tests).
func NewControllerWithStages(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer, stages StageSet, notifier notifications.Service, engineCheck EngineCheck) *Controller {
	return &Controller{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifier,
		observer: observer,
		stages: []pipelineStage{
			{name: "fetch", handler: stages.Fetcher, processingStatus: queue.StatusFetching, doneStatus: queue.StatusFetched},
			{name: "normalize", handler: stages.Normalizer, processingStatus: queue.StatusNormalizing, doneStatus: queue.StatusNormalized},
			{name: "audioextract", handler: stages.Extractor, processingStatus: queue.StatusExtracting, doneStatus: queue.StatusExtracted},
			{name: "transcribe", handler: stages.Transcriber, processingStatus: queue.StatusTranscribing, doneStatus: queue.StatusCompleted},
		},
		engineCheck: engineCheck,
	}
}

// HealthCheck aggregates the readiness of every stage.
func (c *Controller) HealthCheck(ctx context.Context) []stage.Health {
	health := make([]stage.Health, 0, len(c.stages))
	for _, stg := range c.stages {
		if stg.handler == nil {
			health = append(health, stage.Unhealthy(stg.name, "handler unavailable"))
			continue
		}
		health = append(health, stg.handler.HealthCheck(ctx))
	}
	return health
}

// Run executes the full pipeline for the request and returns the outcome.
// The returned error carries a services marker for classification; the
// outcome is populated either way.
func (c *Controller) Run(ctx context.Context, req Request) (Outcome, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return Outcome{Status: queue.StatusFailed, Err: err}, err
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		err := services.Wrap(services.ErrInvalidRequest, "workflow", "start run",
			"A run is already in progress", nil)
		return Outcome{Status: queue.StatusFailed, Err: err}, err
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	// The running guard above makes this safe: handlers re-read the work
	// directory from the config on every stage.
	if req.WorkDir != "" {
		c.cfg.Paths.WorkDir = req.WorkDir
	}

	if err := os.MkdirAll(c.cfg.Paths.WorkDir, 0o755); err != nil {
		err = services.Wrap(services.ErrInvalidRequest, "workflow", "prepare work directory",
			"Could not create the work directory", err)
		return Outcome{Status: queue.StatusFailed, Err: err}, err
	}
	lock := flock.New(filepath.Join(c.cfg.Paths.WorkDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		err = services.Wrap(services.ErrInvalidRequest, "workflow", "lock work directory",
			"Another process is already using this work directory", err)
		return Outcome{Status: queue.StatusFailed, Err: err}, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()

	model := req.Model
	if model == "" {
		model = c.cfg.Transcription.Model
	}
	language := req.Language
	if language == "" {
		language = c.cfg.Transcription.Language
	}

	logger.Info("checking speech engine")
	c.banner("engine check")
	if result := c.engineCheck(ctx, c.cfg, c.observer); !result.Passed {
		err := services.Wrap(services.ErrEngineUnavailable, "workflow", "check speech engine",
			result.Detail, nil)
		logger.Error("speech engine unavailable", logging.String("detail", result.Detail))
		return Outcome{RunID: runID, Status: queue.StatusFailed, Err: err}, err
	}

	run, err := c.store.NewRun(ctx, runID, req.URL, model, language)
	if err != nil {
		err = fmt.Errorf("record run: %w", err)
		return Outcome{RunID: runID, Status: queue.StatusFailed, Err: err}, err
	}

	if notifyErr := c.notifier.NotifyRunStarted(ctx, req.URL); notifyErr != nil {
		logger.Warn("run started notification failed", logging.Error(notifyErr))
	}

	for _, stg := range c.stages {
		if err := c.runStage(ctx, logger, stg, run); err != nil {
			c.failRun(ctx, logger, run, err)
			if notifyErr := c.notifier.NotifyRunFailed(ctx, run.URL, err); notifyErr != nil {
				logger.Warn("run failed notification failed", logging.Error(notifyErr))
			}
			return c.outcome(run, started, err), err
		}
	}

	c.cleanup(ctx, logger, run)
	duration := time.Since(started)
	logger.Info("run completed",
		logging.String("transcript_file", run.TranscriptFile),
		logging.Duration("duration", duration))
	if notifyErr := c.notifier.NotifyTranscriptReady(ctx, run.BaseName, run.TranscriptFile, duration); notifyErr != nil {
		logger.Warn("transcript ready notification failed", logging.Error(notifyErr))
	}
	return c.outcome(run, started, nil), nil
}

func (c *Controller) runStage(ctx context.Context, logger *slog.Logger, stg pipelineStage, run *queue.Run) error {
	if stg.handler == nil {
		return fmt.Errorf("stage %s missing handler", stg.name)
	}
	stageCtx := services.WithStage(ctx, stg.name)
	stageLogger := logging.WithContext(stageCtx, c.logger)

	run.Status = stg.processingStatus
	if err := c.store.Update(stageCtx, run); err != nil {
		return fmt.Errorf("persist %s transition: %w", stg.name, err)
	}

	c.banner(stg.name)
	stageLogger.Info("stage started")
	stageStart := time.Now()

	if err := stg.handler.Prepare(stageCtx, run); err != nil {
		return err
	}
	if err := stg.handler.Execute(stageCtx, run); err != nil {
		return err
	}

	run.Status = stg.doneStatus
	if err := c.store.Update(stageCtx, run); err != nil {
		return fmt.Errorf("persist %s result: %w", stg.name, err)
	}
	stageLogger.Info("stage finished", logging.Duration("duration", time.Since(stageStart)))
	return nil
}

// cleanup removes the intermediate WAV. Failure to delete never fails the
// run; the transcript already exists.
func (c *Controller) cleanup(ctx context.Context, logger *slog.Logger, run *queue.Run) {
	c.banner("cleanup")
	if run.AudioFile == "" {
		return
	}
	if err := os.Remove(run.AudioFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not delete intermediate WAV",
			logging.String("audio_file", run.AudioFile),
			logging.Error(err))
	}
}

func (c *Controller) failRun(ctx context.Context, logger *slog.Logger, run *queue.Run, cause error) {
	marker := services.Classify(cause)
	logger.Error("run failed",
		logging.String("classification", marker.Error()),
		logging.Error(cause))
	run.SetFailed(cause.Error())
	if err := c.store.Update(ctx, run); err != nil {
		logger.Error("failed to persist run failure", logging.Error(err))
	}
}

func (c *Controller) outcome(run *queue.Run, started time.Time, err error) Outcome {
	return Outcome{
		RunID:          run.RunID,
		Status:         run.Status,
		BaseName:       run.BaseName,
		VideoFile:      run.VideoFile,
		ContainerFile:  run.ContainerFile,
		TranscriptFile: run.TranscriptFile,
		Duration:       time.Since(started),
		Err:            err,
	}
}

// banner writes a stage separator into the combined run log so tool output
// from consecutive stages stays readable.
func (c *Controller) banner(name string) {
	if c.observer == nil {
		return
	}
	c.observer.Notify("==> " + name)
}
