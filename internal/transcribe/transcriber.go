// Package transcribe runs the speech engine over the extracted WAV.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/naming"
	"ytscribe/internal/queue"
	"ytscribe/internal/runner"
	"ytscribe/internal/services"
	"ytscribe/internal/services/whisper"
	"ytscribe/internal/stage"
)

// Transcriber manages Whisper transcription for extracted runs.
type Transcriber struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	engine   whisper.Engine
	observer runner.Observer
}

// NewTranscriber builds a transcriber backed by the configured interpreter.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer) (*Transcriber, error) {
	engine, err := whisper.New(whisper.Config{
		Python:     cfg.Tools.Python,
		ProjectDir: cfg.Tools.WhisperProjectDir,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper client: %w", err)
	}
	return NewTranscriberWithEngine(cfg, store, logger, observer, engine), nil
}

// NewTranscriberWithEngine allows injecting a custom engine (used for tests).
func NewTranscriberWithEngine(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer, engine whisper.Engine) *Transcriber {
	return &Transcriber{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "transcribe"),
		engine:   engine,
		observer: observer,
	}
}

// Prepare validates the extracted WAV is present on disk.
func (t *Transcriber) Prepare(ctx context.Context, run *queue.Run) error {
	if strings.TrimSpace(run.AudioFile) == "" {
		return services.Wrap(services.ErrTranscribe, "transcribe", "validate inputs",
			"No extracted WAV recorded for this run", nil)
	}
	if _, err := os.Stat(run.AudioFile); err != nil {
		return services.Wrap(services.ErrTranscribe, "transcribe", "validate inputs",
			"Extracted WAV is missing from the work directory", err)
	}
	return nil
}

// Execute transcribes the WAV and records the transcript on the run.
func (t *Transcriber) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, t.logger)
	layout := naming.NewLayout(t.cfg.Paths.WorkDir)

	model := run.Model
	if model == "" {
		model = t.cfg.Transcription.Model
	}
	language := run.Language
	if language == "" {
		language = t.cfg.Transcription.Language
	}

	logger.Info("transcribing audio",
		logging.String("audio_file", run.AudioFile),
		logging.String("model", model),
		logging.String("language", language))

	if err := t.engine.Transcribe(ctx, run.AudioFile, layout.TextDir, model, language, t.observer); err != nil {
		return services.Wrap(services.ErrTranscribe, "transcribe", "run speech engine",
			"Whisper failed; check GPU availability and the model name", err)
	}

	transcript := t.engine.ResolveTranscript(layout.TextDir, run.AudioFile, run.BaseName)
	if transcript == "" {
		return services.Wrap(services.ErrOutputMissing, "transcribe", "resolve transcript",
			"Whisper finished but no transcript was found in the text directory", nil)
	}

	run.TranscriptFile = transcript
	logger.Info("transcript ready", logging.String("transcript_file", transcript))
	return nil
}

// HealthCheck verifies the interpreter exists and the project directory is
// reachable. The import probe is left to preflight; it is too slow for a
// per-stage check.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribe"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	python := strings.TrimSpace(t.cfg.Tools.Python)
	if python == "" {
		return stage.Unhealthy(name, "python interpreter not configured")
	}
	if _, err := exec.LookPath(python); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("python interpreter %q not found", python))
	}
	if dir := strings.TrimSpace(t.cfg.Tools.WhisperProjectDir); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return stage.Unhealthy(name, fmt.Sprintf("whisper project directory %q not found", dir))
		}
	}
	return stage.Healthy(name)
}
