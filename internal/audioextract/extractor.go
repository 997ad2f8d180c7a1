// Package audioextract derives the speech-engine WAV from the normalized MP4.
package audioextract

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
	"ytscribe/internal/services/ffmpeg"
	"ytscribe/internal/stage"
)

// Extractor manages WAV extraction for normalized runs.
type Extractor struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	client   ffmpeg.Transcoder
	observer runner.Observer
}

// NewExtractor builds an extractor backed by the configured ffmpeg binary.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer) (*Extractor, error) {
	client, err := ffmpeg.New(cfg.Tools.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg client: %w", err)
	}
	return NewExtractorWithClient(cfg, store, logger, observer, client), nil
}

// NewExtractorWithClient allows injecting a custom transcoder (used for tests).
func NewExtractorWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer, client ffmpeg.Transcoder) *Extractor {
	return &Extractor{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "audioextract"),
		client:   client,
		observer: observer,
	}
}

// Prepare validates the normalized MP4 is present on disk.
func (e *Extractor) Prepare(ctx context.Context, run *queue.Run) error {
	if strings.TrimSpace(run.ContainerFile) == "" {
		return services.Wrap(services.ErrAudioExtract, "audioextract", "validate inputs",
			"No normalized MP4 recorded for this run", nil)
	}
	if _, err := os.Stat(run.ContainerFile); err != nil {
		return services.Wrap(services.ErrAudioExtract, "audioextract", "validate inputs",
			"Normalized MP4 is missing from the work directory", err)
	}
	return nil
}

// Execute writes the mono 16 kHz WAV and records it on the run.
func (e *Extractor) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, e.logger)
	layout := naming.NewLayout(e.cfg.Paths.WorkDir)
	rc := naming.RunContext{BaseName: run.BaseName, DateTag: run.DateTag, Layout: layout}
	dst := rc.AudioPath()

	if err := e.client.ExtractAudio(ctx, run.ContainerFile, dst, e.observer); err != nil {
		return services.Wrap(services.ErrAudioExtract, "audioextract", "extract audio",
			"ffmpeg could not extract the speech-engine WAV", err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrAudioExtract, "audioextract", "verify output",
			"ffmpeg reported success but no WAV was written", err)
	}

	run.AudioFile = dst
	logger.Info("audio extracted", logging.String("audio_file", dst))
	return nil
}

// HealthCheck verifies the ffmpeg binary can be located.
func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	const name = "audioextract"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	binary := strings.TrimSpace(e.cfg.Tools.FFmpeg)
	if binary == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg binary %q not found", binary))
	}
	return stage.Healthy(name)
}
