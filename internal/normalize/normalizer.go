// Package normalize converts fetched videos into a uniform MP4 container.
package normalize

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

// Normalizer manages ffmpeg container normalization for fetched runs.
type Normalizer struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	client   ffmpeg.Transcoder
	observer runner.Observer
}

// NewNormalizer builds a normalizer backed by the configured ffmpeg binary.
func NewNormalizer(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer) (*Normalizer, error) {
	client, err := ffmpeg.New(cfg.Tools.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg client: %w", err)
	}
	return NewNormalizerWithClient(cfg, store, logger, observer, client), nil
}

// NewNormalizerWithClient allows injecting a custom transcoder (used for tests).
func NewNormalizerWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer, client ffmpeg.Transcoder) *Normalizer {
	return &Normalizer{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "normalize"),
		client:   client,
		observer: observer,
	}
}

// Prepare validates the fetched video is present on disk.
func (n *Normalizer) Prepare(ctx context.Context, run *queue.Run) error {
	if strings.TrimSpace(run.VideoFile) == "" {
		return services.Wrap(services.ErrNormalize, "normalize", "validate inputs",
			"No fetched video recorded for this run", nil)
	}
	if _, err := os.Stat(run.VideoFile); err != nil {
		return services.Wrap(services.ErrNormalize, "normalize", "validate inputs",
			"Fetched video is missing from the work directory", err)
	}
	return nil
}

// Execute produces the normalized MP4 and records it on the run.
func (n *Normalizer) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, n.logger)
	layout := naming.NewLayout(n.cfg.Paths.WorkDir)
	rc := naming.RunContext{BaseName: run.BaseName, DateTag: run.DateTag, Layout: layout}
	dst := rc.ContainerPath()

	onFallback := func(strategy string, err error) {
		logger.Warn("normalize strategy failed, trying next",
			logging.String("strategy", strategy),
			logging.Error(err))
	}

	if err := n.client.Normalize(ctx, run.VideoFile, dst, onFallback, n.observer); err != nil {
		return services.Wrap(services.ErrNormalize, "normalize", "convert container",
			"ffmpeg could not produce an MP4 from the fetched video", err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrNormalize, "normalize", "verify output",
			"ffmpeg reported success but no MP4 was written", err)
	}

	run.ContainerFile = dst
	logger.Info("container normalized", logging.String("container_file", dst))
	return nil
}

// HealthCheck verifies the ffmpeg binary can be located.
func (n *Normalizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "normalize"
	if n.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	binary := strings.TrimSpace(n.cfg.Tools.FFmpeg)
	if binary == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg binary %q not found", binary))
	}
	return stage.Healthy(name)
}
