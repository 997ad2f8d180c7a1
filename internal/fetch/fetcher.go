// Package fetch downloads the remote video into the run's work directory.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/naming"
	"ytscribe/internal/queue"
	"ytscribe/internal/runner"
	"ytscribe/internal/services"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/stage"
	"ytscribe/internal/textutil"
)

// Fetcher manages yt-dlp downloads for pending runs.
type Fetcher struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	client   ytdlp.Downloader
	observer runner.Observer
}

// NewFetcher builds a fetcher backed by the configured yt-dlp binary.
func NewFetcher(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer) (*Fetcher, error) {
	client, err := ytdlp.New(cfg.Tools.YtDlp)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp client: %w", err)
	}
	return NewFetcherWithClient(cfg, store, logger, observer, client), nil
}

// NewFetcherWithClient allows injecting a custom downloader (used for tests).
func NewFetcherWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, observer runner.Observer, client ytdlp.Downloader) *Fetcher {
	return &Fetcher{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "fetch"),
		client:   client,
		observer: observer,
	}
}

// Prepare validates the request and lays out the work directory.
func (f *Fetcher) Prepare(ctx context.Context, run *queue.Run) error {
	if strings.TrimSpace(run.URL) == "" {
		return services.Wrap(services.ErrInvalidRequest, "fetch", "validate request",
			"No URL provided for the run", nil)
	}
	if run.DateTag == "" {
		run.DateTag = naming.DateTag(time.Now())
	}
	layout := naming.NewLayout(f.cfg.Paths.WorkDir)
	if err := layout.Ensure(); err != nil {
		return services.Wrap(services.ErrInvalidRequest, "fetch", "prepare work directory",
			"Could not create the work directory layout", err)
	}
	return nil
}

// Execute downloads the video and records the resulting file and base name.
func (f *Fetcher) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, f.logger)
	layout := naming.NewLayout(f.cfg.Paths.WorkDir)
	tmpl := naming.RunTemplate(run.DateTag)

	logger.Info("fetching video",
		logging.String("url", run.URL),
		logging.String("destination", layout.VideoDir))

	path, err := f.client.Download(ctx, run.URL, layout.VideoDir, tmpl, f.observer)
	if err != nil {
		return services.Wrap(services.ErrDownload, "fetch", "download video",
			"yt-dlp failed; check the URL and network connectivity", err)
	}

	// --restrict-filenames already keeps printed names ASCII-safe; the
	// fallback scan can surface a file that predates this run. When folding
	// changes the base, rename the file so every later artifact shares it.
	base := naming.BaseFromPath(path)
	if folded := textutil.SanitizeToken(base); folded != base {
		renamed := filepath.Join(filepath.Dir(path), folded+filepath.Ext(path))
		if err := os.Rename(path, renamed); err != nil {
			return services.Wrap(services.ErrDownload, "fetch", "rename video",
				"Could not rename the downloaded video to a safe base name", err)
		}
		path = renamed
		base = folded
	}

	run.VideoFile = path
	run.BaseName = base
	logger.Info("video fetched",
		logging.String("video_file", path),
		logging.String("base_name", run.BaseName))
	return nil
}

// HealthCheck verifies the yt-dlp binary can be located.
func (f *Fetcher) HealthCheck(ctx context.Context) stage.Health {
	const name = "fetch"
	if f.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	binary := strings.TrimSpace(f.cfg.Tools.YtDlp)
	if binary == "" {
		return stage.Unhealthy(name, "yt-dlp binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("yt-dlp binary %q not found", binary))
	}
	return stage.Healthy(name)
}
