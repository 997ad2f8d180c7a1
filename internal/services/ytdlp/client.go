package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/naming"
	"ytscribe/internal/runner"
)

// Downloader defines the behaviour required by the fetch handler.
type Downloader interface {
	Download(ctx context.Context, url, destDir string, tmpl naming.Template, observer runner.Observer) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec runner.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   runner.Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		exec:   runner.New(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Download fetches the video at url into destDir and returns the absolute
// path of the resulting file. yt-dlp is asked to print the final on-disk
// path after any post-move; the last non-blank line of the combined output
// is taken as that path. When the printed path cannot be trusted the
// destination directory is scanned for files matching the template's
// literal prefix as a fallback.
func (c *Client) Download(ctx context.Context, url, destDir string, tmpl naming.Template, observer runner.Observer) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("url required")
	}
	if destDir == "" {
		return "", errors.New("destination directory required")
	}
	cmd := runner.Command{
		Binary: c.binary,
		Args: []string{
			"--no-playlist",
			"--restrict-filenames",
			"-f", "bv*+ba/best",
			"-o", tmpl.OutputPattern(destDir),
			"--print", "after_move:filepath",
			url,
		},
		Dir: destDir,
	}
	lines, err := c.exec.Run(ctx, cmd, observer)
	if err != nil {
		return "", err
	}
	if path := runner.LastNonBlank(lines); path != "" {
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return path, nil
		}
	}
	path, scanErr := scanForOutput(destDir, tmpl)
	if scanErr != nil {
		return "", scanErr
	}
	return path, nil
}

// scanForOutput locates the downloaded file by the template's literal
// prefix. It is a fallback for yt-dlp versions whose printed path does not
// match the file actually written.
func scanForOutput(destDir string, tmpl naming.Template) (string, error) {
	prefix := tmpl.LiteralPrefix()
	if prefix == "" {
		return "", errors.New("downloaded file path not reported")
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("scan destination: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && !strings.HasSuffix(name, ".part") {
			return filepath.Join(destDir, name), nil
		}
	}
	return "", fmt.Errorf("no downloaded file matching %q in %s", prefix, destDir)
}
