package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ytscribe/internal/runner"
)

// Transcoder defines the behaviour required by the normalize and audio
// extraction handlers.
type Transcoder interface {
	Normalize(ctx context.Context, src, dst string, onFallback func(strategy string, err error), observer runner.Observer) error
	ExtractAudio(ctx context.Context, src, dst string, observer runner.Observer) error
}

// Strategy names one ffmpeg argument recipe for producing an MP4.
type Strategy struct {
	Name string
	Args func(src, dst string) []string
}

// NormalizeStrategies returns the ordered recipes tried when normalizing a
// container. The stream-copy remux is cheap and preferred; the re-encode
// handles codecs MP4 cannot carry.
func NormalizeStrategies() []Strategy {
	return []Strategy{
		{
			Name: "remux",
			Args: func(src, dst string) []string {
				return []string{
					"-y", "-i", src,
					"-c:v", "copy",
					"-c:a", "aac",
					"-b:a", "192k",
					"-movflags", "+faststart",
					dst,
				}
			},
		},
		{
			Name: "reencode",
			Args: func(src, dst string) []string {
				return []string{
					"-y", "-i", src,
					"-c:v", "libx264",
					"-preset", "veryfast",
					"-crf", "22",
					"-c:a", "aac",
					"-b:a", "192k",
					"-movflags", "+faststart",
					dst,
				}
			},
		},
	}
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

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary string
	exec   runner.Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
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

// Normalize converts src into an MP4 at dst, trying each strategy in order
// until one succeeds. onFallback, when set, is invoked with the failed
// strategy name before the next attempt.
func (c *Client) Normalize(ctx context.Context, src, dst string, onFallback func(strategy string, err error), observer runner.Observer) error {
	if src == "" || dst == "" {
		return errors.New("source and destination required")
	}
	strategies := NormalizeStrategies()
	var lastErr error
	for i, strategy := range strategies {
		cmd := runner.Command{
			Binary: c.binary,
			Args:   strategy.Args(src, dst),
			Dir:    filepath.Dir(dst),
		}
		_, err := c.exec.Run(ctx, cmd, observer)
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("%s: %w", strategy.Name, err)
		if ctx.Err() != nil {
			return lastErr
		}
		if i < len(strategies)-1 && onFallback != nil {
			onFallback(strategy.Name, err)
		}
	}
	return lastErr
}

// ExtractAudio writes a mono 16 kHz 16-bit PCM WAV of src's audio to dst.
func (c *Client) ExtractAudio(ctx context.Context, src, dst string, observer runner.Observer) error {
	if src == "" || dst == "" {
		return errors.New("source and destination required")
	}
	cmd := runner.Command{
		Binary: c.binary,
		Args: []string{
			"-y", "-i", src,
			"-vn",
			"-ac", "1",
			"-ar", "16000",
			"-c:a", "pcm_s16le",
			dst,
		},
		Dir: filepath.Dir(dst),
	}
	_, err := c.exec.Run(ctx, cmd, observer)
	return err
}
