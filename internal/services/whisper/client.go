package whisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/runner"
)

// Defaults for the engine invocation.
const (
	Device       = "cuda"
	Task         = "transcribe"
	OutputFormat = "txt"

	// LanguageAuto lets the engine detect the spoken language.
	LanguageAuto = "auto"
)

// Engine defines the behaviour required by the transcribe handler and
// preflight checks.
type Engine interface {
	EnsureAvailable(ctx context.Context, observer runner.Observer) error
	Transcribe(ctx context.Context, audioPath, outputDir, model, language string, observer runner.Observer) error
	ResolveTranscript(outputDir, audioPath, baseName string) string
}

// Config carries the interpreter and project directory the engine runs in.
type Config struct {
	Python     string
	ProjectDir string
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

// Client wraps Whisper CLI interactions.
type Client struct {
	cfg  Config
	exec runner.Executor
}

// New constructs a Whisper client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.Python = strings.TrimSpace(cfg.Python)
	if cfg.Python == "" {
		return nil, errors.New("python interpreter required")
	}
	client := &Client{
		cfg:  cfg,
		exec: runner.New(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EnsureAvailable verifies the whisper module can be imported by the
// configured interpreter inside the project directory.
func (c *Client) EnsureAvailable(ctx context.Context, observer runner.Observer) error {
	cmd := runner.Command{
		Binary: c.cfg.Python,
		Args:   []string{"-c", "import whisper; print('OK: whisper importable')"},
		Dir:    c.cfg.ProjectDir,
		Env:    []string{"PYTHONUNBUFFERED=1"},
	}
	_, err := c.exec.Run(ctx, cmd, observer)
	if err != nil {
		return fmt.Errorf("whisper import check: %w", err)
	}
	return nil
}

// Transcribe runs the engine over audioPath, writing a plain-text transcript
// into outputDir. A language of "auto" leaves detection to the engine.
func (c *Client) Transcribe(ctx context.Context, audioPath, outputDir, model, language string, observer runner.Observer) error {
	if audioPath == "" || outputDir == "" {
		return errors.New("audio path and output directory required")
	}
	args := []string{
		"-m", "whisper",
		audioPath,
		"--model", model,
		"--device", Device,
		"--task", Task,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--verbose", "True",
	}
	if language != "" && language != LanguageAuto {
		args = append(args, "--language", language)
	}
	cmd := runner.Command{
		Binary: c.cfg.Python,
		Args:   args,
		Dir:    c.cfg.ProjectDir,
		Env:    []string{"PYTHONUNBUFFERED=1"},
	}
	_, err := c.exec.Run(ctx, cmd, observer)
	return err
}

// ResolveTranscript returns the transcript path the engine produced, or ""
// when none exists. The engine names the transcript after the audio file;
// older releases occasionally truncate the stem, so a prefix scan over the
// run's base name covers those.
func (c *Client) ResolveTranscript(outputDir, audioPath, baseName string) string {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	expected := filepath.Join(outputDir, stem+".txt")
	if info, err := os.Stat(expected); err == nil && !info.IsDir() {
		return expected
	}
	if baseName == "" {
		return ""
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, baseName) && strings.HasSuffix(name, ".txt") {
			return filepath.Join(outputDir, name)
		}
	}
	return ""
}
