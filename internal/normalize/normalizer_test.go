package normalize_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/normalize"
	"ytscribe/internal/queue"
	"ytscribe/internal/runner"
	"ytscribe/internal/services"
)

type fakeTranscoder struct {
	normalizeErr error
	writeOutput  bool
	fallbacks    int
}

func (f *fakeTranscoder) Normalize(ctx context.Context, src, dst string, onFallback func(string, error), observer runner.Observer) error {
	if f.fallbacks > 0 && onFallback != nil {
		for i := 0; i < f.fallbacks; i++ {
			onFallback("remux", errors.New("unsupported codec"))
		}
	}
	if f.normalizeErr != nil {
		return f.normalizeErr
	}
	if f.writeOutput {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, []byte("mp4"), 0o644)
	}
	return nil
}

func (f *fakeTranscoder) ExtractAudio(ctx context.Context, src, dst string, observer runner.Observer) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "runs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func fetchedRun(t *testing.T, cfg *config.Config) *queue.Run {
	t.Helper()
	videoDir := filepath.Join(cfg.Paths.WorkDir, "video")
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	video := filepath.Join(videoDir, "clip_abc_20260826.webm")
	if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return &queue.Run{
		RunID:     "r1",
		Status:    queue.StatusFetched,
		BaseName:  "clip_abc_20260826",
		DateTag:   "20260826",
		VideoFile: video,
	}
}

func TestPrepareRequiresFetchedVideo(t *testing.T) {
	cfg := testConfig(t)
	n := normalize.NewNormalizerWithClient(cfg, nil, logging.NewNop(), nil, &fakeTranscoder{})
	err := n.Prepare(context.Background(), &queue.Run{RunID: "r1"})
	if !errors.Is(err, services.ErrNormalize) {
		t.Fatalf("expected normalize marker, got %v", err)
	}
}

func TestExecuteRecordsContainer(t *testing.T) {
	cfg := testConfig(t)
	run := fetchedRun(t, cfg)
	n := normalize.NewNormalizerWithClient(cfg, nil, logging.NewNop(), nil, &fakeTranscoder{writeOutput: true})
	if err := n.Execute(context.Background(), run); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := filepath.Join(cfg.Paths.WorkDir, "mp4", "clip_abc_20260826.mp4")
	if run.ContainerFile != want {
		t.Fatalf("expected %s, got %s", want, run.ContainerFile)
	}
}

func TestExecuteWrapsTranscodeFailure(t *testing.T) {
	cfg := testConfig(t)
	run := fetchedRun(t, cfg)
	n := normalize.NewNormalizerWithClient(cfg, nil, logging.NewNop(), nil, &fakeTranscoder{normalizeErr: errors.New("boom")})
	err := n.Execute(context.Background(), run)
	if !errors.Is(err, services.ErrNormalize) {
		t.Fatalf("expected normalize marker, got %v", err)
	}
}

func TestExecuteDetectsMissingOutput(t *testing.T) {
	cfg := testConfig(t)
	run := fetchedRun(t, cfg)
	n := normalize.NewNormalizerWithClient(cfg, nil, logging.NewNop(), nil, &fakeTranscoder{})
	err := n.Execute(context.Background(), run)
	if !errors.Is(err, services.ErrNormalize) {
		t.Fatalf("expected normalize marker, got %v", err)
	}
	if errors.Is(err, services.ErrOutputMissing) {
		t.Fatalf("missing MP4 is a normalize failure, got %v", err)
	}
}
