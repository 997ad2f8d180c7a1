package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/preflight"
	"ytscribe/internal/queue"
	"ytscribe/internal/runner"
	"ytscribe/internal/services"
	"ytscribe/internal/stage"
	"ytscribe/internal/workflow"
)

type stubHandler struct {
	name    string
	execute func(ctx context.Context, run *queue.Run) error
	block   chan struct{}
}

func (s *stubHandler) Prepare(ctx context.Context, run *queue.Run) error { return nil }

func (s *stubHandler) Execute(ctx context.Context, run *queue.Run) error {
	if s.block != nil {
		<-s.block
	}
	if s.execute != nil {
		return s.execute(ctx, run)
	}
	return nil
}

func (s *stubHandler) HealthCheck(ctx context.Context) stage.Health { return stage.Healthy(s.name) }

type stubNotifier struct {
	started   int
	ready     int
	failed    int
	lastError error
}

func (s *stubNotifier) NotifyRunStarted(ctx context.Context, url string) error {
	s.started++
	return nil
}

func (s *stubNotifier) NotifyTranscriptReady(ctx context.Context, baseName, transcriptFile string, duration time.Duration) error {
	s.ready++
	return nil
}

func (s *stubNotifier) NotifyRunFailed(ctx context.Context, url string, err error) error {
	s.failed++
	s.lastError = err
	return nil
}

func (s *stubNotifier) TestNotification(ctx context.Context) error { return nil }

type recordingObserver struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingObserver) Notify(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recordingObserver) banners() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var banners []string
	for _, line := range r.lines {
		if strings.HasPrefix(line, "==> ") {
			banners = append(banners, strings.TrimPrefix(line, "==> "))
		}
	}
	return banners
}

func engineOK(ctx context.Context, cfg *config.Config, observer runner.Observer) preflight.Result {
	return preflight.Result{Name: "Speech engine", Passed: true}
}

func engineDown(ctx context.Context, cfg *config.Config, observer runner.Observer) preflight.Result {
	return preflight.Result{Name: "Speech engine", Detail: "import failed"}
}

type fixture struct {
	cfg      *config.Config
	store    *queue.Store
	notifier *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "runs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	store, err := queue.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return &fixture{cfg: &cfg, store: store, notifier: &stubNotifier{}}
}

func (f *fixture) controller(stages workflow.StageSet, check workflow.EngineCheck) *workflow.Controller {
	return workflow.NewControllerWithStages(f.cfg, f.store, logging.NewNop(), nil, stages, f.notifier, check)
}

func happyStages(t *testing.T, cfg *config.Config) workflow.StageSet {
	t.Helper()
	workDir := cfg.Paths.WorkDir
	return workflow.StageSet{
		Fetcher: &stubHandler{name: "fetch", execute: func(ctx context.Context, run *queue.Run) error {
			run.BaseName = "clip_abc_20260826"
			run.DateTag = "20260826"
			run.VideoFile = filepath.Join(workDir, "video", "clip_abc_20260826.webm")
			return nil
		}},
		Normalizer: &stubHandler{name: "normalize", execute: func(ctx context.Context, run *queue.Run) error {
			run.ContainerFile = filepath.Join(workDir, "mp4", run.BaseName+".mp4")
			return nil
		}},
		Extractor: &stubHandler{name: "audioextract", execute: func(ctx context.Context, run *queue.Run) error {
			audio := filepath.Join(workDir, "mp4", run.BaseName+".wav")
			if err := os.MkdirAll(filepath.Dir(audio), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(audio, []byte("wav"), 0o644); err != nil {
				return err
			}
			run.AudioFile = audio
			return nil
		}},
		Transcriber: &stubHandler{name: "transcribe", execute: func(ctx context.Context, run *queue.Run) error {
			run.TranscriptFile = filepath.Join(workDir, "txt", run.BaseName+".txt")
			return nil
		}},
	}
}

func TestRunCompletesAndCleansUp(t *testing.T) {
	f := newFixture(t)
	controller := f.controller(happyStages(t, f.cfg), engineOK)

	outcome, err := controller.Run(context.Background(), workflow.Request{URL: "https://example.com/v"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !outcome.Succeeded() {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.TranscriptFile == "" || outcome.BaseName != "clip_abc_20260826" {
		t.Fatalf("outcome missing artifacts: %+v", outcome)
	}

	run, err := f.store.GetByRunID(context.Background(), outcome.RunID)
	if err != nil {
		t.Fatalf("reload run: %v", err)
	}
	if run.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", run.Status)
	}
	if _, err := os.Stat(run.AudioFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("intermediate WAV should be deleted, stat err: %v", err)
	}
	if f.notifier.started != 1 || f.notifier.ready != 1 || f.notifier.failed != 0 {
		t.Fatalf("unexpected notifications: %+v", f.notifier)
	}
}

func TestRunAnnouncesStagesInOrder(t *testing.T) {
	f := newFixture(t)
	observer := &recordingObserver{}
	controller := workflow.NewControllerWithStages(f.cfg, f.store, logging.NewNop(), observer,
		happyStages(t, f.cfg), f.notifier, engineOK)

	if _, err := controller.Run(context.Background(), workflow.Request{URL: "https://example.com/v"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"engine check", "fetch", "normalize", "audioextract", "transcribe", "cleanup"}
	got := observer.banners()
	if len(got) != len(want) {
		t.Fatalf("expected banners %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("banner %d: expected %q, got %q (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t)
	controller := f.controller(happyStages(t, f.cfg), engineOK)

	cases := []workflow.Request{
		{URL: ""},
		{URL: "not-a-url"},
		{URL: "ftp://example.com/v"},
		{URL: "rtmp://example.com/v"},
		{URL: "https://example.com/v", Model: "gigantic"},
		{URL: "https://example.com/v", Language: "klingon"},
		{URL: "https://example.com/v", WorkDir: filepath.Join(f.cfg.Paths.WorkDir, "nope")},
	}
	for _, req := range cases {
		_, err := controller.Run(context.Background(), req)
		if !errors.Is(err, services.ErrInvalidRequest) {
			t.Fatalf("request %+v: expected invalid request, got %v", req, err)
		}
	}
}

func TestRunFailsWhenEngineUnavailable(t *testing.T) {
	f := newFixture(t)
	controller := f.controller(happyStages(t, f.cfg), engineDown)

	_, err := controller.Run(context.Background(), workflow.Request{URL: "https://example.com/v"})
	if !errors.Is(err, services.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
	runs, err := f.store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("no run should be recorded before the engine check passes: %+v", runs)
	}
}

func TestRunRecordsStageFailure(t *testing.T) {
	f := newFixture(t)
	stages := happyStages(t, f.cfg)
	stages.Normalizer = &stubHandler{name: "normalize", execute: func(ctx context.Context, run *queue.Run) error {
		return services.Wrap(services.ErrNormalize, "normalize", "convert container", "ffmpeg exploded", nil)
	}}
	controller := f.controller(stages, engineOK)

	outcome, err := controller.Run(context.Background(), workflow.Request{URL: "https://example.com/v"})
	if !errors.Is(err, services.ErrNormalize) {
		t.Fatalf("expected normalize marker, got %v", err)
	}
	if outcome.Succeeded() {
		t.Fatalf("outcome should be failed: %+v", outcome)
	}

	run, storeErr := f.store.GetByRunID(context.Background(), outcome.RunID)
	if storeErr != nil {
		t.Fatalf("reload run: %v", storeErr)
	}
	if run.Status != queue.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("failure not persisted: %+v", run)
	}
	if f.notifier.failed != 1 {
		t.Fatalf("failure notification not sent: %+v", f.notifier)
	}
}

func TestRunRejectsConcurrentInvocation(t *testing.T) {
	f := newFixture(t)
	stages := happyStages(t, f.cfg)
	block := make(chan struct{})
	stages.Fetcher = &stubHandler{name: "fetch", block: block, execute: func(ctx context.Context, run *queue.Run) error {
		run.BaseName = "clip"
		return nil
	}}
	controller := f.controller(stages, engineOK)

	done := make(chan error, 1)
	go func() {
		_, err := controller.Run(context.Background(), workflow.Request{URL: "https://example.com/v"})
		done <- err
	}()

	// Wait until the first run reaches the fetching stage.
	deadline := time.After(5 * time.Second)
	for {
		runs, err := f.store.List(context.Background(), 1)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(runs) == 1 && runs[0].Status == queue.StatusFetching {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first run never reached fetching")
		case <-time.After(10 * time.Millisecond):
		}
	}

	_, err := controller.Run(context.Background(), workflow.Request{URL: "https://example.com/other"})
	if !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected in-progress rejection, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestHealthCheckAggregatesStages(t *testing.T) {
	f := newFixture(t)
	controller := f.controller(happyStages(t, f.cfg), engineOK)
	health := controller.HealthCheck(context.Background())
	if len(health) != 4 {
		t.Fatalf("expected four stage health records, got %d", len(health))
	}
	for _, h := range health {
		if !h.Ready {
			t.Fatalf("stub stages should be ready: %+v", h)
		}
	}
}
