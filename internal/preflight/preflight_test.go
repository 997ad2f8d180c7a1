package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("Work directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir: %+v", result)
	}

	result = preflight.CheckDirectoryAccess("Work directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatalf("expected failure for missing dir: %+v", result)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = preflight.CheckDirectoryAccess("Work directory", file)
	if result.Passed {
		t.Fatalf("expected failure for regular file: %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckFreeSpace(dir, 1)
	if !result.Passed {
		t.Fatalf("expected at least 1 MiB free in temp dir: %+v", result)
	}

	result = preflight.CheckFreeSpace(dir, 0)
	if !result.Passed || result.Detail != "check disabled" {
		t.Fatalf("expected disabled check to pass: %+v", result)
	}

	// No filesystem has this much headroom.
	result = preflight.CheckFreeSpace(dir, 1<<40)
	if result.Passed {
		t.Fatalf("expected failure for absurd threshold: %+v", result)
	}
}

func TestRunAllReportsMissingBinaries(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "runs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Tools.YtDlp = "definitely-not-a-real-binary"
	cfg.Preflight.MinFreeSpaceMiB = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	results := preflight.RunAll(context.Background(), &cfg)
	if preflight.Passed(results) {
		t.Fatalf("expected failure with missing yt-dlp: %+v", results)
	}
	var sawYtDlp bool
	for _, result := range results {
		if result.Name == "yt-dlp" && !result.Passed {
			sawYtDlp = true
		}
	}
	if !sawYtDlp {
		t.Fatalf("yt-dlp failure not reported: %+v", results)
	}
}
