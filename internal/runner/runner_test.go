package runner_test

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"ytscribe/internal/runner"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to /bin/sh")
	}
}

func TestRunStreamsMergedOutputInOrder(t *testing.T) {
	requireShell(t)

	var seen []string
	obs := runner.ObserverFunc(func(line string) { seen = append(seen, line) })

	lines, err := runner.New().Run(context.Background(), runner.Command{
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo one; echo two 1>&2; echo three"},
	}, obs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("unexpected captured lines: %#v", lines)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d = %q, want %q", i, lines[i], line)
		}
	}

	// First observer call is the command banner, then the output lines.
	if len(seen) != len(want)+1 {
		t.Fatalf("unexpected observer calls: %#v", seen)
	}
	if !strings.HasPrefix(seen[0], "$ ") {
		t.Fatalf("expected command banner first, got %q", seen[0])
	}
	for i, line := range want {
		if seen[i+1] != line {
			t.Fatalf("observer call %d = %q, want %q", i+1, seen[i+1], line)
		}
	}
}

func TestRunReportsExitCode(t *testing.T) {
	requireShell(t)

	_, err := runner.New().Run(context.Background(), runner.Command{
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo failing; exit 7"},
	}, nil)
	var exitErr *runner.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 7 {
		t.Fatalf("unexpected exit code: %d", exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "/bin/sh") {
		t.Fatalf("expected command line in error: %v", exitErr)
	}
}

func TestRunAppliesDirAndEnv(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	lines, err := runner.New().Run(context.Background(), runner.Command{
		Binary: "/bin/sh",
		Args:   []string{"-c", "pwd; printf '%s\\n' \"$PIPE_TEST_VAR\""},
		Dir:    dir,
		Env:    []string{"PIPE_TEST_VAR=hello"},
	}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("unexpected output: %#v", lines)
	}
	if !strings.HasSuffix(lines[0], strings.TrimPrefix(dir, "/private")) && lines[0] != dir {
		// macOS reports /private-prefixed temp dirs.
		t.Fatalf("unexpected working dir: %q want suffix of %q", lines[0], dir)
	}
	if lines[1] != "hello" {
		t.Fatalf("env var not applied: %#v", lines)
	}
}

func TestLastNonBlank(t *testing.T) {
	if got := runner.LastNonBlank([]string{"a", "b", "  ", ""}); got != "b" {
		t.Fatalf("LastNonBlank = %q, want b", got)
	}
	if got := runner.LastNonBlank(nil); got != "" {
		t.Fatalf("LastNonBlank(nil) = %q", got)
	}
}

func TestCommandString(t *testing.T) {
	cmd := runner.Command{Binary: "ffmpeg", Args: []string{"-i", "a file.mp4", "out.mp4"}}
	got := cmd.String()
	if got != `ffmpeg -i "a file.mp4" out.mp4` {
		t.Fatalf("unexpected command string: %q", got)
	}
}
