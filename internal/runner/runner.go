package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Observer receives one call per line of combined stdout/stderr from every
// spawned process, plus milestone lines emitted by the pipeline itself.
// Implementations must tolerate high call frequency and must not panic back
// into the pipeline.
type Observer interface {
	Notify(line string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(line string)

func (f ObserverFunc) Notify(line string) {
	if f != nil {
		f(line)
	}
}

// Command describes one external tool invocation.
type Command struct {
	Binary string
	Args   []string
	// Dir is the working directory for the child process.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
}

// String renders the command line the way it would be typed in a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Binary))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\"'$&|<>()") {
		return fmt.Sprintf("%q", arg)
	}
	return arg
}

// ExitError reports a process that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d: %s", e.Code, e.Command)
}

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes the command, streaming each merged output line to obs in
	// emission order, and returns the captured lines once the process exits.
	Run(ctx context.Context, cmd Command, obs Observer) ([]string, error)
}

// New returns the production executor.
func New() Executor {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, command Command, obs Observer) ([]string, error) {
	notify := func(line string) {
		if obs != nil {
			obs.Notify(line)
		}
	}
	notify("$ " + command.String())

	cmd := exec.CommandContext(ctx, command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	// One pipe for both streams keeps lines in the order the child emitted
	// them, which the Observer contract requires.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("start command: %w", err)
	}
	// The child holds its own copy of the write end; close ours so the
	// scanner sees EOF when the child exits.
	pw.Close()

	var lines []string
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		notify(line)
	}
	scanErr := scanner.Err()
	pr.Close()

	waitErr := cmd.Wait()
	if scanErr != nil {
		return lines, fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return lines, &ExitError{Command: command.String(), Code: exitErr.ExitCode()}
		}
		return lines, fmt.Errorf("wait command: %w", waitErr)
	}
	return lines, nil
}

// LastNonBlank returns the last line that is not empty after trimming, or ""
// when every line is blank.
func LastNonBlank(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
