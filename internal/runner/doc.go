// Package runner executes external tools for the pipeline stages.
//
// Each invocation merges the child's stdout and stderr into a single ordered
// stream, forwards every line to an Observer as it is emitted, and blocks
// until the process exits. A non-zero exit surfaces as an ExitError carrying
// the exit code and the command line that failed. The Executor interface
// exists so stage tests can substitute a fake without spawning processes.
package runner
