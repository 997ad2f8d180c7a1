// Package preflight verifies the environment before a pipeline run starts:
// tool binaries, directory permissions, free disk space, and the speech
// engine's Python environment.
package preflight
