// Package runlog fans the pipeline's live output lines out to slow consumers
// without ever stalling the pipeline goroutine.
//
// The Hub implements runner.Observer: Notify enqueues the line into a bounded
// in-memory buffer and returns immediately; a dedicated drain goroutine
// delivers buffered lines to the registered sinks in the exact order they
// were published. When the buffer is full the oldest line is dropped, never
// the producer blocked. FileSink persists every line to the per-workdir run
// log file; its append failures are swallowed because the log is a
// diagnostics side channel, not pipeline state.
package runlog
