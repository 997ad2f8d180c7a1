// Package workflow drives one transcription run through the fetch,
// normalize, extract, and transcribe stages.
//
// The controller owns the run lifecycle: it validates the request, probes
// the speech engine, persists every status transition, and guarantees the
// work directory is only processed by one run at a time (an in-process
// guard plus a file lock against concurrent invocations).
package workflow
