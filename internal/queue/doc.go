// Package queue persists transcription runs in SQLite.
//
// Each run walks a fixed lifecycle from pending through the fetch,
// normalize, extract, and transcribe stages to completed or failed. The
// store records stage artifacts as they are produced so the status command
// and run history survive restarts.
package queue
