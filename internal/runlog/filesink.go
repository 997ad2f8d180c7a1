package runlog

import (
	"os"
	"path/filepath"
)

// LogFileName is the fixed run log file created inside the work directory.
const LogFileName = "whisper_youtube_log.txt"

// FileSink appends each line, newline-terminated, to the run log file.
// Failures are swallowed: the run log is diagnostics only and must never
// fail a pipeline run.
type FileSink struct {
	path string
}

// NewFileSink builds a sink writing to <workDir>/whisper_youtube_log.txt.
func NewFileSink(workDir string) *FileSink {
	return &FileSink{path: filepath.Join(workDir, LogFileName)}
}

// Path returns the log file location.
func (s *FileSink) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Append writes one line. Open-append-close per line keeps the file coherent
// if the process dies mid-run.
func (s *FileSink) Append(line string) {
	if s == nil || s.path == "" {
		return
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line + "\n")
	_ = f.Close()
}
