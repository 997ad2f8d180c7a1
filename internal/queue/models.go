package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a run.
type Status string

const (
	StatusPending      Status = "pending"
	StatusFetching     Status = "fetching"
	StatusFetched      Status = "fetched"
	StatusNormalizing  Status = "normalizing"
	StatusNormalized   Status = "normalized"
	StatusExtracting   Status = "extracting"
	StatusExtracted    Status = "extracted"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusFetched,
	StatusNormalizing,
	StatusNormalized,
	StatusExtracting,
	StatusExtracted,
	StatusTranscribing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusFetching:     {},
	StatusNormalizing:  {},
	StatusExtracting:   {},
	StatusTranscribing: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// Run represents a transcription run persisted in SQLite.
type Run struct {
	ID             int64
	RunID          string
	URL            string
	BaseName       string
	DateTag        string
	Status         Status
	Model          string
	Language       string
	VideoFile      string
	ContainerFile  string
	AudioFile      string
	TranscriptFile string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsProcessing returns true when the run's status reflects an in-flight stage.
func (r Run) IsProcessing() bool {
	return IsProcessingStatus(r.Status)
}

// IsTerminal reports whether the run has reached a final state.
func (r Run) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// SetFailed marks the run as failed with the given error message.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}
