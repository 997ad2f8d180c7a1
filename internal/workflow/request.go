package workflow

import (
	"net/url"
	"os"
	"strings"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/queue"
	"ytscribe/internal/services"
)

// Request describes one transcription run.
type Request struct {
	// URL is the remote video location. Required.
	URL string
	// WorkDir overrides the configured work directory when set. An explicit
	// work directory must already exist.
	WorkDir string
	// Model overrides the configured Whisper model when set.
	Model string
	// Language overrides the configured spoken language when set.
	Language string
}

// Normalize trims and lowercases the request fields in place.
func (r *Request) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
	r.WorkDir = strings.TrimSpace(r.WorkDir)
	r.Model = strings.ToLower(strings.TrimSpace(r.Model))
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
}

// Validate reports the first problem with the request, tagged with the
// invalid-request marker.
func (r Request) Validate() error {
	if r.URL == "" {
		return services.Wrap(services.ErrInvalidRequest, "request", "validate",
			"A video URL is required", nil)
	}
	parsed, err := url.Parse(r.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return services.Wrap(services.ErrInvalidRequest, "request", "validate",
			"The video URL must be an absolute http or https URL", err)
	}
	if r.WorkDir != "" {
		info, statErr := os.Stat(r.WorkDir)
		if statErr != nil || !info.IsDir() {
			return services.Wrap(services.ErrInvalidRequest, "request", "validate",
				"Work directory "+r.WorkDir+" does not exist", statErr)
		}
	}
	if r.Model != "" && !config.ValidModel(r.Model) {
		return services.Wrap(services.ErrInvalidRequest, "request", "validate",
			"Unknown Whisper model "+r.Model, nil)
	}
	if r.Language != "" && !config.ValidLanguage(r.Language) {
		return services.Wrap(services.ErrInvalidRequest, "request", "validate",
			"Unsupported language "+r.Language, nil)
	}
	return nil
}

// Outcome summarizes a finished run.
type Outcome struct {
	RunID          string
	Status         queue.Status
	BaseName       string
	VideoFile      string
	ContainerFile  string
	TranscriptFile string
	Duration       time.Duration
	Err            error
}

// Succeeded reports whether the run produced a transcript.
func (o Outcome) Succeeded() bool {
	return o.Status == queue.StatusCompleted
}
