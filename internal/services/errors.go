package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline error taxonomy. Every stage failure is
// tagged with exactly one marker so callers can classify outcomes with
// errors.Is without parsing messages.
var (
	ErrEngineUnavailable = errors.New("speech engine unavailable")
	ErrDownload          = errors.New("download failed")
	ErrNormalize         = errors.New("normalize failed")
	ErrAudioExtract      = errors.New("audio extract failed")
	ErrTranscribe        = errors.New("transcribe failed")
	ErrOutputMissing     = errors.New("output missing")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrExternalTool      = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns the taxonomy marker carried by err, or ErrExternalTool
// when the error has no recognized marker.
func Classify(err error) error {
	for _, marker := range []error{
		ErrEngineUnavailable,
		ErrDownload,
		ErrNormalize,
		ErrAudioExtract,
		ErrTranscribe,
		ErrOutputMissing,
		ErrInvalidRequest,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return ErrExternalTool
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
