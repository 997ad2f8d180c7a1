package config

import (
	"errors"
	"fmt"
	"strings"
)

// Models the speech engine accepts as --model values.
var validModels = map[string]struct{}{
	"tiny":   {},
	"base":   {},
	"small":  {},
	"medium": {},
	"large":  {},
}

// Languages the pipeline accepts; "auto" omits the language flag so the
// engine detects it.
var validLanguages = map[string]struct{}{
	"fr":   {},
	"en":   {},
	"es":   {},
	"auto": {},
}

// ValidModel reports whether model is an accepted engine model size.
func ValidModel(model string) bool {
	_, ok := validModels[strings.ToLower(strings.TrimSpace(model))]
	return ok
}

// ValidLanguage reports whether language is an accepted selection.
func ValidLanguage(language string) bool {
	_, ok := validLanguages[strings.ToLower(strings.TrimSpace(language))]
	return ok
}

// Validate checks semantic constraints after normalization.
func (c *Config) Validate() error {
	var problems []string

	if !ValidModel(c.Transcription.Model) {
		problems = append(problems, fmt.Sprintf("transcription.model: unknown model %q (tiny, base, small, medium, large)", c.Transcription.Model))
	}
	if !ValidLanguage(c.Transcription.Language) {
		problems = append(problems, fmt.Sprintf("transcription.language: unknown language %q (fr, en, es, auto)", c.Transcription.Language))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q (console, json)", c.Logging.Format))
	}
	if c.Preflight.MinFreeSpaceMiB < 0 {
		problems = append(problems, "preflight.min_free_space_mib: must not be negative")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
