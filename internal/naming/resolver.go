package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const dateLayout = "20060102"

// DateTag formats the run date stamp shared by every artifact of a run.
func DateTag(now time.Time) string {
	return now.Format(dateLayout)
}

// Template is a yt-dlp output name template with unresolved placeholders.
type Template struct {
	raw string
}

// RunTemplate builds the per-run name template: truncated title, remote
// identifier, date tag. Title length is capped so paths stay short.
func RunTemplate(dateTag string) Template {
	return Template{raw: fmt.Sprintf("%%(title).80s_%%(id)s_%s", dateTag)}
}

// TemplateFromString wraps an explicit template value (used in tests and by
// the fetch fallback scan contract).
func TemplateFromString(raw string) Template {
	return Template{raw: raw}
}

func (t Template) String() string { return t.raw }

// LiteralPrefix returns the part of the template before the first
// placeholder. The fetch fallback scans the destination directory for
// entries starting with this prefix followed by a dot.
func (t Template) LiteralPrefix() string {
	if idx := strings.Index(t.raw, "%("); idx >= 0 {
		return t.raw[:idx]
	}
	return t.raw
}

// OutputPattern renders the full -o argument for yt-dlp: the template inside
// dir with the extension left to the tool.
func (t Template) OutputPattern(dir string) string {
	return filepath.Join(dir, t.raw+".%(ext)s")
}

// BaseFromPath recovers the shared base name from a downloaded file,
// capturing whatever placeholder expansion the tool performed.
func BaseFromPath(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Layout is the on-disk shape of one work directory.
type Layout struct {
	WorkDir  string
	VideoDir string
	MediaDir string
	TextDir  string
}

// NewLayout computes the stage directories under workDir.
func NewLayout(workDir string) Layout {
	return Layout{
		WorkDir:  workDir,
		VideoDir: filepath.Join(workDir, "video"),
		MediaDir: filepath.Join(workDir, "mp4"),
		TextDir:  filepath.Join(workDir, "txt"),
	}
}

// Ensure creates every stage directory. All three must exist before any
// stage runs.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.VideoDir, l.MediaDir, l.TextDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunContext carries the naming basis for one pipeline run. It is created
// once the fetch stage resolves the real base name and is read-only
// afterward.
type RunContext struct {
	BaseName string
	DateTag  string
	Layout   Layout
}

// ContainerPath is the normalized MP4 artifact location.
func (r RunContext) ContainerPath() string {
	return filepath.Join(r.Layout.MediaDir, r.BaseName+".mp4")
}

// AudioPath is the transient mono 16 kHz WAV location.
func (r RunContext) AudioPath() string {
	return filepath.Join(r.Layout.MediaDir, r.BaseName+".wav")
}

// TranscriptPath is the final text artifact location.
func (r RunContext) TranscriptPath() string {
	return filepath.Join(r.Layout.TextDir, r.BaseName+".txt")
}
