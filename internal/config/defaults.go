package config

const (
	defaultWorkDir           = "~/.local/share/ytscribe/runs"
	defaultLogDir            = "~/.local/share/ytscribe/logs"
	defaultYtDlpBinary       = "yt-dlp"
	defaultFFmpegBinary      = "ffmpeg"
	defaultPythonBinary      = "python3"
	defaultWhisperProjectDir = "~/whisper-gpu"
	defaultModel             = "medium"
	defaultLanguage          = "fr"
	defaultNtfyTimeout       = 10
	defaultMinFreeSpaceMiB   = 2048
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			YtDlp:             defaultYtDlpBinary,
			FFmpeg:            defaultFFmpegBinary,
			Python:            defaultPythonBinary,
			WhisperProjectDir: defaultWhisperProjectDir,
		},
		Transcription: Transcription{
			Model:    defaultModel,
			Language: defaultLanguage,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Preflight: Preflight{
			MinFreeSpaceMiB: defaultMinFreeSpaceMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
