// Package ffmpeg wraps ffmpeg invocations for container normalization and
// audio extraction.
package ffmpeg
