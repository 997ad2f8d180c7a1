// Package ytdlp wraps yt-dlp invocations for fetching remote videos.
package ytdlp
