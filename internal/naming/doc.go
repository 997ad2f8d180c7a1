// Package naming derives the single stable name basis every pipeline
// artifact shares.
//
// A run starts from a yt-dlp output template combining a truncated remote
// title, the remote identifier, and a date tag. The final base name is only
// known once the downloader expands the placeholders, so the package also
// extracts the template's literal prefix (used by the fetch fallback scan)
// and recovers the base name from the downloaded file. All later artifact
// paths are computed from that base, never reported by the tools.
package naming
