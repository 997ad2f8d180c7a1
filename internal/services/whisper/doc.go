// Package whisper drives the Whisper speech engine through its Python CLI.
package whisper
