// Package textutil provides text processing utilities for filename
// sanitization.
//
// Remote video titles arrive with arbitrary Unicode; the pipeline derives
// filesystem names from them, so sanitization strips characters that are
// unsafe in file names and folds diacritics to their ASCII base characters
// to match yt-dlp's restricted-filename output.
package textutil
