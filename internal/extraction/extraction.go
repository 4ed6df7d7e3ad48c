// Package extraction turns an uploaded image into final text: it validates
// the upload, decodes the image, runs recognition, and optionally applies
// spell-correction.
package extraction

import "strings"

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
	"webp": {},
}

// Allowed reports whether filename carries an extension from the image allow-list.
// The extension is the text after the last "." and is matched case-insensitively.
func Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// Command is one submission: the uploaded bytes, the client filename, and
// whether spell-correction was requested.
type Command struct {
	Data     []byte
	Filename string
	Correct  bool
}

// Result is the outcome of a successful extraction.
type Result struct {
	// RawText is the recognized text before correction.
	RawText string
	// Text is the final text: the corrected text when Corrected is set, RawText otherwise.
	Text      string
	Corrected bool
	// Format is the decoded source image format ("png", "jpeg", "bmp", ...).
	Format     string
	Confidence float64
}
