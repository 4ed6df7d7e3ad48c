// Package artifacts persists the final text of a submission as a pair of
// downloadable files, <id>.txt and <id>.docx, in the storage root.
package artifacts

import (
	"time"

	"github.com/google/uuid"
)

// Format is a downloadable artifact encoding, named by its file extension.
type Format string

const (
	FormatText Format = "txt"
	FormatDocx Format = "docx"
)

// Formats lists every format written for an artifact set.
var Formats = []Format{FormatText, FormatDocx}

// ParseFormat returns the Format for ext. Extensions match exactly.
func ParseFormat(ext string) (Format, error) {
	switch Format(ext) {
	case FormatText:
		return FormatText, nil
	case FormatDocx:
		return FormatDocx, nil
	}
	return "", ErrInvalidFormat
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatDocx {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/plain; charset=utf-8"
}

// Filename returns the attachment name offered to the browser.
func (f Format) Filename() string {
	return "ocr_result." + string(f)
}

// Key returns the storage key for the format within set id.
func (f Format) Key(id uuid.UUID) string {
	return id.String() + "." + string(f)
}

// Set is one written artifact pair.
type Set struct {
	ID        uuid.UUID
	Sizes     map[Format]int64
	CreatedAt time.Time
}
