package extraction

import "errors"

// User input errors. Each has a user-facing warning.
var (
	ErrNoFile          = errors.New("no file selected")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidImage    = errors.New("invalid image")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrNoText          = errors.New("no text recognized")
)

// Collaborator failures. These wrap the underlying engine or corrector error.
var (
	ErrRecognitionFailed = errors.New("recognition failed")
	ErrCorrectionFailed  = errors.New("correction failed")
)

// Warning returns the user-facing message for a user input error.
// The boolean is false for errors that are not the user's to fix.
func Warning(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNoFile):
		return "No file selected.", true
	case errors.Is(err, ErrUnsupportedType):
		return "Unsupported file type.", true
	case errors.Is(err, ErrInvalidImage):
		return "Could not read image.", true
	case errors.Is(err, ErrFileTooLarge):
		return "File exceeds maximum upload size.", true
	case errors.Is(err, ErrNoText):
		return "No text could be recognized.", true
	}
	return "", false
}
