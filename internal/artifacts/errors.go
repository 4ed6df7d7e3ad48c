package artifacts

import "errors"

var (
	ErrInvalidFormat = errors.New("invalid artifact format")
	ErrNotFound      = errors.New("artifact not found")
	ErrEmptyText     = errors.New("artifact text is empty")
)

// Warning returns the user-facing message for a download request error.
func Warning(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return "Invalid file type.", true
	case errors.Is(err, ErrNotFound):
		return "File expired or not found.", true
	}
	return "", false
}
