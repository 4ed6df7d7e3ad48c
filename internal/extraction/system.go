package extraction

import "context"

// System defines the public contract for extraction.
type System interface {
	// Extract runs the full pipeline for one submission. User input problems
	// are reported with the package's sentinel errors; engine and corrector
	// failures wrap ErrRecognitionFailed or ErrCorrectionFailed.
	Extract(ctx context.Context, cmd Command) (*Result, error)
}
