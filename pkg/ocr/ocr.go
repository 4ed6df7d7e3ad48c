// Package ocr defines the contract between the application and a
// third-party optical character recognition engine. Engines receive encoded
// image bytes and return linearized text.
package ocr

import "context"

// Input is a single encoded image submitted for recognition.
type Input struct {
	// Image is the encoded payload (PNG, JPEG or TIFF).
	Image []byte
	// Format is the image format name as reported by image.Decode ("png", "jpeg", ...).
	Format string
}

// Result is the recognition output for one Input.
type Result struct {
	Text string
	// Confidence is the mean word confidence in [0, 1]; zero when the engine does not report it.
	Confidence float64
}

// Engine converts one image into text. Implementations must honour ctx
// cancellation at least at call boundaries.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
