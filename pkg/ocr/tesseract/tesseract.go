// Package tesseract implements ocr.Engine with the Tesseract library via
// gosseract. Building it requires cgo and the tesseract/leptonica headers.
package tesseract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/JaimeStill/scrivener/pkg/ocr"
)

// Engine recognizes text with a fresh gosseract client per call. Clients
// are not safe for concurrent use, so none are shared between requests.
type Engine struct {
	languages     []string
	pageSegMode   gosseract.PageSegMode
	clientFactory func() *gosseract.Client
	logger        *slog.Logger
}

// New creates a Tesseract engine from the recognition config.
func New(cfg *ocr.Config, logger *slog.Logger) *Engine {
	return &Engine{
		languages:     cfg.Languages,
		pageSegMode:   gosseract.PageSegMode(cfg.PageSegMode),
		clientFactory: gosseract.NewClient,
		logger:        logger.With("system", "tesseract"),
	}
}

// Version reports the linked Tesseract library version.
func Version() string {
	return gosseract.Version()
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs OCR on a single image. Tesseract calls cannot be
// interrupted; when ctx ends first the call returns ctx.Err() and the
// client is released once the library returns.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	type outcome struct {
		res ocr.Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		c := e.clientFactory()
		defer c.Close()
		res, err := e.recognizeWithClient(c, in)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		e.logger.Warn("recognition abandoned", "error", ctx.Err())
		return ocr.Result{}, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}

func (e *Engine) recognizeWithClient(c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	if err := c.SetLanguage(e.languages...); err != nil {
		return ocr.Result{}, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(e.pageSegMode); err != nil {
		return ocr.Result{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		Text:       strings.TrimSpace(text),
		Confidence: meanConfidence(c),
	}, nil
}

func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100.0
}
