package extraction

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/JaimeStill/scrivener/pkg/ocr"
	"github.com/JaimeStill/scrivener/pkg/spell"
)

// maxPixels caps the decoded image area.
const maxPixels = 1 << 26

// Formats the recognition engine reads directly. Anything else is re-encoded as PNG.
var passthroughFormats = map[string]struct{}{
	"png":  {},
	"jpeg": {},
	"tiff": {},
}

type pipeline struct {
	engine    ocr.Engine
	corrector spell.Corrector
	timeout   time.Duration
	duration  metric.Float64Histogram
	logger    *slog.Logger
}

// New creates the extraction system. timeout bounds each recognition call.
func New(
	engine ocr.Engine,
	corrector spell.Corrector,
	timeout time.Duration,
	meter metric.Meter,
	logger *slog.Logger,
) (System, error) {
	duration, err := meter.Float64Histogram(
		"scrivener.recognition.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent in the recognition engine per submission"),
	)
	if err != nil {
		return nil, fmt.Errorf("create recognition histogram: %w", err)
	}

	return &pipeline{
		engine:    engine,
		corrector: corrector,
		timeout:   timeout,
		duration:  duration,
		logger:    logger.With("system", "extraction"),
	}, nil
}

func (p *pipeline) Extract(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Filename == "" || len(cmd.Data) == 0 {
		return nil, ErrNoFile
	}
	if !Allowed(cmd.Filename) {
		return nil, ErrUnsupportedType
	}

	input, format, err := p.decode(cmd.Data)
	if err != nil {
		p.logger.Info("rejecting upload", "filename", cmd.Filename, "error", err)
		return nil, err
	}

	start := time.Now()
	recognized, err := p.recognize(ctx, input)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("engine", p.engine.Name()),
		attribute.String("outcome", outcome),
	))

	if err != nil {
		return nil, err
	}

	raw := normalize(recognized.Text)
	result := &Result{
		RawText:    raw,
		Text:       raw,
		Format:     format,
		Confidence: recognized.Confidence,
	}

	if cmd.Correct {
		corrected, err := p.corrector.Correct(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrectionFailed, err)
		}
		result.Text = normalize(corrected)
		result.Corrected = true
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, ErrNoText
	}

	p.logger.Info(
		"extraction complete",
		"filename", cmd.Filename,
		"format", format,
		"corrected", result.Corrected,
		"chars", len(result.Text),
		"confidence", result.Confidence,
		"duration", elapsed,
	)

	return result, nil
}

// decode verifies the payload is an image the engine can read and returns
// the bytes to submit along with the source format name.
func (p *pipeline) decode(data []byte) (ocr.Input, string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return ocr.Input{}, "", fmt.Errorf("%w: detected %s", ErrInvalidImage, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ocr.Input{}, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return ocr.Input{}, "", fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ocr.Input{}, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	if _, ok := passthroughFormats[format]; ok {
		return ocr.Input{Image: data, Format: format}, format, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Input{}, "", fmt.Errorf("re-encode %s as png: %w", format, err)
	}
	return ocr.Input{Image: buf.Bytes(), Format: "png"}, format, nil
}

func (p *pipeline) recognize(ctx context.Context, input ocr.Input) (ocr.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.engine.Recognize(ctx, input)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: %s: %w", ErrRecognitionFailed, p.engine.Name(), err)
	}
	return result, nil
}

// normalize converts line breaks to "\n" and drops control characters and
// code points that cannot appear in a document body.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r' || r == '\f' || r == '\v':
			return '\n'
		case r == 0xFFFE || r == 0xFFFF:
			return -1
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text)
}
