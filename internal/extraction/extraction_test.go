package extraction_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/JaimeStill/scrivener/internal/extraction"
	"github.com/JaimeStill/scrivener/pkg/ocr"
)

type fakeEngine struct {
	mu     sync.Mutex
	text   string
	err    error
	block  bool
	inputs []ocr.Input
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Recognize(ctx context.Context, input ocr.Input) (ocr.Result, error) {
	e.mu.Lock()
	e.inputs = append(e.inputs, input)
	e.mu.Unlock()

	if e.block {
		<-ctx.Done()
		return ocr.Result{}, ctx.Err()
	}
	if e.err != nil {
		return ocr.Result{}, e.err
	}
	return ocr.Result{Text: e.text, Confidence: 0.9}, nil
}

func (e *fakeEngine) calls() []ocr.Input {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inputs
}

type fakeCorrector struct {
	replacements map[string]string
	err          error
	calls        int
}

func (c *fakeCorrector) Correct(ctx context.Context, text string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	for from, to := range c.replacements {
		text = strings.ReplaceAll(text, from, to)
	}
	return text, nil
}

func newSystem(t *testing.T, engine ocr.Engine, corrector *fakeCorrector, timeout time.Duration) extraction.System {
	t.Helper()

	sys, err := extraction.New(
		engine,
		corrector,
		timeout,
		noop.NewMeterProvider().Meter("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for x := range 16 {
		img.Set(x, 4, color.Black)
	}
	return img
}

func encode(t *testing.T, format string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, testImage())
	case "jpeg":
		err = jpeg.Encode(&buf, testImage(), nil)
	case "bmp":
		err = bmp.Encode(&buf, testImage())
	case "tiff":
		err = tiff.Encode(&buf, testImage(), nil)
	default:
		t.Fatalf("unknown format %s", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.jpg", true},
		{"PHOTO.JPG", true},
		{"scan.Jpeg", true},
		{"page.png", true},
		{"page.bmp", true},
		{"page.tiff", true},
		{"page.webp", true},
		{"archive.tar.png", true},
		{".png", true},
		{"notes.pdf", false},
		{"page.tif", false},
		{"program.exe", false},
		{"png", false},
		{"photo.", false},
		{"photo.jpg.exe", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := extraction.Allowed(tt.filename); got != tt.want {
				t.Errorf("Allowed(%q): got %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtractRawText(t *testing.T) {
	engine := &fakeEngine{text: "Helo wrld"}
	corrector := &fakeCorrector{replacements: map[string]string{"Helo": "Hello", "wrld": "world"}}
	sys := newSystem(t, engine, corrector, time.Second)

	result, err := sys.Extract(context.Background(), extraction.Command{
		Data:     encode(t, "jpeg"),
		Filename: "photo.jpg",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if result.Text != "Helo wrld" || result.RawText != "Helo wrld" {
		t.Errorf("text: got %q / %q, want raw text", result.Text, result.RawText)
	}
	if result.Corrected {
		t.Error("Corrected should be false")
	}
	if corrector.calls != 0 {
		t.Errorf("corrector calls: got %d, want 0", corrector.calls)
	}
	if result.Format != "jpeg" {
		t.Errorf("format: got %s, want jpeg", result.Format)
	}
}

func TestExtractCorrected(t *testing.T) {
	engine := &fakeEngine{text: "Helo wrld"}
	corrector := &fakeCorrector{replacements: map[string]string{"Helo": "Hello", "wrld": "world"}}
	sys := newSystem(t, engine, corrector, time.Second)

	result, err := sys.Extract(context.Background(), extraction.Command{
		Data:     encode(t, "jpeg"),
		Filename: "photo.jpg",
		Correct:  true,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if result.Text != "Hello world" {
		t.Errorf("text: got %q, want %q", result.Text, "Hello world")
	}
	if result.RawText != "Helo wrld" {
		t.Errorf("raw text: got %q, want %q", result.RawText, "Helo wrld")
	}
	if !result.Corrected {
		t.Error("Corrected should be true")
	}
}

func TestExtractFormats(t *testing.T) {
	tests := []struct {
		format     string
		filename   string
		wantEngine string
	}{
		{"png", "page.png", "png"},
		{"jpeg", "page.jpeg", "jpeg"},
		{"tiff", "page.tiff", "tiff"},
		{"bmp", "page.bmp", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			engine := &fakeEngine{text: "text"}
			sys := newSystem(t, engine, &fakeCorrector{}, time.Second)

			data := encode(t, tt.format)
			result, err := sys.Extract(context.Background(), extraction.Command{Data: data, Filename: tt.filename})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			if result.Format != tt.format {
				t.Errorf("source format: got %s, want %s", result.Format, tt.format)
			}

			calls := engine.calls()
			if len(calls) != 1 {
				t.Fatalf("engine calls: got %d, want 1", len(calls))
			}
			if calls[0].Format != tt.wantEngine {
				t.Errorf("engine format: got %s, want %s", calls[0].Format, tt.wantEngine)
			}
			if tt.wantEngine == tt.format && !bytes.Equal(calls[0].Image, data) {
				t.Error("passthrough formats should reach the engine unchanged")
			}
			if _, err := png.Decode(bytes.NewReader(calls[0].Image)); tt.wantEngine == "png" && err != nil {
				t.Errorf("re-encoded payload should be png: %v", err)
			}
		})
	}
}

func TestExtractUserErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     extraction.Command
		wantErr error
		warning string
	}{
		{
			name:    "no filename",
			cmd:     extraction.Command{Data: []byte("x")},
			wantErr: extraction.ErrNoFile,
			warning: "No file selected.",
		},
		{
			name:    "empty file",
			cmd:     extraction.Command{Filename: "photo.jpg"},
			wantErr: extraction.ErrNoFile,
			warning: "No file selected.",
		},
		{
			name:    "pdf",
			cmd:     extraction.Command{Data: []byte("%PDF-1.7\n"), Filename: "notes.pdf"},
			wantErr: extraction.ErrUnsupportedType,
			warning: "Unsupported file type.",
		},
		{
			name:    "text named as image",
			cmd:     extraction.Command{Data: []byte("just some text"), Filename: "photo.png"},
			wantErr: extraction.ErrInvalidImage,
			warning: "Could not read image.",
		},
		{
			name:    "truncated png",
			cmd:     extraction.Command{Data: []byte("\x89PNG\r\n\x1a\n\x00\x00"), Filename: "photo.png"},
			wantErr: extraction.ErrInvalidImage,
			warning: "Could not read image.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{text: "text"}
			sys := newSystem(t, engine, &fakeCorrector{}, time.Second)

			_, err := sys.Extract(context.Background(), tt.cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Extract(): got %v, want %v", err, tt.wantErr)
			}

			msg, ok := extraction.Warning(err)
			if !ok || msg != tt.warning {
				t.Errorf("Warning(): got %q %v, want %q", msg, ok, tt.warning)
			}
			if len(engine.calls()) != 0 {
				t.Error("engine should not run for rejected uploads")
			}
		})
	}
}

func TestExtractNoText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		correct bool
	}{
		{"empty", "", false},
		{"whitespace", " \n\t", false},
		{"empty after correction", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newSystem(t, &fakeEngine{text: tt.text}, &fakeCorrector{}, time.Second)

			_, err := sys.Extract(context.Background(), extraction.Command{
				Data:     encode(t, "png"),
				Filename: "blank.png",
				Correct:  tt.correct,
			})
			if !errors.Is(err, extraction.ErrNoText) {
				t.Errorf("Extract(): got %v, want ErrNoText", err)
			}
		})
	}
}

func TestExtractCollaboratorFailures(t *testing.T) {
	t.Run("recognition", func(t *testing.T) {
		sys := newSystem(t, &fakeEngine{err: fmt.Errorf("tesseract crashed")}, &fakeCorrector{}, time.Second)

		_, err := sys.Extract(context.Background(), extraction.Command{Data: encode(t, "png"), Filename: "a.png"})
		if !errors.Is(err, extraction.ErrRecognitionFailed) {
			t.Fatalf("Extract(): got %v, want ErrRecognitionFailed", err)
		}
		if _, ok := extraction.Warning(err); ok {
			t.Error("recognition failures are not user warnings")
		}
	})

	t.Run("correction", func(t *testing.T) {
		corrector := &fakeCorrector{err: fmt.Errorf("model unavailable")}
		sys := newSystem(t, &fakeEngine{text: "text"}, corrector, time.Second)

		_, err := sys.Extract(context.Background(), extraction.Command{Data: encode(t, "png"), Filename: "a.png", Correct: true})
		if !errors.Is(err, extraction.ErrCorrectionFailed) {
			t.Fatalf("Extract(): got %v, want ErrCorrectionFailed", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		sys := newSystem(t, &fakeEngine{block: true}, &fakeCorrector{}, 20*time.Millisecond)

		_, err := sys.Extract(context.Background(), extraction.Command{Data: encode(t, "png"), Filename: "a.png"})
		if !errors.Is(err, extraction.ErrRecognitionFailed) {
			t.Fatalf("Extract(): got %v, want ErrRecognitionFailed", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Extract(): got %v, want wrapped DeadlineExceeded", err)
		}
	})
}

func TestWarningUnknown(t *testing.T) {
	if _, ok := extraction.Warning(errors.New("disk full")); ok {
		t.Error("Warning() should not map unknown errors")
	}
}

func TestExtractNormalizesText(t *testing.T) {
	sys := newSystem(t, &fakeEngine{text: "page one\r\nline\x00two\fpage two\ttab"}, &fakeCorrector{}, time.Second)

	result, err := sys.Extract(context.Background(), extraction.Command{Data: encode(t, "png"), Filename: "scan.png"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "page one\nlinetwo\npage two\ttab"
	if result.Text != want {
		t.Errorf("text: got %q, want %q", result.Text, want)
	}
	if result.RawText != want {
		t.Errorf("raw text: got %q, want %q", result.RawText, want)
	}
}
