package spell_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/spell"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newModel(words ...string) *spell.Model {
	cfg := &spell.Config{Depth: 2, Threshold: 1}
	return spell.NewFromWords(cfg, words, discard())
}

func TestCorrect(t *testing.T) {
	m := newModel("hello", "world", "receipt", "total", "the")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single deletion", "helo wrld", "hello world"},
		{"transposition", "teh", "the"},
		{"known words unchanged", "hello world", "hello world"},
		{"title case kept", "Helo World", "Hello World"},
		{"upper case kept", "TOTAL RECIEPT", "TOTAL RECEIPT"},
		{"punctuation and digits kept", "the totl: 42.00\n", "the total: 42.00\n"},
		{"unknown word unchanged", "zzzzqqq", "zzzzqqq"},
		{"single letters untouched", "a b c", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Correct(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Correct() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Correct(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCorrectCancelled(t *testing.T) {
	m := newModel("hello")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Correct(ctx, "helo"); err != context.Canceled {
		t.Errorf("Correct(): got %v, want context.Canceled", err)
	}
}

func TestTokenize(t *testing.T) {
	got := spell.Tokenize("It's a Test, isn't it? 123")
	want := []string{"it's", "a", "test", "isn't", "it"}

	if !slices.Equal(got, want) {
		t.Errorf("Tokenize(): got %v, want %v", got, want)
	}
}

func defaultModel(t *testing.T) *spell.Model {
	t.Helper()

	cfg := &spell.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	m, err := spell.New(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestDefaultModelKeepsValidEnglish(t *testing.T) {
	m := defaultModel(t)

	sentences := []string{
		"The invoice total is due",
		"The quick brown fox jumps over the lazy dog.",
		"Tesseract extracts text from scanned images and photographs.",
		"Please find attached the invoice for services rendered during the month of March.",
		"She walked quickly to the station, but the train had already left.",
		"Payment is due within thirty days of receipt.",
		"It's a Test, isn't it? We don't know.",
	}

	for _, in := range sentences {
		got, err := m.Correct(context.Background(), in)
		if err != nil {
			t.Fatalf("Correct() error = %v", err)
		}
		if got != in {
			t.Errorf("Correct(%q): got %q, want unchanged", in, got)
		}
	}
}

func TestDefaultModelFixesMisspellings(t *testing.T) {
	m := defaultModel(t)

	tests := []struct {
		in   string
		want string
	}{
		{"the brwn dog", "the brown dog"},
		{"Recieved paymnet for invoce", "Received payment for invoice"},
		{"Teh quikc brwon fox", "The quick brown fox"},
		{"TOTAL RECIEPT", "TOTAL RECEIPT"},
		{"definately seperate", "definitely separate"},
	}

	for _, tt := range tests {
		got, err := m.Correct(context.Background(), tt.in)
		if err != nil {
			t.Fatalf("Correct() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("Correct(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCorrectTieBreaksLexically(t *testing.T) {
	m := newModel("cat", "car")

	for range 5 {
		got, _ := m.Correct(context.Background(), "cax")
		if got != "car" {
			t.Fatalf("Correct(cax): got %q, want car", got)
		}
	}
}

func TestCorrectPrefersFrequentWords(t *testing.T) {
	m := newModel("bat", "cat", "cat")

	got, _ := m.Correct(context.Background(), "dat")
	if got != "cat" {
		t.Errorf("Correct(dat): got %q, want cat", got)
	}
}

func TestParseCorpus(t *testing.T) {
	counts, err := spell.ParseCorpus(strings.NewReader("colour 5
color 9
The colour of the sea
"))
	if err != nil {
		t.Fatalf("ParseCorpus() error = %v", err)
	}

	want := map[string]int{"colour": 6, "color": 9, "the": 2, "of": 1, "sea": 1}
	if !maps.Equal(counts, want) {
		t.Errorf("ParseCorpus(): got %v, want %v", counts, want)
	}
}

func TestNewCorpusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte("invoice invoice payment"), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	m, err := spell.New(&spell.Config{Corpus: path, Depth: 2, Threshold: 1}, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, _ := m.Correct(context.Background(), "paymnt")
	if got != "payment" {
		t.Errorf("Correct(): got %q, want payment", got)
	}
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("123 456 !!"), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	tests := []struct {
		name   string
		corpus string
	}{
		{"missing file", filepath.Join(dir, "missing.txt")},
		{"no words", empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := spell.New(&spell.Config{Corpus: tt.corpus, Depth: 2, Threshold: 1}, discard())
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  spell.Config
	}{
		{"depth too deep", spell.Config{Depth: 4}},
		{"negative threshold", spell.Config{Threshold: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_SPELL_DEPTH", "1")
	t.Setenv("TEST_SPELL_CORPUS", "/data/words.txt")

	cfg := spell.Config{}
	if err := cfg.Finalize(&spell.Env{Depth: "TEST_SPELL_DEPTH", Corpus: "TEST_SPELL_CORPUS"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Depth != 1 {
		t.Errorf("depth: got %d, want 1", cfg.Depth)
	}
	if cfg.Corpus != "/data/words.txt" {
		t.Errorf("corpus: got %s, want /data/words.txt", cfg.Corpus)
	}
	if cfg.Threshold != 1 {
		t.Errorf("threshold: got %d, want 1", cfg.Threshold)
	}
}
