package flash_test

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/flash"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

func newStore(t *testing.T, secret string) *flash.Store {
	t.Helper()

	cfg := &flash.Config{Secret: secret}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	s, err := flash.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// carry copies cookies set on rec into a follow-up request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestSetThenPop(t *testing.T) {
	s := newStore(t, testSecret)

	rec := httptest.NewRecorder()
	if err := s.Set(rec, "Unsupported file type."); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	next := httptest.NewRecorder()
	if got := s.Pop(next, carry(rec)); got != "Unsupported file type." {
		t.Errorf("Pop(): got %q, want %q", got, "Unsupported file type.")
	}

	cookies := next.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("Pop() should expire the cookie, got %+v", cookies)
	}
}

func TestPopWithoutCookie(t *testing.T) {
	s := newStore(t, testSecret)

	rec := httptest.NewRecorder()
	if got := s.Pop(rec, httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Errorf("Pop(): got %q, want empty", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("Pop() without a cookie should not set one")
	}
}

func TestPopRejectsTamperedCookie(t *testing.T) {
	s := newStore(t, testSecret)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "flash", Value: "forged"})

	if got := s.Pop(httptest.NewRecorder(), req); got != "" {
		t.Errorf("Pop(): got %q, want empty", got)
	}
}

func TestPopRejectsForeignKey(t *testing.T) {
	writer := newStore(t, testSecret)
	reader := newStore(t, base64.StdEncoding.EncodeToString([]byte(strings.Repeat("z", 32))))

	rec := httptest.NewRecorder()
	if err := writer.Set(rec, "hello"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := reader.Pop(httptest.NewRecorder(), carry(rec)); got != "" {
		t.Errorf("Pop(): got %q, want empty", got)
	}
}

func TestGeneratedKey(t *testing.T) {
	s := newStore(t, "")

	rec := httptest.NewRecorder()
	if err := s.Set(rec, "No file selected."); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Pop(httptest.NewRecorder(), carry(rec)); got != "No file selected." {
		t.Errorf("Pop(): got %q, want %q", got, "No file selected.")
	}
}

func TestRedirect(t *testing.T) {
	s := newStore(t, testSecret)

	rec := httptest.NewRecorder()
	s.Redirect(rec, httptest.NewRequest("POST", "/", nil), "/", "File expired or not found.")

	if rec.Code != http.StatusFound {
		t.Errorf("status: got %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("location: got %q, want /", loc)
	}
	if got := s.Pop(httptest.NewRecorder(), carry(rec)); got != "File expired or not found." {
		t.Errorf("Pop(): got %q", got)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"not base64", "***"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flash.Config{Secret: tt.secret}
			if err := cfg.Finalize(nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
