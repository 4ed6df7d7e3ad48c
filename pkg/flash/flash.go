// Package flash carries one-shot messages across a redirect in a signed
// cookie. A message is set before redirecting and consumed by the next
// page render.
package flash

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
)

// Store reads and writes flash cookies.
type Store struct {
	codec  *securecookie.SecureCookie
	name   string
	secure bool
	logger *slog.Logger
}

// New creates a Store from a finalized Config.
func New(cfg *Config, logger *slog.Logger) (*Store, error) {
	logger = logger.With("system", "flash")

	var key []byte
	if cfg.Secret != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.Secret)
		if err != nil {
			return nil, fmt.Errorf("decode secret: %w", err)
		}
		key = decoded
	} else {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate flash key")
		}
		logger.Warn("no flash secret configured, using a per-process key")
	}

	codec := securecookie.New(key, nil)
	codec.MaxAge(300)

	return &Store{
		codec:  codec,
		name:   cfg.CookieName,
		secure: cfg.Secure,
		logger: logger,
	}, nil
}

// Set stores msg in the flash cookie, replacing any pending message.
func (s *Store) Set(w http.ResponseWriter, msg string) error {
	encoded, err := s.codec.Encode(s.name, msg)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending message, if any, and expires the cookie.
// Tampered or expired cookies are discarded and yield "".
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	var msg string
	if err := s.codec.Decode(s.name, cookie.Value, &msg); err != nil {
		s.logger.Debug("discarding invalid flash cookie", "error", err)
		return ""
	}
	return msg
}

// Redirect sets msg and redirects to url with 302 Found.
func (s *Store) Redirect(w http.ResponseWriter, r *http.Request, url, msg string) {
	if err := s.Set(w, msg); err != nil {
		s.logger.Error("flash set failed", "error", err)
	}
	http.Redirect(w, r, url, http.StatusFound)
}
