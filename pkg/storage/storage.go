// Package storage provides write-once object storage rooted in a
// process-lifetime temporary directory. The directory is created when the
// system starts and removed, with everything in it, on shutdown.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

// Object is an open stored object. The caller must close Body.
type Object struct {
	Body    io.ReadSeekCloser
	Size    int64
	ModTime time.Time
}

// System manages object storage and lifecycle coordination.
type System interface {
	// Start creates the storage root and registers a cleanup hook that removes
	// it once every shutdown hook, including the HTTP drain, has returned.
	Start(lc *lifecycle.Coordinator) error
	// Root returns the storage directory, or "" before Start.
	Root() string
	// Upload writes reader to a new object at key. Returns ErrExists if the key is taken.
	Upload(ctx context.Context, key string, reader io.Reader) error
	// Download opens the object at key. Returns ErrNotFound if it does not exist.
	Download(ctx context.Context, key string) (*Object, error)
	// Delete removes the object at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
}

type local struct {
	fs     afero.Fs
	cfg    Config
	logger *slog.Logger

	mu   sync.RWMutex
	root string
}

// New creates a storage system over fs. Nothing touches the filesystem
// until Start is called.
func New(cfg *Config, fs afero.Fs, logger *slog.Logger) System {
	return &local{
		fs:     fs,
		cfg:    *cfg,
		logger: logger.With("system", "storage"),
	}
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system")

	if err := l.fs.MkdirAll(l.cfg.BaseDir, 0o755); err != nil {
		return fmt.Errorf("create base dir %s: %w", l.cfg.BaseDir, err)
	}

	root, err := afero.TempDir(l.fs, l.cfg.BaseDir, l.cfg.Prefix)
	if err != nil {
		return fmt.Errorf("create storage root: %w", err)
	}

	l.mu.Lock()
	l.root = root
	l.mu.Unlock()

	l.logger.Info("storage root ready", "root", root)

	lc.OnCleanup(func() {
		if err := l.fs.RemoveAll(root); err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("storage root removal failed", "root", root, "error", err)
			return
		}
		l.logger.Info("storage root removed", "root", root)
	})

	return nil
}

func (l *local) Root() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.root
}

func (l *local) Upload(ctx context.Context, key string, reader io.Reader) error {
	path, err := l.path(ctx, key)
	if err != nil {
		return err
	}

	f, err := l.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("create object %s: %w", key, err)
	}

	_, err = io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := l.fs.Remove(path); rmErr != nil {
			l.logger.Warn("partial object removal failed", "key", key, "error", rmErr)
		}
		return fmt.Errorf("write object %s: %w", key, err)
	}

	return nil
}

func (l *local) Download(ctx context.Context, key string) (*Object, error) {
	path, err := l.path(ctx, key)
	if err != nil {
		return nil, err
	}

	f, err := l.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{
		Body:    f,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (l *local) Delete(ctx context.Context, key string) error {
	path, err := l.path(ctx, key)
	if err != nil {
		return err
	}

	if err := l.fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (l *local) path(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateKey(key); err != nil {
		return "", err
	}

	root := l.Root()
	if root == "" {
		return "", ErrNotStarted
	}
	return filepath.Join(root, key), nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}
