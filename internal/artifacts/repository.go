package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scrivener/pkg/storage"
)

type repo struct {
	storage storage.System
	logger  *slog.Logger
}

// New creates an artifact repository over store.
func New(store storage.System, logger *slog.Logger) System {
	return &repo{
		storage: store,
		logger:  logger.With("system", "artifacts"),
	}
}

func (r *repo) Create(ctx context.Context, text string) (*Set, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	set := &Set{
		ID:        uuid.New(),
		Sizes:     make(map[Format]int64, len(Formats)),
		CreatedAt: time.Now(),
	}
	sizes := make([]int64, len(Formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range Formats {
		g.Go(func() error {
			data, err := encode(format, text)
			if err != nil {
				return err
			}
			if err := r.storage.Upload(gctx, format.Key(set.ID), bytes.NewReader(data)); err != nil {
				return fmt.Errorf("write artifact %s: %w", format.Key(set.ID), err)
			}
			sizes[i] = int64(len(data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.discard(set.ID)
		return nil, err
	}

	for i, format := range Formats {
		set.Sizes[format] = sizes[i]
	}

	r.logger.Info("artifact set written", "id", set.ID, "txt_bytes", set.Sizes[FormatText], "docx_bytes", set.Sizes[FormatDocx])
	return set, nil
}

func (r *repo) Open(ctx context.Context, id uuid.UUID, format Format) (*storage.Object, error) {
	obj, err := r.storage.Download(ctx, format.Key(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open artifact %s: %w", format.Key(id), err)
	}
	return obj, nil
}

// discard removes whatever part of set id was written. It runs on a fresh
// context so a cancelled request still cleans up.
func (r *repo) discard(id uuid.UUID) {
	ctx := context.Background()
	for _, format := range Formats {
		err := r.storage.Delete(ctx, format.Key(id))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("partial artifact removal failed", "key", format.Key(id), "error", err)
		}
	}
}

func encode(format Format, text string) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(text), nil
	case FormatDocx:
		return renderDocx(text)
	}
	return nil, ErrInvalidFormat
}
