package artifacts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/storage"
)

// System defines the public contract for artifact operations.
type System interface {
	// Create writes text under a fresh identifier in every format. Either
	// all formats are stored or none are.
	Create(ctx context.Context, text string) (*Set, error)
	// Open returns the stored artifact for id in format. Returns ErrNotFound
	// when it does not exist. The caller must close the object body.
	Open(ctx context.Context, id uuid.UUID, format Format) (*storage.Object, error)
}
