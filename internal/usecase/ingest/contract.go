package ingest

import (
	"context"

	"github.com/docsense/docsense/internal/domain/vector"
)

// Repository defines the storage contract for document indexes.
type Repository interface {
	Save(ctx context.Context, docID string, idx *vector.Flat, chunks []string) error
	Delete(ctx context.Context, docID string) error
}
