package retrieval

import (
	"context"

	"github.com/docsense/docsense/internal/domain/vector"
)

// Repository defines the read-side storage contract. The retriever only
// reads; the ingest service owns writes.
type Repository interface {
	Load(ctx context.Context, docID string) (*vector.Flat, []string, error)
}
