// Package retrieval answers "which chunks of this document are closest to
// this query" via inner-product search over the stored index.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/domain"
	"github.com/docsense/docsense/internal/domain/vector"
	"github.com/docsense/docsense/internal/logger"
)

// Service performs per-document top-k retrieval.
type Service struct {
	repo  Repository
	embed domain.Embedder
}

// New creates a retrieval service.
func New(repo Repository, embed domain.Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search returns the topK highest-similarity chunks for query against the
// document's index. A missing or corrupt index yields an empty result, not
// an error: a document with nothing indexed is a normal state. Embedding
// failures do propagate.
func (s *Service) Search(ctx context.Context, docID, query string, topK int) (domain.RetrievalResult, error) {
	idx, chunks, err := s.repo.Load(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			logger.FromContext(ctx).Debug("No index for document, returning empty result",
				zap.String("document_id", docID))
			return domain.RetrievalResult{}, nil
		}
		return domain.RetrievalResult{}, fmt.Errorf("load index for %s: %w", docID, err)
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := idx.Search(embRes.Embedding, topK)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("search index for %s: %w", docID, err)
	}

	result := domain.RetrievalResult{}
	for _, h := range hits {
		// Skip unfilled slots and anything outside the stored chunk list.
		if h.Index == vector.NoMatch || h.Index < 0 || h.Index >= len(chunks) {
			continue
		}
		result.Chunks = append(result.Chunks, domain.ScoredChunk{
			Score: h.Score,
			Text:  chunks[h.Index],
		})
	}

	// The index already returns best-first; re-sort to make the ordering
	// guarantee explicit rather than inherited.
	sort.SliceStable(result.Chunks, func(a, b int) bool {
		return result.Chunks[a].Score > result.Chunks[b].Score
	})

	if len(result.Chunks) > 0 {
		result.TopSimilarity = result.Chunks[0].Score
	}
	return result, nil
}
