// Package ingest turns extracted document text into a persisted similarity
// index: chunk, embed every chunk, build the flat index, save the pair.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docsense/docsense/internal/chunker"
	"github.com/docsense/docsense/internal/domain"
	"github.com/docsense/docsense/internal/domain/vector"
	"github.com/docsense/docsense/internal/logger"
	"github.com/docsense/docsense/internal/metrics"
)

// Service builds and deletes per-document indexes.
type Service struct {
	repo         Repository
	embed        domain.Embedder
	chunkWords   int
	overlapWords int
	concurrency  int
}

// New creates an ingest service with default chunking (180/40) and embed
// concurrency 4.
func New(repo Repository, embed domain.Embedder) *Service {
	return &Service{
		repo:         repo,
		embed:        embed,
		chunkWords:   chunker.DefaultChunkWords,
		overlapWords: chunker.DefaultOverlapWords,
		concurrency:  4,
	}
}

// WithChunking overrides the chunk window and overlap sizes.
func (s *Service) WithChunking(chunkWords, overlapWords int) *Service {
	if chunkWords > 0 {
		s.chunkWords = chunkWords
	}
	if overlapWords >= 0 {
		s.overlapWords = overlapWords
	}
	return s
}

// WithConcurrency bounds parallel chunk embedding during a build.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Ingest chunks fullText and replaces the document's index wholesale.
// A document with no extractable text gets no index; that is a normal state,
// not an error. A failure while embedding leaves no artifacts behind: the
// index is staged fully in memory and only persisted once every chunk
// embedded successfully.
func (s *Service) Ingest(ctx context.Context, docID, fullText string) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	chunks := chunker.Split(fullText, s.chunkWords, s.overlapWords)
	if len(chunks) == 0 {
		metrics.IndexBuildsTotal.WithLabelValues("empty").Inc()
		log.Info("No extractable text, skipping index build",
			zap.String("document_id", docID))
		return nil
	}

	vecs, err := s.embedAll(ctx, chunks)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("embed chunks for %s: %w", docID, err)
	}

	idx, err := vector.NewFlat(len(vecs[0]))
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build index for %s: %w", docID, err)
	}
	if err := idx.Add(vecs...); err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build index for %s: %w", docID, err)
	}

	if err := s.repo.Save(ctx, docID, idx, chunks); err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("persist index for %s: %w", docID, err)
	}

	metrics.IndexBuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexChunks.Observe(float64(len(chunks)))

	log.Info("Document index built",
		zap.String("document_id", docID),
		zap.Int("chunks", len(chunks)),
		zap.Int("dimensions", idx.Dim()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Delete removes the document's index artifacts. Idempotent.
func (s *Service) Delete(ctx context.Context, docID string) error {
	if err := s.repo.Delete(ctx, docID); err != nil {
		return fmt.Errorf("delete index for %s: %w", docID, err)
	}
	logger.FromContext(ctx).Info("Document index deleted",
		zap.String("document_id", docID))
	return nil
}

// embedAll embeds every chunk, preserving chunk order in the result. Up to
// s.concurrency provider calls run at once; the first failure cancels the
// rest.
func (s *Service) embedAll(ctx context.Context, chunks []string) ([][]float32, error) {
	vecs := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, text := range chunks {
		i, text := i, text
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			vecs[i] = res.Embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}
