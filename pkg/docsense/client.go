// Package docsense is the embedded SDK: the same chunking, indexing,
// retrieval and answer-routing pipeline as the HTTP server, wired in-process
// against a local index directory.
package docsense

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/domain"
	indexrepo "github.com/docsense/docsense/internal/repository/index"
	openaiTransport "github.com/docsense/docsense/internal/transport/openai"
	answeruc "github.com/docsense/docsense/internal/usecase/answer"
	ingestuc "github.com/docsense/docsense/internal/usecase/ingest"
	retrievaluc "github.com/docsense/docsense/internal/usecase/retrieval"
)

// Client is the docsense SDK entry point.
type Client struct {
	repo         *indexrepo.Repository
	ingestSvc    *ingestuc.Service
	retrievalSvc *retrievaluc.Service
	answerSvc    *answeruc.Service
	topK         int
}

// New creates a docsense Client over a local index directory.
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}

	if cfg.indexDir == "" {
		return nil, errors.New("docsense: index directory required (use WithIndexDir)")
	}
	if cfg.embedder == nil && cfg.apiKey == "" {
		return nil, errors.New("docsense: provider credentials required (use WithOpenAI or WithEmbedder)")
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	embedder := cfg.embedder
	if embedder == nil {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.embedModel,
			Dimensions: cfg.dimensions,
			Logger:     logger,
		})
	}
	embedder = domain.NewNormalizedEmbedder(embedder)

	generator := cfg.generator
	if generator == nil {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.apiKey,
			BaseURL:     cfg.baseURL,
			Model:       cfg.chatModel,
			Temperature: cfg.temperature,
			Logger:      logger,
		})
	}

	repo, err := indexrepo.New(cfg.indexDir, logger)
	if err != nil {
		return nil, err
	}

	retrievalSvc := retrievaluc.New(repo, embedder)

	return &Client{
		repo: repo,
		ingestSvc: ingestuc.New(repo, embedder).
			WithChunking(cfg.chunkWords, cfg.overlapWords),
		retrievalSvc: retrievalSvc,
		answerSvc: answeruc.New(retrievalSvc, generator).
			WithRouting(cfg.topK, cfg.threshold),
		topK: cfg.topK,
	}, nil
}

// Ingest chunks and embeds text and replaces the document's index.
func (c *Client) Ingest(ctx context.Context, docID, text string) error {
	return c.ingestSvc.Ingest(ctx, docID, text)
}

// Delete removes the document's index. Deleting an unknown document is a no-op.
func (c *Client) Delete(ctx context.Context, docID string) error {
	return c.ingestSvc.Delete(ctx, docID)
}

// Search returns the chunks most similar to query. topK <= 0 uses the
// client's configured depth.
func (c *Client) Search(ctx context.Context, docID, query string, topK int) (domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = c.topK
	}
	return c.retrievalSvc.Search(ctx, docID, query, topK)
}

// Ask answers a question, grounded in the document when retrieval finds
// sufficiently similar chunks and from general knowledge otherwise.
func (c *Client) Ask(ctx context.Context, docID, question string) (domain.Answer, error) {
	return c.answerSvc.Answer(ctx, docID, question)
}

// HasDocument reports whether an index exists for docID.
func (c *Client) HasDocument(ctx context.Context, docID string) (bool, error) {
	return c.repo.Exists(ctx, docID)
}
