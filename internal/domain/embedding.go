package domain

import (
	"context"
	"fmt"
	"math"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// normEpsilon guards against division by zero for a degenerate all-zero embedding.
const normEpsilon = 1e-12

// Normalize scales v to unit L2 length in place: v / (||v||2 + eps).
// With unit vectors on both sides, inner product equals cosine similarity,
// which the index store and retriever rely on.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// NormalizedEmbedder is a domain decorator that L2-normalizes every vector
// produced by the inner embedder. It is the outermost link of the embedder
// chain so callers always receive unit vectors, whatever the provider or
// cache returned.
type NormalizedEmbedder struct {
	inner Embedder
}

// NewNormalizedEmbedder creates the normalization decorator.
func NewNormalizedEmbedder(inner Embedder) *NormalizedEmbedder {
	return &NormalizedEmbedder{inner: inner}
}

// Embed delegates to the inner embedder and normalizes the result.
func (e *NormalizedEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("normalized embed: %w", err)
	}
	Normalize(result.Embedding)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *NormalizedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedder health check: %w", err)
		}
	}
	return nil
}
