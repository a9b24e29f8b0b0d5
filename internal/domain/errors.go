package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound signals that a document has no persisted index.
	// Not a hard failure: retrieval degrades to an empty result and
	// answering falls back to open mode.
	ErrIndexNotFound = errors.New("document index not found")
	// ErrCorruptIndex signals mismatched index artifacts on load. It wraps
	// ErrIndexNotFound: readers deliberately treat a corrupt index the same
	// as a missing one.
	ErrCorruptIndex = fmt.Errorf("document index corrupt: %w", ErrIndexNotFound)
	// ErrInvalidDocumentID signals a document id unusable as an artifact name.
	ErrInvalidDocumentID = errors.New("invalid document id")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
