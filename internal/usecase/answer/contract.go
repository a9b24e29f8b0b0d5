package answer

import (
	"context"

	"github.com/docsense/docsense/internal/domain"
)

// Retriever finds the most similar chunks for a question.
type Retriever interface {
	Search(ctx context.Context, docID, query string, topK int) (domain.RetrievalResult, error)
}

// Generator produces the answer text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
