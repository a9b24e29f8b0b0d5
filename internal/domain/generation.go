package domain

import "context"

// Generator is the text generation contract. Implementations call an external
// generative service; failures are wrapped with ErrGenerationProviderError.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
