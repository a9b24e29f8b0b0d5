// Package answer routes a question to grounded or open-domain generation
// based on how similar the document's best chunk is to the question.
package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/domain"
	"github.com/docsense/docsense/internal/logger"
	"github.com/docsense/docsense/internal/metrics"
)

// Routing defaults. Tuning is a deployment concern; correctness only
// requires the comparison to be >= against the threshold.
const (
	DefaultTopK              = 4
	DefaultGroundedThreshold = 0.25
)

// Service decides grounded vs. open answering and delegates generation.
type Service struct {
	retriever Retriever
	generator Generator
	topK      int
	threshold float32
}

// New creates an answer service with default routing (topK 4, threshold 0.25).
func New(retriever Retriever, generator Generator) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		topK:      DefaultTopK,
		threshold: DefaultGroundedThreshold,
	}
}

// WithRouting overrides topK and the grounded threshold. A zero threshold is
// honored (ground whenever any chunk is retrieved); a negative value keeps
// the default.
func (s *Service) WithRouting(topK int, threshold float32) *Service {
	if topK > 0 {
		s.topK = topK
	}
	if threshold >= 0 {
		s.threshold = threshold
	}
	return s
}

// Answer retrieves context for the question and generates an answer.
// Grounded mode is chosen iff the top similarity reaches the threshold AND
// at least one chunk was retrieved; otherwise the question is answered from
// general knowledge. A generation failure propagates with the decision
// already populated so the caller can report which path was attempted.
func (s *Service) Answer(ctx context.Context, docID, question string) (domain.Answer, error) {
	res, err := s.retriever.Search(ctx, docID, question, s.topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve context for %s: %w", docID, err)
	}

	decision := s.decide(res)

	var prompt string
	if decision.Grounded() {
		prompt = groundedPrompt(decision.Chunks, question)
	} else {
		prompt = openPrompt(question)
	}

	logger.FromContext(ctx).Debug("Answer routing decided",
		zap.String("document_id", docID),
		zap.String("mode", string(decision.Mode)),
		zap.Float32("top_similarity", decision.TopSimilarity),
		zap.Int("chunks", len(decision.Chunks)))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		// Return the decision alongside the failure: the caller reports
		// which path was attempted.
		return domain.Answer{Decision: decision},
			fmt.Errorf("generate %s answer for %s: %w", decision.Mode, docID, err)
	}

	metrics.AnswersTotal.WithLabelValues(string(decision.Mode)).Inc()

	return domain.Answer{Text: text, Decision: decision}, nil
}

// decide picks the answering mode from the retrieval outcome.
func (s *Service) decide(res domain.RetrievalResult) domain.AnswerDecision {
	if res.TopSimilarity >= s.threshold && len(res.Chunks) > 0 {
		chunks := res.ChunkTexts()
		return domain.AnswerDecision{
			Mode:           domain.AnswerGrounded,
			TopSimilarity:  res.TopSimilarity,
			ReferenceChunk: chunks[0],
			Chunks:         chunks,
		}
	}
	return domain.AnswerDecision{
		Mode:          domain.AnswerOpen,
		TopSimilarity: res.TopSimilarity,
	}
}
