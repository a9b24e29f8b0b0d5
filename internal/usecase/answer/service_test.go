package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docsense/docsense/internal/domain"
)

// --- Mocks ---

type mockRetriever struct {
	result   domain.RetrievalResult
	err      error
	lastTopK int
}

func (m *mockRetriever) Search(_ context.Context, _, _ string, topK int) (domain.RetrievalResult, error) {
	m.lastTopK = topK
	return m.result, m.err
}

type mockGenerator struct {
	text       string
	err        error
	lastPrompt string
	calls      int
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func retrieved(top float32, texts ...string) domain.RetrievalResult {
	res := domain.RetrievalResult{TopSimilarity: top}
	for i, t := range texts {
		// Descending scores below the top one.
		res.Chunks = append(res.Chunks, domain.ScoredChunk{
			Score: top - float32(i)*0.01,
			Text:  t,
		})
	}
	return res
}

// --- Tests ---

func TestAnswer_GroundedAboveThreshold(t *testing.T) {
	ret := &mockRetriever{result: retrieved(0.8, "best chunk", "second chunk")}
	gen := &mockGenerator{text: "grounded reply"}
	svc := New(ret, gen)

	ans, err := svc.Answer(context.Background(), "doc-1", "what is this about?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Mode != domain.AnswerGrounded {
		t.Fatalf("mode = %s, want grounded", ans.Decision.Mode)
	}
	if ans.Decision.ReferenceChunk != "best chunk" {
		t.Errorf("reference chunk = %q, want top-scoring chunk", ans.Decision.ReferenceChunk)
	}
	if ans.Text != "grounded reply" {
		t.Errorf("answer text = %q", ans.Text)
	}
	if ret.lastTopK != DefaultTopK {
		t.Errorf("topK = %d, want %d", ret.lastTopK, DefaultTopK)
	}
	if !strings.Contains(gen.lastPrompt, "best chunk") ||
		!strings.Contains(gen.lastPrompt, "second chunk") {
		t.Error("grounded prompt must embed the retrieved chunks")
	}
	if !strings.Contains(gen.lastPrompt, NotFoundPhrase) {
		t.Error("grounded prompt must mandate the exact not-found phrase")
	}
}

func TestAnswer_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		top      float32
		wantMode domain.AnswerMode
	}{
		{"exactly at threshold", 0.25, domain.AnswerGrounded},
		{"just below threshold", 0.249999, domain.AnswerOpen},
		{"well above", 0.9, domain.AnswerGrounded},
		{"zero", 0, domain.AnswerOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := &mockRetriever{result: retrieved(tt.top, "some chunk")}
			gen := &mockGenerator{text: "reply"}
			svc := New(ret, gen)

			ans, err := svc.Answer(context.Background(), "doc-1", "q")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ans.Decision.Mode != tt.wantMode {
				t.Errorf("topSimilarity %v: mode = %s, want %s",
					tt.top, ans.Decision.Mode, tt.wantMode)
			}
		})
	}
}

func TestAnswer_OpenWhenNoChunks(t *testing.T) {
	// High similarity but empty chunk list must still go open.
	ret := &mockRetriever{result: domain.RetrievalResult{TopSimilarity: 0.9}}
	gen := &mockGenerator{text: "open reply"}
	svc := New(ret, gen)

	ans, err := svc.Answer(context.Background(), "doc-1", "why is the sky blue?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Mode != domain.AnswerOpen {
		t.Fatalf("mode = %s, want open", ans.Decision.Mode)
	}
	if ans.Decision.ReferenceChunk != "" {
		t.Errorf("open answers carry no reference chunk, got %q", ans.Decision.ReferenceChunk)
	}
	if !strings.Contains(gen.lastPrompt, "general knowledge") {
		t.Error("open prompt must ask for a general-knowledge answer")
	}
	if strings.Contains(gen.lastPrompt, "CONTEXT") {
		t.Error("open prompt must not embed document context")
	}
}

func TestAnswer_OpenForUnindexedDocument(t *testing.T) {
	ret := &mockRetriever{result: domain.RetrievalResult{}}
	gen := &mockGenerator{text: "open reply"}
	svc := New(ret, gen)

	ans, err := svc.Answer(context.Background(), "no-index", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Mode != domain.AnswerOpen {
		t.Fatalf("mode = %s, want open", ans.Decision.Mode)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
}

func TestAnswer_RetrieverErrorPropagates(t *testing.T) {
	ret := &mockRetriever{err: domain.ErrEmbeddingProviderError}
	gen := &mockGenerator{}
	svc := New(ret, gen)

	_, err := svc.Answer(context.Background(), "doc-1", "q")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("generator must not run when retrieval fails")
	}
}

func TestAnswer_GenerationErrorCarriesDecision(t *testing.T) {
	ret := &mockRetriever{result: retrieved(0.7, "chunk")}
	gen := &mockGenerator{err: domain.ErrGenerationProviderError}
	svc := New(ret, gen)

	ans, err := svc.Answer(context.Background(), "doc-1", "q")
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("expected ErrGenerationProviderError, got %v", err)
	}
	// The decision must survive the failure so callers can report the
	// attempted path.
	if ans.Decision.Mode != domain.AnswerGrounded {
		t.Errorf("decision mode = %s, want grounded", ans.Decision.Mode)
	}
}

func TestAnswer_CustomRouting(t *testing.T) {
	ret := &mockRetriever{result: retrieved(0.5, "chunk")}
	gen := &mockGenerator{text: "reply"}
	svc := New(ret, gen).WithRouting(8, 0.6)

	ans, err := svc.Answer(context.Background(), "doc-1", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.lastTopK != 8 {
		t.Errorf("topK = %d, want 8", ret.lastTopK)
	}
	if ans.Decision.Mode != domain.AnswerOpen {
		t.Errorf("0.5 under threshold 0.6 must route open, got %s", ans.Decision.Mode)
	}
}

func TestAnswer_ZeroThresholdGroundsOnAnyChunk(t *testing.T) {
	ret := &mockRetriever{result: retrieved(0, "chunk")}
	gen := &mockGenerator{text: "reply"}
	svc := New(ret, gen).WithRouting(4, 0)

	ans, err := svc.Answer(context.Background(), "doc-1", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Mode != domain.AnswerGrounded {
		t.Errorf("threshold 0 with a retrieved chunk must route grounded, got %s", ans.Decision.Mode)
	}
}

func TestWithRouting_NegativeThresholdKeepsDefault(t *testing.T) {
	svc := New(&mockRetriever{}, &mockGenerator{}).WithRouting(4, -1)
	if svc.threshold != DefaultGroundedThreshold {
		t.Errorf("threshold = %v, want default %v", svc.threshold, DefaultGroundedThreshold)
	}
}

func TestGroundedPrompt_JoinsChunksWithSeparator(t *testing.T) {
	p := groundedPrompt([]string{"alpha", "beta"}, "q?")
	if !strings.Contains(p, "alpha\n\n---\n\nbeta") {
		t.Error("chunks must be joined with the --- separator")
	}
	if !strings.Contains(p, "QUESTION: q?") {
		t.Error("prompt must carry the question")
	}
}
