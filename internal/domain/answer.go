package domain

// AnswerMode says which prompt path produced an answer.
type AnswerMode string

const (
	// AnswerGrounded means the answer was generated from retrieved document context.
	AnswerGrounded AnswerMode = "grounded"
	// AnswerOpen means the answer was generated from general knowledge,
	// without document context.
	AnswerOpen AnswerMode = "open"
)

// AnswerDecision captures how a question was routed: the chosen mode, the
// similarity score that drove the choice, and for grounded answers the
// primary reference chunk (the single highest-scoring one).
type AnswerDecision struct {
	Mode           AnswerMode
	TopSimilarity  float32
	ReferenceChunk string
	Chunks         []string
}

// Grounded reports whether the grounded path was chosen.
func (d AnswerDecision) Grounded() bool { return d.Mode == AnswerGrounded }

// Answer is the generated text together with the routing decision behind it.
type Answer struct {
	Text     string
	Decision AnswerDecision
}
