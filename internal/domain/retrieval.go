package domain

// ScoredChunk pairs a chunk text with its similarity score against a query.
type ScoredChunk struct {
	Score float32
	Text  string
}

// RetrievalResult holds the top-k chunks for one query against one document,
// ordered by descending similarity. Transient, never persisted.
type RetrievalResult struct {
	// TopSimilarity is the score of the best match, 0 when nothing matched
	// or the document has no index.
	TopSimilarity float32
	Chunks        []ScoredChunk
}

// ChunkTexts returns the chunk texts in ranked order.
func (r RetrievalResult) ChunkTexts() []string {
	texts := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		texts[i] = c.Text
	}
	return texts
}
