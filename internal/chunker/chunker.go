// Package chunker splits extracted document text into overlapping
// word-window chunks, the atomic unit of retrieval.
package chunker

import "strings"

// Defaults keep each chunk inside a typical embedding-model input limit
// while the overlap preserves context continuity across chunk boundaries.
const (
	DefaultChunkWords   = 180
	DefaultOverlapWords = 40
)

// Split cuts text into consecutive windows of chunkWords whitespace-separated
// words, advancing by max(1, chunkWords-overlapWords) words per step. The
// final window may be shorter. Empty or whitespace-only text yields nil.
func Split(text string, chunkWords, overlapWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := chunkWords - overlapWords
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += stride {
		end := i + chunkWords
		if end > len(words) {
			end = len(words)
		}
		if end <= i {
			break
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
