package answer

import (
	"fmt"
	"strings"
)

// NotFoundPhrase is the exact sentence the grounded prompt instructs the
// generator to emit when the retrieved context does not contain the answer.
// Callers match on it verbatim, so it must never change casually.
const NotFoundPhrase = "I could not find this in the document."

const contextSeparator = "\n\n---\n\n"

// groundedPrompt embeds the retrieved chunks as context and constrains the
// generator to answer from that context only.
func groundedPrompt(contextChunks []string, question string) string {
	ctx := strings.Join(contextChunks, contextSeparator)
	return fmt.Sprintf(`You are a helpful assistant answering a question based on a document.

CONTEXT FROM DOCUMENT:
%s

TASK:
- Answer the question using the context above.
- If context contains relevant information, answer normally.
- Reference the context provided.
- If context does NOT contain the answer, respond exactly: %q

QUESTION: %s
`, ctx, NotFoundPhrase, question)
}

// openPrompt asks for a bounded general-knowledge answer with no document
// reference.
func openPrompt(question string) string {
	return fmt.Sprintf(`Not found in the document.
Answer the following question using your general knowledge, clearly and concisely (4-6 sentences).

QUESTION:
%s
`, question)
}
