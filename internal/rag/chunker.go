package rag

import "strings"

// sentenceSnapWindow is how far past the nominal chunk end a sentence
// terminator may be to extend the cut to it.
const sentenceSnapWindow = 100

// Chunk is a bounded substring of a cleaned document, carrying the URL
// it was fetched from.
type Chunk struct {
	Text      string
	SourceURL string
}

// SplitText splits text into overlapping chunks of roughly size bytes.
// A chunk boundary is extended to just after the next period when one
// falls within sentenceSnapWindow bytes of the nominal end, so chunks
// tend to break between sentences rather than inside them. Consecutive
// chunks overlap by overlap bytes.
func SplitText(text string, size, overlap int) []string {
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end < len(text) {
			if i := strings.Index(text[end:], "."); i >= 0 && i < sentenceSnapWindow {
				end += i + 1
			}
		}
		cut := end
		if cut > len(text) {
			cut = len(text)
		}
		chunks = append(chunks, text[start:cut])
		// The next window is anchored on the nominal end, not the clamped
		// cut, so the loop terminates once the window runs off the text.
		start = end - overlap
	}
	return chunks
}
