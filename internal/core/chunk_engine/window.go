package chunk_engine

import "strings"

// SlidingWindow splits text over whitespace-delimited tokens into windows of
// windowSize with the given overlap. The stride is clamped to at least 1 so
// the loop always makes forward progress, and the last window covers the
// tail even when it lands short of a full stride.
func SlidingWindow(text string, windowSize, overlap int) []string {
	if windowSize <= 0 {
		return nil
	}
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	stride := windowSize - overlap
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	for i := 0; i < len(tokens); i += stride {
		end := i + windowSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[i:end], " "))
		if i+windowSize >= len(tokens) {
			break
		}
	}
	return chunks
}
