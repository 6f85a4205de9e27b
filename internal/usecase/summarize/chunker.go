package summarize

import "strings"

// SplitIntoChunks partitions text into ordered, word-aligned chunks whose
// estimated size stays within maxTokens.
//
// Words are accumulated greedily. A word that alone exceeds the budget is
// emitted as its own oversized chunk rather than being split. Joining the
// result with single spaces reproduces the input's word sequence.
//
// Example:
//
//	chunks := SplitIntoChunks(transcript, 3000, CharEstimator{})
func SplitIntoChunks(text string, maxTokens int, est TokenEstimator) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0, 1)

	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if est.Estimate(candidate) > maxTokens {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = word
			continue
		}
		current = candidate
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
