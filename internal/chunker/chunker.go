// Package chunker splits raw document text into bounded-size slices
// suitable for embedding.
package chunker

const (
	// DefaultTokenBudget is the approximate token budget per chunk.
	DefaultTokenBudget = 500

	// CharsPerToken is the fixed characters-per-token ratio used to
	// convert a token budget into a character target. This is a
	// heuristic, not a tokenizer: 4 chars/token is a reasonable
	// average for English prose and keeps the chunker dependency-free.
	CharsPerToken = 4
)

// TargetChars converts an approximate token budget into a character
// target using the fixed CharsPerToken ratio.
func TargetChars(tokenBudget int) int {
	return tokenBudget * CharsPerToken
}

// Split cuts text into contiguous, non-overlapping slices of at most
// targetChars bytes, preserving order and content exactly: concatenating
// the returned slices reconstructs the input.
//
// Split operates on raw offsets and performs no trimming; the caller is
// responsible for trimming whitespace and discarding slices that are
// empty after trimming. Empty input yields a nil slice.
func Split(text string, targetChars int) []string {
	if text == "" || targetChars <= 0 {
		return nil
	}

	slices := make([]string, 0, (len(text)+targetChars-1)/targetChars)
	for i := 0; i < len(text); i += targetChars {
		end := i + targetChars
		if end > len(text) {
			end = len(text)
		}
		slices = append(slices, text[i:end])
	}
	return slices
}
