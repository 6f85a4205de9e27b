package summarize

// TokenEstimator approximates the number of model tokens in a text.
type TokenEstimator interface {
	Estimate(text string) int
}

// CharEstimator assumes one token per four bytes, rounded up.
// It is monotonic in input length and returns 0 for empty text.
type CharEstimator struct{}

// Estimate returns ceil(len(text)/4).
func (CharEstimator) Estimate(text string) int {
	return (len(text) + 3) / 4
}
