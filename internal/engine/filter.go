// internal/engine/filter.go
//
// Candidate filtering. A word survives iff it would have produced the
// observed feedback for the guess; filtering with the same pair twice is a
// no-op, and the candidate set only ever shrinks.

package engine

// Filter returns the candidates that are consistent with one observed
// (guess, feedback) pair. The input slice is not modified.
func Filter(candidates []string, guess string, fb Feedback) []string {
	want := fb.Rank()
	out := make([]string, 0, len(candidates))
	for _, w := range candidates {
		if EvaluateRank(guess, w) == want {
			out = append(out, w)
		}
	}
	return out
}

// FilterHistory replays a whole guess history against a fresh answer list.
// An empty result means the history is contradictory or the true answer is
// missing from the list.
func FilterHistory(answers []string, history []HistoryEntry) []string {
	out := answers
	for _, h := range history {
		out = Filter(out, h.Guess, h.Feedback)
	}
	return out
}
