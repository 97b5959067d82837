// internal/engine/explain.go
//
// Explanations for a prospective guess: the same partition statistics the
// ranker computes, plus the theoretical ceiling log2(N) and a short
// human-readable rationale.

package engine

import (
	"fmt"
	"math"
	"strings"
)

// Explanation quantifies how a guess would split the remaining candidates.
type Explanation struct {
	Guess               string
	RemainingCandidates int
	EntropyBits         float64
	MaxEntropyBits      float64
	PartitionCount      int
	LargestPartition    int
	ExpectedRemaining   float64
	IsCandidate         bool
	Rationale           string
}

// Explain computes the partition statistics for one guess against the
// current candidates. Returns ErrNoCandidates when candidates is empty.
func Explain(guess string, candidates []string) (Explanation, error) {
	if len(candidates) == 0 {
		return Explanation{}, fmt.Errorf("explain: %w", ErrNoCandidates)
	}
	s := scoreGuess(guess, candidates)
	e := Explanation{
		Guess:               guess,
		RemainingCandidates: len(candidates),
		EntropyBits:         s.EntropyBits,
		MaxEntropyBits:      math.Log2(float64(len(candidates))),
		PartitionCount:      s.PartitionCount,
		LargestPartition:    s.LargestPartition,
		ExpectedRemaining:   s.ExpectedRemaining,
		IsCandidate:         contains(candidates, guess),
	}
	e.Rationale = rationale(e)
	return e, nil
}

// rationale renders a one-line reading of the partition statistics.
func rationale(e Explanation) string {
	w := strings.ToUpper(e.Guess)
	if e.RemainingCandidates == 1 {
		if e.IsCandidate {
			return fmt.Sprintf("%s is the only candidate left; guessing it ends the game.", w)
		}
		return fmt.Sprintf("Only one candidate is left, so %s can only confirm it. Guess the candidate instead.", w)
	}

	quality := "a weak probe here"
	switch ratio := e.EntropyBits / e.MaxEntropyBits; {
	case ratio >= 0.95:
		quality = "a near-perfect split"
	case ratio >= 0.6:
		quality = "a strong split"
	case ratio >= 0.3:
		quality = "a moderate split"
	}
	return fmt.Sprintf(
		"%s splits %d candidates into %d outcomes for %.2f of %.2f attainable bits (%s); expect about %.1f candidates left afterwards.",
		w, e.RemainingCandidates, e.PartitionCount, e.EntropyBits, e.MaxEntropyBits, quality, e.ExpectedRemaining,
	)
}

// contains reports whether w occurs in list.
func contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}
