// internal/engine/rank.go
//
// Entropy ranking. For a guess g over N candidates, bucketed by feedback
// pattern into sizes n_k:
//
//	H(g)              = -Σ (n_k/N) · log2(n_k/N)
//	expectedRemaining = Σ n_k²/N
//	partitionCount    = number of non-empty buckets
//
// Higher H means the observed feedback is expected to carry more
// information. Ties prefer words that can still be the answer (a correct
// guess ends the game, a probe never does), then lexicographic order so
// equal inputs always rank identically.

package engine

import (
	"fmt"
	"math"
	"sort"
)

// Suggestion is one scored guess.
type Suggestion struct {
	Word              string
	EntropyBits       float64
	PartitionCount    int
	LargestPartition  int
	ExpectedRemaining float64
	IsCandidate       bool
}

// Rank scores every word in pool against the remaining candidates and
// returns the whole list ordered best-first. Returns ErrNoCandidates when
// the candidate set is empty.
func Rank(pool, candidates []string) ([]Suggestion, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("rank: %w", ErrNoCandidates)
	}
	candidateSet := make(map[string]struct{}, len(candidates))
	for _, w := range candidates {
		candidateSet[w] = struct{}{}
	}

	out := make([]Suggestion, 0, len(pool))
	for _, g := range pool {
		s := scoreGuess(g, candidates)
		_, s.IsCandidate = candidateSet[g]
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EntropyBits != b.EntropyBits {
			return a.EntropyBits > b.EntropyBits
		}
		if a.IsCandidate != b.IsCandidate {
			return a.IsCandidate
		}
		return a.Word < b.Word
	})
	return out, nil
}

// scoreGuess buckets candidates by feedback pattern and derives the
// partition statistics for a single guess.
func scoreGuess(guess string, candidates []string) Suggestion {
	var buckets [patternCount]int
	for _, w := range candidates {
		buckets[EvaluateRank(guess, w)]++
	}

	n := float64(len(candidates))
	s := Suggestion{Word: guess}
	for _, k := range buckets {
		if k == 0 {
			continue
		}
		s.PartitionCount++
		if k > s.LargestPartition {
			s.LargestPartition = k
		}
		p := float64(k) / n
		s.EntropyBits -= p * math.Log2(p)
		s.ExpectedRemaining += float64(k) * float64(k) / n
	}
	return s
}
