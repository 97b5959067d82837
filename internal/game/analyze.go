// internal/game/analyze.go
//
// Candidate-set analysis for the state report: per-position letter
// distributions, flagging positions that are nearly pinned down (low
// entropy) or still wide open (high entropy).

package game

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/robalobadob/wordle-coach/internal/engine"
)

const (
	pinnedEntropyBits = 1.0 // below this a position counts as nearly determined
	openEntropyBits   = 2.0 // above this a position counts as wide open
	listedCandidates  = 20  // list the full set only when it is this small
	topLetterCount    = 3
)

// Analysis summarizes the remaining candidate set.
type Analysis struct {
	Count         int
	Message       string
	FinalAnswer   string   // set when exactly one candidate remains
	Candidates    []string // populated only for small sets
	MostLikely    *PositionHint
	MostUncertain *PositionSpread
}

// PositionHint flags a position that is nearly pinned down.
type PositionHint struct {
	Position    int // 1-based
	Letter      string
	Probability float64 // share of candidates carrying Letter there
}

// PositionSpread flags a position that is still wide open.
type PositionSpread struct {
	Position        int // 1-based
	PossibleLetters int
	TopLetters      []LetterCount
}

// LetterCount pairs a letter with its candidate count at one position.
type LetterCount struct {
	Letter string
	Count  int
}

// Analyze summarizes candidates: how many remain, which positions are
// nearly determined, and which are still wide open.
func Analyze(candidates []string) Analysis {
	n := len(candidates)
	if n == 0 {
		return Analysis{Message: "No candidates remain; the feedback history is contradictory."}
	}
	if n == 1 {
		return Analysis{
			Count:       1,
			Message:     fmt.Sprintf("Only one candidate left: %s.", strings.ToUpper(candidates[0])),
			FinalAnswer: candidates[0],
		}
	}

	var counts [engine.WordLen][26]int
	for _, w := range candidates {
		for i := 0; i < engine.WordLen; i++ {
			counts[i][w[i]-'a']++
		}
	}

	a := Analysis{
		Count:   n,
		Message: fmt.Sprintf("%d candidates remain.", n),
	}
	if n <= listedCandidates {
		a.Candidates = append([]string(nil), candidates...)
	}

	bestPos, worstPos := 0, 0
	bestBits, worstBits := math.Inf(1), math.Inf(-1)
	for i := 0; i < engine.WordLen; i++ {
		bits := positionEntropy(counts[i], n)
		if bits < bestBits {
			bestBits, bestPos = bits, i
		}
		if bits > worstBits {
			worstBits, worstPos = bits, i
		}
	}

	if bestBits < pinnedEntropyBits {
		top := topLetters(counts[bestPos])
		a.MostLikely = &PositionHint{
			Position:    bestPos + 1,
			Letter:      top[0].Letter,
			Probability: math.Round(float64(top[0].Count)/float64(n)*100) / 100,
		}
	}
	if worstBits > openEntropyBits {
		letters := topLetters(counts[worstPos])
		spread := &PositionSpread{
			Position:        worstPos + 1,
			PossibleLetters: len(letters),
		}
		if len(letters) > topLetterCount {
			letters = letters[:topLetterCount]
		}
		spread.TopLetters = letters
		a.MostUncertain = spread
	}
	return a
}

// positionEntropy is the Shannon entropy of one position's letter counts.
func positionEntropy(counts [26]int, total int) float64 {
	var bits float64
	for _, k := range counts {
		if k == 0 {
			continue
		}
		p := float64(k) / float64(total)
		bits -= p * math.Log2(p)
	}
	return bits
}

// topLetters returns a position's letters ordered by count descending,
// letter ascending on ties.
func topLetters(counts [26]int) []LetterCount {
	out := make([]LetterCount, 0, 26)
	for i, k := range counts {
		if k > 0 {
			out = append(out, LetterCount{Letter: string(rune('a' + i)), Count: k})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Letter < out[j].Letter
	})
	return out
}
