// internal/engine/feedback.go
//
// Wire form of feedback patterns.
//
// The canonical alphabet is one letter per tile: G (correct), Y (present),
// K (absent), case-insensitive. The parser additionally coerces the emoji
// tiles that players paste from share sheets: 🟩→G, 🟨→Y, ⬛/⬜→K.
//
// A pattern also has a base-3 rank (absent=0, present=1, correct=2, with
// position 0 as the least significant trit). Partition bucketing keys on
// the rank instead of the tile form.

package engine

import (
	"fmt"
	"strings"
)

// ParseFeedback parses a five-tile feedback string.
func ParseFeedback(s string) (Feedback, error) {
	var f Feedback
	i := 0
	for _, r := range strings.TrimSpace(s) {
		if i >= WordLen {
			return Feedback{}, fmt.Errorf("%w: %q has more than %d tiles", ErrInvalidFeedback, s, WordLen)
		}
		switch r {
		case 'G', 'g', '🟩':
			f[i] = TileCorrect
		case 'Y', 'y', '🟨':
			f[i] = TilePresent
		case 'K', 'k', '⬛', '⬜':
			f[i] = TileAbsent
		default:
			return Feedback{}, fmt.Errorf("%w: unexpected %q in %q (use G/Y/K or 🟩/🟨/⬛)", ErrInvalidFeedback, string(r), s)
		}
		i++
	}
	if i != WordLen {
		return Feedback{}, fmt.Errorf("%w: want %d tiles, got %d", ErrInvalidFeedback, WordLen, i)
	}
	return f, nil
}

// String renders the canonical G/Y/K wire form.
func (f Feedback) String() string {
	var b [WordLen]byte
	for i, t := range f {
		switch t {
		case TileCorrect:
			b[i] = 'G'
		case TilePresent:
			b[i] = 'Y'
		default:
			b[i] = 'K'
		}
	}
	return string(b[:])
}

// Rank returns the base-3 encoding of f.
func (f Feedback) Rank() int {
	rank := 0
	for i := WordLen - 1; i >= 0; i-- {
		rank = rank*3 + trit(f[i])
	}
	return rank
}

// AllCorrect reports whether every tile is green.
func (f Feedback) AllCorrect() bool {
	for _, t := range f {
		if t != TileCorrect {
			return false
		}
	}
	return true
}

// trit maps a tile to its base-3 digit.
func trit(t Tile) int {
	switch t {
	case TileCorrect:
		return 2
	case TilePresent:
		return 1
	default:
		return 0
	}
}

// feedbackFromRank decodes a base-3 pattern rank back into tiles.
func feedbackFromRank(rank int) Feedback {
	var f Feedback
	for i := 0; i < WordLen; i++ {
		switch rank % 3 {
		case 2:
			f[i] = TileCorrect
		case 1:
			f[i] = TilePresent
		default:
			f[i] = TileAbsent
		}
		rank /= 3
	}
	return f
}
