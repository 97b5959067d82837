// internal/engine/evaluate.go
//
// Feedback evaluation: the classic two-pass algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count the remaining (unmatched) answer letters by letter index.
//
// Pass 2:
//   - For each unmatched guess letter, left to right: if the count for that
//     letter is still positive, mark present and decrement; otherwise absent.
//
// The multiset keeps repeated letters honest in both guess and answer.

package engine

import (
	"fmt"
	"strings"
)

// Evaluate scores guess against answer and returns the five-tile feedback.
// Both words must be normalized (exactly WordLen lowercase ASCII letters);
// run raw input through NormalizeWord first.
func Evaluate(guess, answer string) Feedback {
	return feedbackFromRank(EvaluateRank(guess, answer))
}

// EvaluateRank scores guess against answer and returns the base-3 pattern
// rank directly. This is the allocation-free form the ranking loops use.
func EvaluateRank(guess, answer string) int {
	var counts [26]int
	var trits [WordLen]int

	// First pass: exact matches, counts for the unmatched answer letters.
	for i := 0; i < WordLen; i++ {
		if guess[i] == answer[i] {
			trits[i] = 2
		} else {
			counts[answer[i]-'a']++
		}
	}

	// Second pass: resolve present/absent, consuming counts left to right.
	for i := 0; i < WordLen; i++ {
		if trits[i] == 2 {
			continue
		}
		if j := guess[i] - 'a'; counts[j] > 0 {
			trits[i] = 1
			counts[j]--
		}
	}

	rank := 0
	for i := WordLen - 1; i >= 0; i-- {
		rank = rank*3 + trits[i]
	}
	return rank
}

// NormalizeWord trims, lowercases, and validates a raw word. The result is
// exactly WordLen ASCII letters a-z, the form every engine function expects.
func NormalizeWord(s string) (string, error) {
	w := strings.ToLower(strings.TrimSpace(s))
	if len(w) != WordLen || !isAlpha(w) {
		return "", fmt.Errorf("%w: %q (want %d letters a-z)", ErrInvalidWord, s, WordLen)
	}
	return w, nil
}

// isAlpha checks that a string consists only of lowercase a-z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
