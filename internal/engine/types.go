// internal/engine/types.go
//
// Core type definitions for the solving engine.
// Defines:
//   - Tile: per-letter evaluation result (correct/present/absent).
//   - Feedback: the five-tile pattern for one guess.
//   - HistoryEntry: one applied (guess, feedback) pair.

package engine

import "errors"

// WordLen is the fixed word length the engine operates on.
const WordLen = 5

// patternCount is the number of distinct feedback patterns (3^WordLen).
const patternCount = 243

// Sentinel errors. Callers wrap these with context and match them with
// errors.Is.
var (
	ErrInvalidWord     = errors.New("invalid word")
	ErrInvalidFeedback = errors.New("invalid feedback")
	ErrNoCandidates    = errors.New("no candidates remain")
)

// Tile represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": right letter in the right position.
//   - "present": letter occurs in the answer, but in another position.
//   - "absent":  no unconsumed occurrence of the letter remains.
type Tile string

const (
	TileCorrect Tile = "correct"
	TilePresent Tile = "present"
	TileAbsent  Tile = "absent"
)

// Feedback is the per-letter evaluation of a whole guess. The array form
// makes patterns directly comparable with ==.
type Feedback [WordLen]Tile

// HistoryEntry is one applied guess together with its observed feedback.
type HistoryEntry struct {
	Guess    string
	Feedback Feedback
}
