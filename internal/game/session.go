// internal/game/session.go
//
// Session lifecycle: construction, status derivation, and reset.
//
// Status rules:
//   - No history            → fresh.
//   - Last feedback all-G   → solved (even if the corpus missed the word).
//   - No candidates left    → exhausted; the history is contradictory or
//     the true answer is outside the corpus. Reset is the only way out.
//   - Otherwise             → in_progress.

package game

import (
	"time"

	"github.com/robalobadob/wordle-coach/internal/words"
)

// New constructs a fresh session whose candidates span the full answer list.
func New(key string) *Session {
	return &Session{
		Key:        key,
		Candidates: append([]string(nil), words.Answers()...),
		StartedAt:  time.Now(),
	}
}

// Status derives the lifecycle state from history and candidates.
func (s *Session) Status() Status {
	if len(s.History) == 0 {
		return StatusFresh
	}
	if s.History[len(s.History)-1].Feedback.AllCorrect() {
		return StatusSolved
	}
	if len(s.Candidates) == 0 {
		return StatusExhausted
	}
	return StatusInProgress
}

// Finished reports whether the session reached a terminal state.
func (s *Session) Finished() bool {
	st := s.Status()
	return st == StatusSolved || st == StatusExhausted
}

// Attempts returns the number of applied guesses.
func (s *Session) Attempts() int { return len(s.History) }

// FinalWord returns the winning guess for solved sessions, "" otherwise.
func (s *Session) FinalWord() string {
	if s.Status() != StatusSolved {
		return ""
	}
	return s.History[len(s.History)-1].Guess
}

// Reset clears the history and restores the full candidate list.
func (s *Session) Reset() {
	s.History = nil
	s.Candidates = append([]string(nil), words.Answers()...)
	s.StartedAt = time.Now()
	s.FinishedAt = time.Time{}
}
