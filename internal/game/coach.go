// internal/game/coach.go
//
// Coach operations on a session: apply observed feedback, rank the next
// guess, explain a prospective guess.
//
// Apply validation order (the session is unchanged on any error):
//  1. Terminal state: solved/exhausted sessions reject further feedback.
//  2. Word format (5 letters a-z).
//  3. Vocabulary, only when StrictGuesses is on.
//  4. Feedback format (5 tiles of G/Y/K).
//
// The opening ranking (fresh session, full corpus) is the most expensive
// sweep in the process, so it is computed at most once and shared
// read-only by every fresh session.

package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/wordle-coach/internal/engine"
	"github.com/robalobadob/wordle-coach/internal/words"
)

const (
	defaultTopK = 5
	maxTopK     = 20
)

// ApplyResult reports how one feedback row narrowed a session.
type ApplyResult struct {
	Guess            string
	Feedback         engine.Feedback
	CandidatesBefore int
	CandidatesAfter  int
	Status           Status
	Sample           []string // up to 10 of the remaining candidates
}

// Apply validates one observed (guess, feedback) row and narrows the
// session to the candidates consistent with it.
func (c *Coach) Apply(s *Session, rawGuess, rawFeedback string) (ApplyResult, error) {
	if s.Finished() {
		return ApplyResult{}, fmt.Errorf("session %q is %s: %w", s.Key, s.Status(), ErrSessionFinished)
	}
	guess, err := engine.NormalizeWord(rawGuess)
	if err != nil {
		return ApplyResult{}, err
	}
	if c.StrictGuesses && !words.IsAllowed(guess) {
		return ApplyResult{}, fmt.Errorf("%w: %q", ErrUnknownWord, guess)
	}
	fb, err := engine.ParseFeedback(rawFeedback)
	if err != nil {
		return ApplyResult{}, err
	}

	before := len(s.Candidates)
	s.Candidates = engine.Filter(s.Candidates, guess, fb)
	s.History = append(s.History, engine.HistoryEntry{Guess: guess, Feedback: fb})
	if s.Finished() {
		s.FinishedAt = time.Now()
	}

	return ApplyResult{
		Guess:            guess,
		Feedback:         fb,
		CandidatesBefore: before,
		CandidatesAfter:  len(s.Candidates),
		Status:           s.Status(),
		Sample:           sample(s.Candidates, 10),
	}, nil
}

// SuggestResult carries the ranked head of the suggestion list.
type SuggestResult struct {
	Status     Status
	Attempts   int
	Candidates int
	Top        []engine.Suggestion
}

// Suggest ranks the full guess pool against the session's candidates and
// returns the best topK suggestions. topK <= 0 falls back to the coach
// default; requests are capped at 20.
func (c *Coach) Suggest(s *Session, topK int) (SuggestResult, error) {
	if topK <= 0 {
		topK = c.TopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	var (
		ranked []engine.Suggestion
		err    error
	)
	if len(s.History) == 0 {
		// Fresh sessions always rank the full corpus; share the sweep.
		ranked, err = openingSuggestions()
	} else {
		ranked, err = engine.Rank(words.GuessPool(), s.Candidates)
	}
	if err != nil {
		return SuggestResult{}, err
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	return SuggestResult{
		Status:     s.Status(),
		Attempts:   s.Attempts(),
		Candidates: len(s.Candidates),
		Top:        ranked,
	}, nil
}

// Explain computes partition statistics for one prospective guess against
// the session's remaining candidates.
func (c *Coach) Explain(s *Session, rawGuess string) (engine.Explanation, error) {
	guess, err := engine.NormalizeWord(rawGuess)
	if err != nil {
		return engine.Explanation{}, err
	}
	return engine.Explain(guess, s.Candidates)
}

// sample returns a copy of up to n leading candidates.
func sample(list []string, n int) []string {
	if len(list) < n {
		n = len(list)
	}
	return append([]string(nil), list[:n]...)
}

var (
	openingOnce sync.Once
	openingTop  []engine.Suggestion
	openingErr  error
)

// openingSuggestions ranks the full guess pool against the full answer
// list, once per process.
func openingSuggestions() ([]engine.Suggestion, error) {
	openingOnce.Do(func() {
		openingTop, openingErr = engine.Rank(words.GuessPool(), words.Answers())
	})
	return openingTop, openingErr
}
