// internal/game/types.go
//
// Core type definitions for coached sessions.
// Defines:
//   - Status: session lifecycle (fresh/in_progress/solved/exhausted).
//   - Session: state for a single coached game.
//   - Coach: the operating policy shared by every session.

package game

import (
	"errors"
	"time"

	"github.com/robalobadob/wordle-coach/internal/engine"
)

// Status reports where a session is in its lifecycle.
// Transitions: fresh → in_progress → solved | exhausted; reset returns any
// state to fresh.
type Status string

const (
	StatusFresh      Status = "fresh"
	StatusInProgress Status = "in_progress"
	StatusSolved     Status = "solved"
	StatusExhausted  Status = "exhausted"
)

// Sentinel errors for session operations.
var (
	ErrUnknownWord     = errors.New("word not in allowed list")
	ErrSessionFinished = errors.New("session finished")
)

// Session tracks one coached game: the applied guess history and the
// candidate answers that remain consistent with it. Candidates shrink
// monotonically; only Reset restores them.
type Session struct {
	Key        string
	History    []engine.HistoryEntry
	Candidates []string
	StartedAt  time.Time
	FinishedAt time.Time // zero until the session is solved or exhausted
}

// Coach holds the operating policy shared by every session.
type Coach struct {
	StrictGuesses bool // reject guesses missing from the allowed list
	TopK          int  // default suggestion count when the caller does not ask
}
