// internal/record/record.go
//
// Write-only solve log backed by SQLite.
// Responsibilities:
//   - Append finished sessions (solved or exhausted) to the results table.
//   - Aggregate the log into coarse counters for the state tool.
//
// Sessions are never reconstructed from this log; it is telemetry, not
// session persistence. The *sql.DB is opened and migrated by the caller.

package record

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle-coach/internal/game"
)

// Result is one completed game as stored in the results table.
type Result struct {
	ID         string
	SessionKey string
	Status     string // "solved" or "exhausted"
	Guesses    int
	FinalWord  string // empty unless solved
	StartedAt  time.Time
	FinishedAt time.Time
}

// Stats aggregates the whole solve log.
type Stats struct {
	Games      int
	Solved     int
	Exhausted  int
	AvgGuesses float64 // mean guesses across solved games; 0 when none
}

// Recorder appends completed games to the results table.
type Recorder struct {
	db *sql.DB
}

// New wraps an opened, migrated database handle.
func New(db *sql.DB) *Recorder { return &Recorder{db: db} }

// Record writes one finished session to the log and returns the result id.
// Sessions that are still in play are rejected.
func (r *Recorder) Record(ctx context.Context, s *game.Session) (string, error) {
	status := s.Status()
	if status != game.StatusSolved && status != game.StatusExhausted {
		return "", fmt.Errorf("record session %q: status %s is not final", s.Key, status)
	}

	res := Result{
		ID:         uuid.NewString(),
		SessionKey: s.Key,
		Status:     string(status),
		Guesses:    s.Attempts(),
		FinalWord:  s.FinalWord(),
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO results (id, session_key, status, guesses, final_word, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.SessionKey, res.Status, res.Guesses, res.FinalWord,
		res.StartedAt.UTC().Format(time.RFC3339), res.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return res.ID, nil
}

// Stats computes aggregate counters over the whole log.
func (r *Recorder) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := r.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(CASE WHEN status='solved' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status='exhausted' THEN 1 ELSE 0 END), 0),
               COALESCE(AVG(CASE WHEN status='solved' THEN guesses END), 0)
        FROM results`)
	if err := row.Scan(&st.Games, &st.Solved, &st.Exhausted, &st.AvgGuesses); err != nil {
		return Stats{}, fmt.Errorf("stats query: %w", err)
	}
	return st, nil
}

// Recent returns the newest results, capped at limit (default 20).
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, session_key, status, guesses, final_word, started_at, finished_at
        FROM results
        ORDER BY created_at DESC, id
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var (
			res                 Result
			startedAt, finished string
		)
		if err := rows.Scan(&res.ID, &res.SessionKey, &res.Status, &res.Guesses, &res.FinalWord, &startedAt, &finished); err != nil {
			return nil, err
		}
		res.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		res.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, res)
	}
	return out, rows.Err()
}
