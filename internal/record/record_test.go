package record_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-coach/internal/engine"
	"github.com/robalobadob/wordle-coach/internal/game"
	"github.com/robalobadob/wordle-coach/internal/record"
)

// openTestDB opens an in-memory database with the real schema applied.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../sql/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

// solvedSession builds a session whose last feedback row is all greens.
func solvedSession(key, word string, extraGuesses ...string) *game.Session {
	s := &game.Session{
		Key:        key,
		Candidates: []string{word},
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}
	for _, g := range extraGuesses {
		s.History = append(s.History, engine.HistoryEntry{Guess: g, Feedback: engine.Evaluate(g, word)})
	}
	s.History = append(s.History, engine.HistoryEntry{Guess: word, Feedback: engine.Evaluate(word, word)})
	return s
}

// exhaustedSession builds a session whose candidate set has been emptied.
func exhaustedSession(key string) *game.Session {
	return &game.Session{
		Key:        key,
		Candidates: nil,
		History: []engine.HistoryEntry{
			{Guess: "crate", Feedback: engine.Evaluate("crate", "pious")},
		},
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}
}

func TestRecordSolved(t *testing.T) {
	rec := record.New(openTestDB(t))
	ctx := context.Background()

	id, err := rec.Record(ctx, solvedSession("alpha", "crate", "slate"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	st, err := rec.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Games)
	assert.Equal(t, 1, st.Solved)
	assert.Equal(t, 0, st.Exhausted)
	assert.InDelta(t, 2.0, st.AvgGuesses, 1e-9)
}

func TestRecordExhausted(t *testing.T) {
	rec := record.New(openTestDB(t))
	ctx := context.Background()

	_, err := rec.Record(ctx, exhaustedSession("beta"))
	require.NoError(t, err)

	st, err := rec.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Games)
	assert.Equal(t, 0, st.Solved)
	assert.Equal(t, 1, st.Exhausted)
	assert.Zero(t, st.AvgGuesses, "exhausted games do not count toward average guesses")
}

func TestRecordRejectsUnfinished(t *testing.T) {
	rec := record.New(openTestDB(t))

	fresh := &game.Session{Key: "live", Candidates: []string{"crate", "slate"}, StartedAt: time.Now()}
	_, err := rec.Record(context.Background(), fresh)
	assert.Error(t, err)

	st, err := rec.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Games)
}

func TestStatsAveragesSolvedOnly(t *testing.T) {
	rec := record.New(openTestDB(t))
	ctx := context.Background()

	_, err := rec.Record(ctx, solvedSession("one", "crate"))
	require.NoError(t, err)
	_, err = rec.Record(ctx, solvedSession("two", "slate", "crate", "pious"))
	require.NoError(t, err)
	_, err = rec.Record(ctx, exhaustedSession("three"))
	require.NoError(t, err)

	st, err := rec.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Games)
	assert.Equal(t, 2, st.Solved)
	assert.Equal(t, 1, st.Exhausted)
	assert.InDelta(t, 2.0, st.AvgGuesses, 1e-9) // (1 + 3) / 2
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	rec := record.New(openTestDB(t))
	ctx := context.Background()

	first, err := rec.Record(ctx, solvedSession("one", "crate"))
	require.NoError(t, err)
	second, err := rec.Record(ctx, exhaustedSession("two"))
	require.NoError(t, err)

	results, err := rec.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	ids := []string{results[0].ID, results[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)

	byID := map[string]record.Result{results[0].ID: results[0], results[1].ID: results[1]}
	assert.Equal(t, "crate", byID[first].FinalWord)
	assert.Equal(t, "solved", byID[first].Status)
	assert.Equal(t, "", byID[second].FinalWord)
	assert.Equal(t, "exhausted", byID[second].Status)
}

func TestRecentHonorsLimit(t *testing.T) {
	rec := record.New(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := rec.Record(ctx, solvedSession("bulk", "crate"))
		require.NoError(t, err)
	}

	results, err := rec.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
