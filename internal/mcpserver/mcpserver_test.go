package mcpserver_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-coach/internal/mcpserver"
	"github.com/robalobadob/wordle-coach/internal/record"
	"github.com/robalobadob/wordle-coach/internal/words"
)

// newTestSession creates a connected client↔server session for testing.
func newTestSession(t *testing.T, cfg *mcpserver.Config) *mcp.ClientSession {
	t.Helper()

	srv := mcpserver.New(cfg)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "0.0.1",
	}, nil)

	ctx := context.Background()

	go func() {
		// Server errors surface through the client-side assertions.
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

// testRecorder builds a Recorder over an in-memory database with the real
// schema applied.
func testRecorder(t *testing.T) *record.Recorder {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../sql/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return record.New(db)
}

func callTool(t *testing.T, cs *mcp.ClientSession, name, args string) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: json.RawMessage(args),
	})
	require.NoError(t, err)
	return res
}

func extractText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content, "result has no content blocks")
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content[0] is %T, want *mcp.TextContent", res.Content[0])
	return tc.Text
}

// decodeResult asserts a successful tool result and unmarshals its JSON.
func decodeResult(t *testing.T, res *mcp.CallToolResult, dst any) {
	t.Helper()
	require.False(t, res.IsError, "unexpected tool error: %s", extractText(t, res))
	require.NoError(t, json.Unmarshal([]byte(extractText(t, res)), dst))
}

func TestNew(t *testing.T) {
	srv := mcpserver.New(nil)
	require.NotNil(t, srv)
	require.NotNil(t, srv.MCPServer())
}

func TestListTools(t *testing.T) {
	cs := newTestSession(t, nil)

	result, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %q has nil input schema", tool.Name)
		assert.NotNil(t, tool.Annotations, "tool %q has nil annotations", tool.Name)
	}

	for _, want := range []string{
		"suggest_move", "apply_feedback", "explain", "reset", "state", "scrape_board",
	} {
		assert.True(t, names[want], "missing tool: %s", want)
	}
	assert.Len(t, result.Tools, 6)
}

func TestSuggestMoveFreshSession(t *testing.T) {
	cs := newTestSession(t, nil)

	var payload struct {
		Session    string `json:"session"`
		Status     string `json:"status"`
		Attempts   int    `json:"attempts"`
		Candidates int    `json:"candidates"`
		Best       struct {
			Word              string  `json:"word"`
			EntropyBits       float64 `json:"entropy_bits"`
			ExpectedRemaining float64 `json:"expected_remaining"`
			IsCandidate       bool    `json:"is_candidate"`
		} `json:"best"`
		Alternatives []json.RawMessage `json:"alternatives"`
		Explanation  string            `json:"explanation"`
	}
	decodeResult(t, callTool(t, cs, "suggest_move", `{"top_k": 3}`), &payload)

	answers, _ := words.Stats()
	assert.Equal(t, "default", payload.Session)
	assert.Equal(t, "fresh", payload.Status)
	assert.Zero(t, payload.Attempts)
	assert.Equal(t, answers, payload.Candidates)
	assert.Len(t, payload.Best.Word, 5)
	assert.Greater(t, payload.Best.EntropyBits, 0.0)
	assert.Greater(t, payload.Best.ExpectedRemaining, 0.0)
	assert.Len(t, payload.Alternatives, 3)
	assert.NotEmpty(t, payload.Explanation)
}

func TestApplyFeedbackNarrows(t *testing.T) {
	cs := newTestSession(t, nil)

	var apply struct {
		Status           string   `json:"status"`
		CandidatesBefore int      `json:"candidates_before"`
		CandidatesAfter  int      `json:"candidates_after"`
		Narrowed         int      `json:"narrowed"`
		Sample           []string `json:"sample"`
	}
	decodeResult(t, callTool(t, cs, "apply_feedback", `{"guess": "crane", "feedback": "KKKKK"}`), &apply)

	answers, _ := words.Stats()
	assert.Equal(t, "in_progress", apply.Status)
	assert.Equal(t, answers, apply.CandidatesBefore)
	assert.Less(t, apply.CandidatesAfter, apply.CandidatesBefore)
	assert.Equal(t, apply.CandidatesBefore-apply.CandidatesAfter, apply.Narrowed)
	assert.LessOrEqual(t, len(apply.Sample), 10)

	var state struct {
		Status   string `json:"status"`
		Attempts int    `json:"attempts"`
		History  []struct {
			Guess    string `json:"guess"`
			Feedback string `json:"feedback"`
		} `json:"history"`
		Analysis struct {
			Count   int    `json:"count"`
			Message string `json:"message"`
		} `json:"analysis"`
	}
	decodeResult(t, callTool(t, cs, "state", `{}`), &state)

	assert.Equal(t, "in_progress", state.Status)
	assert.Equal(t, 1, state.Attempts)
	require.Len(t, state.History, 1)
	assert.Equal(t, "CRANE", state.History[0].Guess)
	assert.Equal(t, "KKKKK", state.History[0].Feedback)
	assert.Equal(t, apply.CandidatesAfter, state.Analysis.Count)
	assert.NotEmpty(t, state.Analysis.Message)
}

func TestApplyFeedbackSolvesAndResets(t *testing.T) {
	cs := newTestSession(t, nil)

	var apply struct {
		Status    string `json:"status"`
		FinalWord string `json:"final_word"`
	}
	decodeResult(t, callTool(t, cs, "apply_feedback", `{"guess": "crate", "feedback": "GGGGG"}`), &apply)
	assert.Equal(t, "solved", apply.Status)
	assert.Equal(t, "CRATE", apply.FinalWord)

	res := callTool(t, cs, "apply_feedback", `{"guess": "slate", "feedback": "KKKKK"}`)
	assert.True(t, res.IsError, "finished session must reject feedback")
	assert.Contains(t, extractText(t, res), "session finished")

	var reset struct {
		Status     string `json:"status"`
		Candidates int    `json:"candidates"`
		GuessPool  int    `json:"guess_pool"`
	}
	decodeResult(t, callTool(t, cs, "reset", `{}`), &reset)

	answers, pool := words.Stats()
	assert.Equal(t, "fresh", reset.Status)
	assert.Equal(t, answers, reset.Candidates)
	assert.Equal(t, pool, reset.GuessPool)
}

func TestApplyFeedbackValidation(t *testing.T) {
	cs := newTestSession(t, nil)

	cases := []struct {
		name string
		args string
	}{
		{"missing args", `{}`},
		{"short guess", `{"guess": "cat", "feedback": "GGGGG"}`},
		{"bad feedback", `{"guess": "crane", "feedback": "GYXKK"}`},
		{"short feedback", `{"guess": "crane", "feedback": "GY"}`},
		{"numeric guess", `{"guess": "cr4ne", "feedback": "KKKKK"}`},
	}
	for _, tc := range cases {
		res := callTool(t, cs, "apply_feedback", tc.args)
		assert.True(t, res.IsError, "%s should be a tool error", tc.name)
	}

	// Validation failures must leave the session untouched.
	var state struct {
		Status   string `json:"status"`
		Attempts int    `json:"attempts"`
	}
	decodeResult(t, callTool(t, cs, "state", `{}`), &state)
	assert.Equal(t, "fresh", state.Status)
	assert.Zero(t, state.Attempts)
}

func TestExhaustedSessionFlow(t *testing.T) {
	cs := newTestSession(t, nil)

	// Row 1 removes every word containing C/R/A/N/E; row 2 demands a C.
	decodeResult(t, callTool(t, cs, "apply_feedback", `{"session": "dead-end", "guess": "crane", "feedback": "KKKKK"}`), &struct{}{})

	res := callTool(t, cs, "apply_feedback", `{"session": "dead-end", "guess": "crane", "feedback": "YKKKK"}`)
	require.True(t, res.IsError, "contradictory feedback must exhaust the session")
	text := extractText(t, res)
	assert.Contains(t, text, "no candidates remain")
	assert.Contains(t, text, "CRANE=KKKKK")
	assert.Contains(t, text, "CRANE=YKKKK")

	var state struct {
		Status     string `json:"status"`
		Candidates int    `json:"candidates"`
	}
	decodeResult(t, callTool(t, cs, "state", `{"session": "dead-end"}`), &state)
	assert.Equal(t, "exhausted", state.Status)
	assert.Zero(t, state.Candidates)

	sug := callTool(t, cs, "suggest_move", `{"session": "dead-end"}`)
	assert.True(t, sug.IsError, "exhausted session has nothing to suggest")
	assert.Contains(t, extractText(t, sug), "reset")

	var reset struct {
		Status string `json:"status"`
	}
	decodeResult(t, callTool(t, cs, "reset", `{"session": "dead-end"}`), &reset)
	assert.Equal(t, "fresh", reset.Status)
}

func TestExplain(t *testing.T) {
	cs := newTestSession(t, nil)

	var payload struct {
		Guess               string  `json:"guess"`
		RemainingCandidates int     `json:"remaining_candidates"`
		EntropyBits         float64 `json:"entropy_bits"`
		MaxEntropyBits      float64 `json:"max_entropy_bits"`
		PartitionCount      int     `json:"partition_count"`
		ExpectedRemaining   float64 `json:"expected_remaining"`
		IsCandidate         bool    `json:"is_candidate"`
		Rationale           string  `json:"rationale"`
	}
	decodeResult(t, callTool(t, cs, "explain", `{"guess": "solar"}`), &payload)

	answers, _ := words.Stats()
	assert.Equal(t, "SOLAR", payload.Guess)
	assert.Equal(t, answers, payload.RemainingCandidates)
	assert.Greater(t, payload.EntropyBits, 0.0)
	assert.GreaterOrEqual(t, payload.MaxEntropyBits, payload.EntropyBits)
	assert.Greater(t, payload.PartitionCount, 1)
	assert.True(t, payload.IsCandidate)
	assert.NotEmpty(t, payload.Rationale)

	res := callTool(t, cs, "explain", `{}`)
	assert.True(t, res.IsError, "explain without a guess is an error")
}

func TestSessionIsolation(t *testing.T) {
	cs := newTestSession(t, nil)

	decodeResult(t, callTool(t, cs, "apply_feedback", `{"session": "a", "guess": "crane", "feedback": "KKKKK"}`), &struct{}{})

	var state struct {
		Session  string `json:"session"`
		Attempts int    `json:"attempts"`
		Status   string `json:"status"`
	}
	decodeResult(t, callTool(t, cs, "state", `{"session": "b"}`), &state)
	assert.Equal(t, "b", state.Session)
	assert.Zero(t, state.Attempts)
	assert.Equal(t, "fresh", state.Status)
}

func TestScrapeBoardRejectsBadURL(t *testing.T) {
	cs := newTestSession(t, nil)

	cases := []struct {
		name string
		args string
	}{
		{"missing url", `{}`},
		{"bad scheme", `{"url": "ftp://example.com/board"}`},
		{"no host", `{"url": "https://"}`},
	}
	for _, tc := range cases {
		res := callTool(t, cs, "scrape_board", tc.args)
		assert.True(t, res.IsError, "%s should be a tool error", tc.name)
	}
}

func TestResources(t *testing.T) {
	cs := newTestSession(t, nil)
	ctx := context.Background()

	list, err := cs.ListResources(ctx, &mcp.ListResourcesParams{})
	require.NoError(t, err)

	uris := make(map[string]bool)
	for _, r := range list.Resources {
		uris[r.URI] = true
	}
	assert.True(t, uris["wordle://version"])
	assert.True(t, uris["wordle://corpus"])
	assert.False(t, uris["wordle://results"], "results resource requires a recorder")

	version, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "wordle://version"})
	require.NoError(t, err)
	require.NotEmpty(t, version.Contents)

	var info struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Tools   []string `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(version.Contents[0].Text), &info))
	assert.Equal(t, "mcp-wordle-coach", info.Name)
	assert.Equal(t, "0.1.0", info.Version)
	assert.Len(t, info.Tools, 6)

	corpus, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "wordle://corpus"})
	require.NoError(t, err)
	require.NotEmpty(t, corpus.Contents)

	var stats struct {
		Answers   int    `json:"answers"`
		GuessPool int    `json:"guess_pool"`
		Source    string `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(corpus.Contents[0].Text), &stats))
	answers, pool := words.Stats()
	assert.Equal(t, answers, stats.Answers)
	assert.Equal(t, pool, stats.GuessPool)
	assert.Equal(t, "embedded", stats.Source)
}

func TestSolveLogIntegration(t *testing.T) {
	cs := newTestSession(t, &mcpserver.Config{Recorder: testRecorder(t)})
	ctx := context.Background()

	list, err := cs.ListResources(ctx, &mcp.ListResourcesParams{})
	require.NoError(t, err)
	found := false
	for _, r := range list.Resources {
		if r.URI == "wordle://results" {
			found = true
		}
	}
	assert.True(t, found, "recorder-backed server must expose wordle://results")

	decodeResult(t, callTool(t, cs, "apply_feedback", `{"guess": "crane", "feedback": "KKKKK"}`), &struct{}{})
	decodeResult(t, callTool(t, cs, "apply_feedback", `{"guess": "slate", "feedback": "GGGGG"}`), &struct{}{})

	var state struct {
		Status string `json:"status"`
		Record *struct {
			Games      int     `json:"games"`
			Solved     int     `json:"solved"`
			Exhausted  int     `json:"exhausted"`
			AvgGuesses float64 `json:"avg_guesses"`
		} `json:"record"`
	}
	decodeResult(t, callTool(t, cs, "state", `{}`), &state)
	assert.Equal(t, "solved", state.Status)
	require.NotNil(t, state.Record, "state must carry record stats when the solve log is on")
	assert.Equal(t, 1, state.Record.Games)
	assert.Equal(t, 1, state.Record.Solved)
	assert.Zero(t, state.Record.Exhausted)
	assert.InDelta(t, 2.0, state.Record.AvgGuesses, 1e-9)

	results, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "wordle://results"})
	require.NoError(t, err)
	require.NotEmpty(t, results.Contents)

	var log struct {
		Stats struct {
			Games  int `json:"games"`
			Solved int `json:"solved"`
		} `json:"stats"`
		Recent []struct {
			Session   string `json:"session"`
			Status    string `json:"status"`
			Guesses   int    `json:"guesses"`
			FinalWord string `json:"final_word"`
		} `json:"recent"`
	}
	require.NoError(t, json.Unmarshal([]byte(results.Contents[0].Text), &log))
	assert.Equal(t, 1, log.Stats.Games)
	require.Len(t, log.Recent, 1)
	assert.Equal(t, "default", log.Recent[0].Session)
	assert.Equal(t, "solved", log.Recent[0].Status)
	assert.Equal(t, 2, log.Recent[0].Guesses)
	assert.Equal(t, "SLATE", log.Recent[0].FinalWord)
}
