package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/robalobadob/wordle-coach/internal/engine"
	"github.com/robalobadob/wordle-coach/internal/game"
	"github.com/robalobadob/wordle-coach/internal/words"
)

// registerTools adds all coach tools to the MCP server.
func (s *Server) registerTools() {
	s.addSuggestMoveTool()
	s.addApplyFeedbackTool()
	s.addExplainTool()
	s.addResetTool()
	s.addStateTool()
	s.addScrapeBoardTool()
}

type toolHandler = func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error)

// instrument wraps a tool handler with call counters and duration metrics.
// Results carrying IsError count as failures even though the protocol call
// itself succeeded.
func (s *Server) instrument(tool string, h toolHandler) toolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := h(ctx, req)
		failed := err != nil || (res != nil && res.IsError)
		s.metrics.observe(tool, start, failed)
		return res, err
	}
}

// appliedRow is one (guess, feedback) pair as rendered in payloads.
type appliedRow struct {
	Guess    string `json:"guess"`
	Feedback string `json:"feedback"`
}

// historyRows renders a session's history for payloads.
func historyRows(sess *game.Session) []appliedRow {
	rows := make([]appliedRow, 0, len(sess.History))
	for _, h := range sess.History {
		rows = append(rows, appliedRow{
			Guess:    strings.ToUpper(h.Guess),
			Feedback: h.Feedback.String(),
		})
	}
	return rows
}

// sessionProperty is the shared schema fragment for the session argument.
func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session key. Omit to use the shared \"default\" session.",
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// suggest_move — Rank the next guess by expected information
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addSuggestMoveTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "suggest_move",
			Title: "Suggest Next Guess",
			Description: `Rank the guess pool by expected information against the session's remaining candidates and return the best next guesses.

USE THIS TOOL WHEN:
• The user wants to know what to play next
• A fresh game starts and the user needs an opener

The best suggestion maximizes Shannon entropy over feedback patterns; ties prefer words that can still be the answer. Fresh sessions reuse a cached opening ranking, so the first call is instant after warm-up.

EXAMPLE INPUTS:
• Default session, default count: {}
• Specific session, three options: {"session": "puzzle-812", "top_k": 3}

Returns: best guess with entropy_bits / expected_remaining / is_candidate, the top-k alternatives, and a one-line explanation. Errors when no candidates remain (reset the session or re-check past feedback).`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": sessionProperty(),
					"top_k": map[string]any{
						"type":        "integer",
						"description": "How many ranked suggestions to return (1-20, default 5).",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Suggest Next Guess",
			},
		},
		s.instrument("suggest_move", s.handleSuggestMove),
	)
}

type suggestArgs struct {
	Session string `json:"session"`
	TopK    int    `json:"top_k"`
}

type suggestionPayload struct {
	Word              string  `json:"word"`
	EntropyBits       float64 `json:"entropy_bits"`
	ExpectedRemaining float64 `json:"expected_remaining"`
	PartitionCount    int     `json:"partition_count"`
	IsCandidate       bool    `json:"is_candidate"`
}

type suggestPayload struct {
	Session      string              `json:"session"`
	Status       string              `json:"status"`
	Attempts     int                 `json:"attempts"`
	Candidates   int                 `json:"candidates"`
	Best         suggestionPayload   `json:"best"`
	Alternatives []suggestionPayload `json:"alternatives"`
	Explanation  string              `json:"explanation"`
}

func (s *Server) handleSuggestMove(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args suggestArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'session' (string) and 'top_k' (integer).", err)), nil
	}

	sess, err := s.session(ctx, args.Session)
	if err != nil {
		return errorResult(fmt.Sprintf("session lookup failed: %v", err)), nil
	}

	res, err := s.coach.Suggest(sess, args.TopK)
	if err != nil {
		if errors.Is(err, engine.ErrNoCandidates) {
			return errorResult(fmt.Sprintf("no candidates remain for session %q; a feedback row must be wrong or the answer is outside the corpus. Call reset to start over.", sess.Key)), nil
		}
		return errorResult(fmt.Sprintf("suggestion failed: %v", err)), nil
	}
	if len(res.Top) == 0 {
		return errorResult("the guess pool is empty; check the word list configuration"), nil
	}

	alternatives := make([]suggestionPayload, 0, len(res.Top))
	for _, sug := range res.Top {
		alternatives = append(alternatives, suggestionFromEngine(sug))
	}

	return jsonResult(suggestPayload{
		Session:      sess.Key,
		Status:       string(res.Status),
		Attempts:     res.Attempts,
		Candidates:   res.Candidates,
		Best:         alternatives[0],
		Alternatives: alternatives,
		Explanation:  suggestExplanation(res.Top[0], res.Candidates, res.Attempts),
	})
}

func suggestionFromEngine(sug engine.Suggestion) suggestionPayload {
	return suggestionPayload{
		Word:              strings.ToUpper(sug.Word),
		EntropyBits:       round(sug.EntropyBits, 4),
		ExpectedRemaining: round(sug.ExpectedRemaining, 2),
		PartitionCount:    sug.PartitionCount,
		IsCandidate:       sug.IsCandidate,
	}
}

// suggestExplanation renders the one-line reading of the best suggestion.
func suggestExplanation(best engine.Suggestion, candidates, attempts int) string {
	base := fmt.Sprintf("%s maximizes expected information (~%.2f bits), cutting the field to about %.1f candidates on average.",
		strings.ToUpper(best.Word), best.EntropyBits, best.ExpectedRemaining)
	switch {
	case candidates <= 2:
		return base + " Very close now: guess one of the remaining candidates."
	case candidates <= 10:
		return base + fmt.Sprintf(" With %d candidates left, favor words that tell them apart.", candidates)
	case attempts == 0:
		return base + " A strong opener that probes common letters in useful positions."
	}
	return base
}

// ═══════════════════════════════════════════════════════════════════════════
// apply_feedback — Narrow the candidates with an observed result
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addApplyFeedbackTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "apply_feedback",
			Title: "Apply Guess Feedback",
			Description: `Record one played guess and the colors Wordle returned, narrowing the session's candidate set to the words consistent with it.

USE THIS TOOL WHEN:
• The user played a guess and reports the resulting colors
• Importing a game row by row (scrape_board does this automatically from a URL)

Feedback is five symbols, one per letter: G/🟩 correct spot, Y/🟨 wrong spot, K/⬛/⬜ absent. Duplicate letters follow real Wordle rules.

EXAMPLE INPUTS:
• {"guess": "crane", "feedback": "GYKKY"}
• {"session": "puzzle-812", "guess": "slate", "feedback": "🟩🟨⬛⬛⬛"}

Returns: status, candidates before/after, how many were eliminated, and a sample of the survivors. All-green feedback marks the session solved; an empty result marks it exhausted and returns an error with the full history.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": sessionProperty(),
					"guess": map[string]any{
						"type":        "string",
						"description": "The five-letter word that was played.",
					},
					"feedback": map[string]any{
						"type":        "string",
						"description": "Five feedback symbols: G/Y/K or 🟩/🟨/⬛.",
					},
				},
				"required": []string{"guess", "feedback"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: false,
				OpenWorldHint:  boolPtr(false),
				Title:          "Apply Guess Feedback",
			},
		},
		s.instrument("apply_feedback", s.handleApplyFeedback),
	)
}

type applyArgs struct {
	Session  string `json:"session"`
	Guess    string `json:"guess"`
	Feedback string `json:"feedback"`
}

type applyPayload struct {
	Session          string     `json:"session"`
	Status           string     `json:"status"`
	Applied          appliedRow `json:"applied"`
	CandidatesBefore int        `json:"candidates_before"`
	CandidatesAfter  int        `json:"candidates_after"`
	Narrowed         int        `json:"narrowed"`
	Sample           []string   `json:"sample,omitempty"`
	FinalWord        string     `json:"final_word,omitempty"`
}

func (s *Server) handleApplyFeedback(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args applyArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'guess' (string), 'feedback' (string), optional 'session'.", err)), nil
	}
	if strings.TrimSpace(args.Guess) == "" || strings.TrimSpace(args.Feedback) == "" {
		return errorResult(`guess and feedback are required, e.g. {"guess": "crane", "feedback": "GYKKY"}`), nil
	}

	sess, err := s.session(ctx, args.Session)
	if err != nil {
		return errorResult(fmt.Sprintf("session lookup failed: %v", err)), nil
	}

	res, err := s.coach.Apply(sess, args.Guess, args.Feedback)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return errorResult(fmt.Sprintf("saving session: %v", err)), nil
	}
	s.recordIfFinished(ctx, sess)

	if res.Status == game.StatusExhausted {
		return errorResult(exhaustedMessage(sess, res)), nil
	}

	payload := applyPayload{
		Session:          sess.Key,
		Status:           string(res.Status),
		Applied:          appliedRow{Guess: strings.ToUpper(res.Guess), Feedback: res.Feedback.String()},
		CandidatesBefore: res.CandidatesBefore,
		CandidatesAfter:  res.CandidatesAfter,
		Narrowed:         res.CandidatesBefore - res.CandidatesAfter,
		Sample:           upperWords(res.Sample),
	}
	if res.Status == game.StatusSolved {
		payload.FinalWord = strings.ToUpper(sess.FinalWord())
	}
	return jsonResult(payload)
}

// exhaustedMessage explains an emptied candidate set, quoting the history
// so the contradicting row can be spotted.
func exhaustedMessage(sess *game.Session, res game.ApplyResult) string {
	rows := make([]string, 0, len(sess.History))
	for _, h := range sess.History {
		rows = append(rows, fmt.Sprintf("%s=%s", strings.ToUpper(h.Guess), h.Feedback.String()))
	}
	return fmt.Sprintf(
		"no candidates remain after %s=%s; a feedback row must be wrong or the answer is outside the corpus. History: %s. Call reset to start over.",
		strings.ToUpper(res.Guess), res.Feedback.String(), strings.Join(rows, ", "),
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// explain — Partition statistics for a prospective guess
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addExplainTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "explain",
			Title: "Explain a Guess",
			Description: `Quantify how one prospective guess would split the session's remaining candidates, without playing it.

USE THIS TOOL WHEN:
• The user asks "why is X a good/bad guess?" or "how does X compare?"
• Choosing between a safe candidate and a high-information probe

EXAMPLE INPUTS:
• {"guess": "solar"}
• {"session": "puzzle-812", "guess": "crane"}

Returns: entropy_bits achieved vs max_entropy_bits (log2 of the candidate count), partition_count, largest_partition, expected_remaining, whether the word can still be the answer, and a one-line rationale.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": sessionProperty(),
					"guess": map[string]any{
						"type":        "string",
						"description": "The five-letter word to evaluate.",
					},
				},
				"required": []string{"guess"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Explain a Guess",
			},
		},
		s.instrument("explain", s.handleExplain),
	)
}

type explainArgs struct {
	Session string `json:"session"`
	Guess   string `json:"guess"`
}

type explainPayload struct {
	Session             string  `json:"session"`
	Guess               string  `json:"guess"`
	RemainingCandidates int     `json:"remaining_candidates"`
	EntropyBits         float64 `json:"entropy_bits"`
	MaxEntropyBits      float64 `json:"max_entropy_bits"`
	PartitionCount      int     `json:"partition_count"`
	LargestPartition    int     `json:"largest_partition"`
	ExpectedRemaining   float64 `json:"expected_remaining"`
	IsCandidate         bool    `json:"is_candidate"`
	Rationale           string  `json:"rationale"`
}

func (s *Server) handleExplain(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args explainArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'guess' (string), optional 'session'.", err)), nil
	}
	if strings.TrimSpace(args.Guess) == "" {
		return errorResult(`guess is required, e.g. {"guess": "solar"}`), nil
	}

	sess, err := s.session(ctx, args.Session)
	if err != nil {
		return errorResult(fmt.Sprintf("session lookup failed: %v", err)), nil
	}

	exp, err := s.coach.Explain(sess, args.Guess)
	if err != nil {
		if errors.Is(err, engine.ErrNoCandidates) {
			return errorResult(fmt.Sprintf("no candidates remain for session %q; call reset before asking for explanations.", sess.Key)), nil
		}
		return errorResult(err.Error()), nil
	}

	return jsonResult(explainPayload{
		Session:             sess.Key,
		Guess:               strings.ToUpper(exp.Guess),
		RemainingCandidates: exp.RemainingCandidates,
		EntropyBits:         round(exp.EntropyBits, 4),
		MaxEntropyBits:      round(exp.MaxEntropyBits, 4),
		PartitionCount:      exp.PartitionCount,
		LargestPartition:    exp.LargestPartition,
		ExpectedRemaining:   round(exp.ExpectedRemaining, 2),
		IsCandidate:         exp.IsCandidate,
		Rationale:           exp.Rationale,
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// reset — Start the session over
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addResetTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "reset",
			Title: "Reset Session",
			Description: `Clear a session's history and restore the full candidate set. The only way out of a solved or exhausted session.

EXAMPLE INPUTS:
• {} — reset the default session
• {"session": "puzzle-812"}

Returns: the fresh candidate and guess-pool counts.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": sessionProperty(),
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Reset Session",
			},
		},
		s.instrument("reset", s.handleReset),
	)
}

type resetArgs struct {
	Session string `json:"session"`
}

type resetPayload struct {
	Session    string `json:"session"`
	Status     string `json:"status"`
	Candidates int    `json:"candidates"`
	GuessPool  int    `json:"guess_pool"`
}

func (s *Server) handleReset(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args resetArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'session' (string).", err)), nil
	}

	sess, err := s.session(ctx, args.Session)
	if err != nil {
		return errorResult(fmt.Sprintf("session lookup failed: %v", err)), nil
	}

	sess.Reset()
	if err := s.store.Save(ctx, sess); err != nil {
		return errorResult(fmt.Sprintf("saving session: %v", err)), nil
	}

	_, poolCount := words.Stats()
	return jsonResult(resetPayload{
		Session:    sess.Key,
		Status:     string(sess.Status()),
		Candidates: len(sess.Candidates),
		GuessPool:  poolCount,
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// state — Session status, history, and candidate analysis
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addStateTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "state",
			Title: "Session State",
			Description: `Report a session's full state: status, corpus sizes, applied history, and an analysis of the remaining candidates.

USE THIS TOOL WHEN:
• The user asks "where are we?" or "what do we know so far?"
• Deciding whether to trust the next suggestion or re-check a feedback row

The analysis flags positions that are nearly pinned down and positions that are still wide open, and lists the full candidate set once it is 20 words or fewer. When the solve log is enabled the response also carries aggregate game stats.

EXAMPLE INPUTS:
• {} — the default session
• {"session": "puzzle-812"}`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": sessionProperty(),
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Session State",
			},
		},
		s.instrument("state", s.handleState),
	)
}

type stateArgs struct {
	Session string `json:"session"`
}

type statePayload struct {
	Session    string          `json:"session"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	Candidates int             `json:"candidates"`
	GuessPool  int             `json:"guess_pool"`
	History    []appliedRow    `json:"history"`
	Analysis   analysisPayload `json:"analysis"`
	Record     *recordPayload  `json:"record,omitempty"`
}

type analysisPayload struct {
	Count         int             `json:"count"`
	Message       string          `json:"message"`
	FinalAnswer   string          `json:"final_answer,omitempty"`
	Candidates    []string        `json:"candidates_list,omitempty"`
	MostLikely    *positionHint   `json:"most_likely_position,omitempty"`
	MostUncertain *positionSpread `json:"most_uncertain_position,omitempty"`
}

type positionHint struct {
	Position    int     `json:"position"`
	Letter      string  `json:"letter"`
	Probability float64 `json:"probability"`
}

type positionSpread struct {
	Position        int           `json:"position"`
	PossibleLetters int           `json:"possible_letters"`
	TopLetters      []letterCount `json:"top_letters"`
}

type letterCount struct {
	Letter string `json:"letter"`
	Count  int    `json:"count"`
}

type recordPayload struct {
	Games      int     `json:"games"`
	Solved     int     `json:"solved"`
	Exhausted  int     `json:"exhausted"`
	AvgGuesses float64 `json:"avg_guesses"`
}

func (s *Server) handleState(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args stateArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'session' (string).", err)), nil
	}

	sess, err := s.session(ctx, args.Session)
	if err != nil {
		return errorResult(fmt.Sprintf("session lookup failed: %v", err)), nil
	}

	_, poolCount := words.Stats()
	payload := statePayload{
		Session:    sess.Key,
		Status:     string(sess.Status()),
		Attempts:   sess.Attempts(),
		Candidates: len(sess.Candidates),
		GuessPool:  poolCount,
		History:    historyRows(sess),
		Analysis:   analysisFromGame(game.Analyze(sess.Candidates)),
	}

	if s.rec != nil {
		stats, err := s.rec.Stats(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("reading solve log: %v", err)), nil
		}
		payload.Record = &recordPayload{
			Games:      stats.Games,
			Solved:     stats.Solved,
			Exhausted:  stats.Exhausted,
			AvgGuesses: round(stats.AvgGuesses, 2),
		}
	}

	return jsonResult(payload)
}

func analysisFromGame(a game.Analysis) analysisPayload {
	p := analysisPayload{
		Count:       a.Count,
		Message:     a.Message,
		FinalAnswer: strings.ToUpper(a.FinalAnswer),
	}
	if len(a.Candidates) > 0 {
		p.Candidates = upperWords(a.Candidates)
	}
	if a.MostLikely != nil {
		p.MostLikely = &positionHint{
			Position:    a.MostLikely.Position,
			Letter:      a.MostLikely.Letter,
			Probability: a.MostLikely.Probability,
		}
	}
	if a.MostUncertain != nil {
		spread := &positionSpread{
			Position:        a.MostUncertain.Position,
			PossibleLetters: a.MostUncertain.PossibleLetters,
		}
		for _, lc := range a.MostUncertain.TopLetters {
			spread.TopLetters = append(spread.TopLetters, letterCount{Letter: lc.Letter, Count: lc.Count})
		}
		p.MostUncertain = spread
	}
	return p
}

// ═══════════════════════════════════════════════════════════════════════════
// scrape_board — Read a hosted Wordle board and replay it
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addScrapeBoardTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "scrape_board",
			Title: "Scrape Wordle Board",
			Description: `Open a Wordle page in headless Chrome, read the completed guess rows off its DOM, and (by default) replay them onto the session.

USE THIS TOOL WHEN:
• The user shares a URL of an in-progress game instead of typing rows by hand
• Syncing the session with the real board after manual play

Replaying resets the session first: the board is the complete history. Pass "apply": false to only read the rows. Requires a Chrome or Chromium binary on the server's PATH; rendering takes a few seconds.

EXAMPLE INPUTS:
• {"url": "https://www.nytimes.com/games/wordle/index.html"}
• {"session": "puzzle-812", "url": "https://wordle.example/play", "apply": false}

Returns: the rows found (guess + feedback), whether they were applied, and the resulting status and candidate count.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session": sessionProperty(),
					"url": map[string]any{
						"type":        "string",
						"description": "Absolute http(s) URL of the Wordle page.",
						"format":      "uri",
					},
					"apply": map[string]any{
						"type":        "boolean",
						"description": "Replay the scraped rows onto the session (default true).",
					},
				},
				"required": []string{"url"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: false,
				OpenWorldHint:  boolPtr(true),
				Title:          "Scrape Wordle Board",
			},
		},
		s.instrument("scrape_board", s.handleScrapeBoard),
	)
}

type scrapeArgs struct {
	Session string `json:"session"`
	URL     string `json:"url"`
	Apply   *bool  `json:"apply"`
}

type scrapePayload struct {
	Session         string       `json:"session"`
	URL             string       `json:"url"`
	Rows            []appliedRow `json:"rows"`
	Applied         bool         `json:"applied"`
	Status          string       `json:"status,omitempty"`
	CandidatesAfter *int         `json:"candidates_after,omitempty"`
}

func (s *Server) handleScrapeBoard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args scrapeArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'url' (string), optional 'session' and 'apply'.", err)), nil
	}
	if strings.TrimSpace(args.URL) == "" {
		return errorResult(`url is required, e.g. {"url": "https://www.nytimes.com/games/wordle/index.html"}`), nil
	}

	board, err := s.scraper.Board(ctx, args.URL)
	if err != nil {
		return errorResult(fmt.Sprintf("scraping board: %v", err)), nil
	}

	sess, err := s.session(ctx, args.Session)
	if err != nil {
		return errorResult(fmt.Sprintf("session lookup failed: %v", err)), nil
	}

	payload := scrapePayload{
		Session: sess.Key,
		URL:     args.URL,
		Rows:    make([]appliedRow, 0, len(board.Rows)),
	}
	for _, row := range board.Rows {
		payload.Rows = append(payload.Rows, appliedRow{
			Guess:    strings.ToUpper(row.Guess),
			Feedback: row.Feedback,
		})
	}

	apply := args.Apply == nil || *args.Apply
	if !apply || len(board.Rows) == 0 {
		return jsonResult(payload)
	}

	// The board is the complete history, so replay starts from scratch.
	sess.Reset()
	for i, row := range board.Rows {
		if _, err := s.coach.Apply(sess, row.Guess, row.Feedback); err != nil {
			if saveErr := s.store.Save(ctx, sess); saveErr != nil {
				return errorResult(fmt.Sprintf("saving session: %v", saveErr)), nil
			}
			return errorResult(fmt.Sprintf("board row %d (%s=%s): %v", i+1, strings.ToUpper(row.Guess), row.Feedback, err)), nil
		}
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return errorResult(fmt.Sprintf("saving session: %v", err)), nil
	}
	s.recordIfFinished(ctx, sess)

	payload.Applied = true
	payload.Status = string(sess.Status())
	candidates := len(sess.Candidates)
	payload.CandidatesAfter = &candidates
	return jsonResult(payload)
}
