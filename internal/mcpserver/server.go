// internal/mcpserver/server.go
//
// MCP server assembly: tool/resource registration, transports, and the
// small result helpers every handler shares. Game logic lives in
// internal/game; this package only translates between MCP payloads and
// coach operations.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-coach/internal/game"
	"github.com/robalobadob/wordle-coach/internal/record"
	"github.com/robalobadob/wordle-coach/internal/scrape"
	"github.com/robalobadob/wordle-coach/internal/store"
)

const (
	serverName    = "mcp-wordle-coach"
	serverTitle   = "Wordle Coach MCP Server"
	serverVersion = "0.1.0"

	// defaultSessionKey serves clients that never pass a session argument.
	defaultSessionKey = "default"
)

// Config holds MCP server configuration.
type Config struct {
	// Store keeps live sessions. Nil falls back to the in-memory store.
	Store store.Store

	// StrictGuesses rejects guesses outside the allowed pool.
	StrictGuesses bool

	// TopK is the default suggestion count when a call does not set top_k.
	TopK int

	// ScrapeTimeout bounds one scrape_board browser run.
	ScrapeTimeout time.Duration

	// Recorder logs finished games. Nil disables the solve log.
	Recorder *record.Recorder
}

// Server wraps the MCP server with the Wordle coach tools.
type Server struct {
	mcp     *mcp.Server
	coach   game.Coach
	store   store.Store
	scraper *scrape.Scraper
	rec     *record.Recorder
	metrics *metrics
}

// New creates an MCP server with all tools and resources registered.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore()
	}

	s := &Server{
		coach:   game.Coach{StrictGuesses: cfg.StrictGuesses, TopK: cfg.TopK},
		store:   st,
		scraper: scrape.New(cfg.ScrapeTimeout),
		rec:     cfg.Recorder,
		metrics: newMetrics(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Title:   serverTitle,
			Version: serverVersion,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()

	return s
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// RunStdio runs the MCP server over stdio transport, the mode MCP clients
// spawn the binary in. Logging must stay on stderr here: stdout carries
// the JSON-RPC stream.
func (s *Server) RunStdio(ctx context.Context) error {
	log.Info().Str("transport", "stdio").Msg("mcp server ready")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// StreamableHandler returns the streamable HTTP transport handler.
func (s *Server) StreamableHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{Stateless: false},
	)
}

// SSEHandler returns the legacy SSE transport handler for older clients.
func (s *Server) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		nil,
	)
}

// MetricsHandler serves the Prometheus registry for this server.
func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.handler()
}

// session resolves a client-supplied key to a live session, creating it on
// first touch. Blank keys map to the shared default session.
func (s *Server) session(ctx context.Context, key string) (*game.Session, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultSessionKey
	}
	return s.store.GetOrCreate(ctx, key)
}

// recordIfFinished logs a finished session to the solve log. Telemetry
// failures are logged, never surfaced to the client.
func (s *Server) recordIfFinished(ctx context.Context, sess *game.Session) {
	if s.rec == nil || !sess.Finished() {
		return
	}
	if _, err := s.rec.Record(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session", sess.Key).Msg("solve log write failed")
	}
}

// ---------------------------------------------------------------------------
// Helpers — result builders
// ---------------------------------------------------------------------------

// textResult creates a CallToolResult with a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult creates an IsError CallToolResult so the client model can see
// the problem and self-correct instead of hitting a protocol error.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// boolPtr returns a pointer to b. Used for optional bool fields in the SDK.
func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}

// upperWords copies list with every word uppercased for display.
func upperWords(list []string) []string {
	out := make([]string, len(list))
	for i, w := range list {
		out[i] = strings.ToUpper(w)
	}
	return out
}

// round trims x to the given number of decimal places for stable payloads.
func round(x float64, places int) float64 {
	pow := 1.0
	for i := 0; i < places; i++ {
		pow *= 10
	}
	return math.Round(x*pow) / pow
}

// ---------------------------------------------------------------------------
// Server Instructions
// ---------------------------------------------------------------------------

const serverInstructions = `You are operating Wordle Coach — an entropy-based Wordle solving assistant.

## HOW IT WORKS

The coach tracks a candidate set per session: every word that could still be
the answer given the feedback seen so far. Each suggestion maximizes the
expected information (Shannon entropy in bits) of the next guess, so the
candidate set shrinks as fast as possible.

## FEEDBACK FORMAT

Feedback is five symbols, one per letter of the guess:
- G or 🟩 — letter is correct and in the right position
- Y or 🟨 — letter is in the word but in another position
- K, ⬛ or ⬜ — letter is not in the word (or no more copies of it)

Example: guess CRATE against answer ORCAS gives YGYKK.

## TYPICAL LOOP

1. suggest_move — get the highest-information guess for the session
2. The user plays it in their Wordle game and reports the colors
3. apply_feedback — narrow the candidates with {"guess": "...", "feedback": "GYKKY"}
4. Repeat until status is "solved" (all greens) or "exhausted"

Other tools:
- state — session status, history, and candidate analysis at any point
- explain — partition statistics for any prospective guess (why it is good or bad)
- reset — start the session over with the full corpus
- scrape_board — read a hosted Wordle board straight from its URL (needs Chrome) and optionally replay it onto the session

## SESSIONS

Every tool accepts an optional "session" string. Omit it to use the shared
"default" session. Separate puzzles need separate session keys.

## ERROR RECOVERY

- "invalid feedback" → re-check the five G/Y/K symbols and resend
- "word not in allowed list" → the guess is not in the pool; pick a suggested word
- "no candidates remain" / status "exhausted" → some feedback row was wrong
  or the answer is outside the corpus; call reset and re-enter the rows
- "session finished" → the game ended; call reset to play again

## RESOURCES

- wordle://version — server name, version, and tool inventory
- wordle://corpus — word list sizes and source
- wordle://results — solve-log stats and recent games (when the log is enabled)`
