package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/robalobadob/wordle-coach/internal/engine"
	"github.com/robalobadob/wordle-coach/internal/words"
)

// registerResources adds the read-only introspection resources.
func (s *Server) registerResources() {
	s.addVersionResource()
	s.addCorpusResource()
	if s.rec != nil {
		s.addResultsResource()
	}
}

// jsonResource wraps a JSON document in a single-content read result.
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// wordle://version — Server identity and capabilities
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addVersionResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "wordle://version",
			Name:        "Wordle Coach Version",
			Description: "Server name, version, and tool inventory.",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			resources := []string{"wordle://version", "wordle://corpus"}
			if s.rec != nil {
				resources = append(resources, "wordle://results")
			}
			return jsonResource("wordle://version", map[string]any{
				"name":    serverName,
				"version": serverVersion,
				"tools": []string{
					"suggest_move", "apply_feedback", "explain",
					"reset", "state", "scrape_board",
				},
				"resources": resources,
			})
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// wordle://corpus — Word list sizes and source
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addCorpusResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "wordle://corpus",
			Name:        "Word Corpus",
			Description: "Answer and guess-pool sizes and where the lists were loaded from.",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			answers, pool := words.Stats()
			return jsonResource("wordle://corpus", map[string]any{
				"answers":           answers,
				"guess_pool":        pool,
				"source":            words.Source(),
				"word_length":       engine.WordLen,
				"feedback_alphabet": "G/Y/K (🟩/🟨/⬛ accepted)",
			})
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// wordle://results — Solve-log stats and recent games
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addResultsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "wordle://results",
			Name:        "Solve Log",
			Description: "Aggregate solve stats and the most recent finished games.",
			MIMEType:    "application/json",
		},
		func(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			stats, err := s.rec.Stats(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading solve log: %w", err)
			}
			recent, err := s.rec.Recent(ctx, 20)
			if err != nil {
				return nil, fmt.Errorf("reading solve log: %w", err)
			}

			games := make([]map[string]any, 0, len(recent))
			for _, r := range recent {
				games = append(games, map[string]any{
					"id":          r.ID,
					"session":     r.SessionKey,
					"status":      r.Status,
					"guesses":     r.Guesses,
					"final_word":  strings.ToUpper(r.FinalWord),
					"started_at":  r.StartedAt.Format(time.RFC3339),
					"finished_at": r.FinishedAt.Format(time.RFC3339),
				})
			}

			return jsonResource("wordle://results", map[string]any{
				"stats": map[string]any{
					"games":       stats.Games,
					"solved":      stats.Solved,
					"exhausted":   stats.Exhausted,
					"avg_guesses": round(stats.AvgGuesses, 2),
				},
				"recent": games,
			})
		},
	)
}
