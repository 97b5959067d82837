// main.go
//
// Entrypoint for the Wordle coach MCP server.
// Responsibilities:
//   - Load .env + logging setup (stderr only; stdout is the stdio wire).
//   - Load word lists (embedded or file overrides).
//   - Open the optional SQLite solve log (DB_PATH).
//   - Start the selected transport: stdio (default), http, or sse.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-coach/internal/httpserver"
	"github.com/robalobadob/wordle-coach/internal/mcpserver"
	"github.com/robalobadob/wordle-coach/internal/record"
	"github.com/robalobadob/wordle-coach/internal/store"
	"github.com/robalobadob/wordle-coach/internal/words"
)

func main() {
	_ = godotenv.Load()

	// Logs go to stderr in every mode; in stdio mode stdout carries the
	// MCP protocol stream and must stay clean.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	cfg := &mcpserver.Config{
		Store:         store.NewMemoryStore(),
		StrictGuesses: envBool("STRICT_GUESSES", false),
		TopK:          envInt("SUGGEST_TOP_K", 0),
		ScrapeTimeout: time.Duration(envInt("SCRAPE_TIMEOUT_SECONDS", 0)) * time.Second,
	}

	if dsn := os.Getenv("DB_PATH"); dsn != "" {
		db, err := openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("db", dsn).Msg("open solve log")
		}
		if err := migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate solve log")
		}
		cfg.Recorder = record.New(db)
		log.Info().Str("db", dsn).Msg("solve log enabled")
	}

	srv := mcpserver.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := getEnv("MCP_TRANSPORT", "stdio")
	switch transport {
	case "stdio":
		if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("stdio transport exited")
		}
	case "http", "sse", "streamable-http":
		h := httpserver.New(httpserver.Config{
			MCP:           srv,
			AccessKeyHash: os.Getenv("ACCESS_KEY_HASH"),
			JWTSecret:     getEnv("JWT_SECRET", "dev_secret_change_me"),
		})
		port := getEnv("PORT", "5175")
		log.Info().Str("port", port).Str("transport", transport).Msg("starting wordle-coach")
		if err := h.Start(":" + port); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	default:
		log.Fatal().Str("transport", transport).Msg("unknown MCP_TRANSPORT (want stdio, http, or sse)")
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-boolean env value")
	}
	return def
}
