// internal/httpserver/server.go
//
// HTTP transport wiring for the Wordle coach MCP server.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, request logging, panic recovery).
//   - MCP endpoints: /mcp (streamable HTTP) and /mcp/sse (legacy SSE).
//   - Utility endpoints: "/", "/healthz", "/metrics", "/debug/words".
//   - Optional bearer auth: POST /auth/token exchanges an access key for a
//     short-lived JWT; with no access-key hash configured the MCP endpoints
//     are open and the token route is not mounted.
//
// Notes:
//   - The MCP routes run without a request timeout. SSE streams stay open for
//     the life of the client session, so a deadline there would sever them.
//   - MCP transports negotiate their own content types (JSON or event-stream),
//     so the default JSON header is applied to utility routes only.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle-coach/internal/mcpserver"
	"github.com/robalobadob/wordle-coach/internal/words"
)

// Config carries the MCP server plus auth settings.
type Config struct {
	MCP *mcpserver.Server

	// AccessKeyHash is a bcrypt hash of the shared access key. When empty,
	// auth is disabled and the MCP endpoints are served unauthenticated.
	AccessKeyHash string

	// JWTSecret signs the tokens handed out by /auth/token.
	JWTSecret string

	// TokenTTL bounds the lifetime of issued tokens. Defaults to one hour.
	TokenTTL time.Duration
}

// Server bundles the router and the MCP server it fronts.
type Server struct {
	r   *chi.Mux
	cfg Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	s := &Server{r: chi.NewRouter(), cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLog)      // per-request debug line
	s.r.Use(chimw.Recoverer) // recover from panics

	// --- utility endpoints (bounded, JSON by default) ---
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordle-coach","endpoints":["/healthz","/metrics","POST /auth/token","POST /mcp","GET /mcp/sse"]}`))
		})
		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Method(http.MethodGet, "/metrics", cfg.MCP.MetricsHandler())

		// Debug: word list counts
		r.Get("/debug/words", func(w http.ResponseWriter, req *http.Request) {
			a, g := words.Stats()
			_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "guess_pool": g})
		})

		if s.authEnabled() {
			r.Post("/auth/token", s.handleToken)
		}
	})

	// --- MCP endpoints (no timeout; streams outlive any sane deadline) ---
	s.r.Group(func(r chi.Router) {
		if s.authEnabled() {
			r.Use(s.requireBearer())
		}
		r.Handle("/mcp", cfg.MCP.StreamableHandler())
		r.Handle("/mcp/sse", cfg.MCP.SSEHandler())
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+req.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) authEnabled() bool { return s.cfg.AccessKeyHash != "" }

// ------------------------------ token exchange ------------------------------

type tokenReq struct {
	AccessKey string `json:"access_key"`
}

type tokenResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleToken trades the shared access key for a short-lived bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var body tokenReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if body.AccessKey == "" {
		http.Error(w, `{"error":"access_key required"}`, http.StatusBadRequest)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(s.cfg.AccessKeyHash), []byte(body.AccessKey)) != nil {
		http.Error(w, `{"error":"Invalid access key"}`, http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.signToken()
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(tokenResp{Token: tok, ExpiresAt: exp})
}

// signToken issues an HS256 JWT valid for the configured TTL.
func (s *Server) signToken() (string, time.Time, error) {
	exp := time.Now().Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mcp-client",
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	ss, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// ---------------------------- auth middleware -------------------------------

// requireBearer enforces a valid JWT on the MCP endpoints.
func (s *Server) requireBearer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// ----------------------------- middleware -----------------------------------

// jsonContentType sets a default JSON Content-Type header.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLog emits one debug line per request.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
