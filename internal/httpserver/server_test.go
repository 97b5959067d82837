package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle-coach/internal/httpserver"
	"github.com/robalobadob/wordle-coach/internal/mcpserver"
)

func newTestServer(t *testing.T, cfg httpserver.Config) *httpserver.Server {
	t.Helper()
	if cfg.MCP == nil {
		cfg.MCP = mcpserver.New(&mcpserver.Config{})
	}
	return httpserver.New(cfg)
}

func do(t *testing.T, s *httpserver.Server, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, httpserver.Config{})

	rec := do(t, s, http.MethodGet, "/healthz", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestServiceBanner(t *testing.T) {
	s := newTestServer(t, httpserver.Config{})

	rec := do(t, s, http.MethodGet, "/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"wordle-coach"`)
	assert.Contains(t, rec.Body.String(), "/mcp")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, httpserver.Config{})

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDebugWords(t *testing.T) {
	s := newTestServer(t, httpserver.Config{})

	rec := do(t, s, http.MethodGet, "/debug/words", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var counts map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Greater(t, counts["answers"], 0)
	assert.GreaterOrEqual(t, counts["guess_pool"], counts["answers"])
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t, httpserver.Config{})

	rec := do(t, s, http.MethodGet, "/nope", "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestAuthDisabled(t *testing.T) {
	s := newTestServer(t, httpserver.Config{})

	// Token route is not mounted.
	rec := do(t, s, http.MethodPost, "/auth/token", `{"access_key":"whatever"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// MCP endpoint is reachable without credentials. The transport will
	// reject the empty POST, but not with an auth failure.
	rec = do(t, s, http.MethodPost, "/mcp", "", nil)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenExchange(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	s := newTestServer(t, httpserver.Config{
		AccessKeyHash: string(hash),
		JWTSecret:     "test-secret",
		TokenTTL:      time.Minute,
	})

	// MCP endpoints demand a bearer token now.
	rec := do(t, s, http.MethodPost, "/mcp", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/mcp/sse", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key is rejected.
	rec = do(t, s, http.MethodPost, "/auth/token", `{"access_key":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed body is rejected.
	rec = do(t, s, http.MethodPost, "/auth/token", `{"access_key":`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing key is rejected.
	rec = do(t, s, http.MethodPost, "/auth/token", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The right key yields a token.
	rec = do(t, s, http.MethodPost, "/auth/token", `{"access_key":"open-sesame"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	// The token opens the MCP endpoints.
	rec = do(t, s, http.MethodPost, "/mcp", "", map[string]string{
		"Authorization": "Bearer " + resp.Token,
	})
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)

	// Garbage tokens do not.
	rec = do(t, s, http.MethodPost, "/mcp", "", map[string]string{
		"Authorization": "Bearer not.a.jwt",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUtilityRoutesStayOpenWithAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("key"), bcrypt.MinCost)
	require.NoError(t, err)
	s := newTestServer(t, httpserver.Config{
		AccessKeyHash: string(hash),
		JWTSecret:     "test-secret",
	})

	for _, path := range []string{"/healthz", "/metrics", "/debug/words"} {
		rec := do(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}
