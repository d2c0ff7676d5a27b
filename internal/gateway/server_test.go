package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdeck/internal/bundle"
	"github.com/soyeahso/agentdeck/internal/catalog"
	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/store"
)

type testServer struct {
	handler http.Handler
	srv     *Server
	db      *store.DB
	root    string
	ownerID int64
}

// newTestServer builds a fully wired server over an in-memory database
// with one registered user and returns the HTTP handler under test.
func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	db, err := store.Open(":memory:", logging.Silent())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	user, err := users.Create("alice", "password one")
	require.NoError(t, err)

	root := t.TempDir()
	agents := store.NewAgentStore(db)
	loader := bundle.NewLoader(root, logging.Silent())
	cat := catalog.New(loader, agents, logging.Silent())

	cfg := config.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}

	srv := New(cfg, cat, agents, store.NewCredentialStore(db), store.NewAPIKeyStore(db), users, logging.Silent())

	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	return &testServer{
		handler: srv.withMiddleware(mux),
		srv:     srv,
		db:      db,
		root:    root,
		ownerID: user.ID,
	}
}

func (ts *testServer) request(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		dec := json.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
		dec.UseNumber()
		require.NoError(t, dec.Decode(&payload))
	}
	return rec, payload
}

func (ts *testServer) writeBundle(t *testing.T, name, persona string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(ts.root, "personas"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ts.root, "personas", name+".md"), []byte(persona), 0o644))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "ok", payload["status"])
}

func TestListAgents(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.writeBundle(t, "curated", "persona")

	rec, payload := ts.request(t, "GET", "/agents", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	agents := payload["agents"].([]any)
	// 1 file agent + 5 seeded templates
	assert.Len(t, agents, 6)
	first := agents[0].(map[string]any)
	assert.Equal(t, "file:curated", first["id"])
}

func TestGetAgent_File(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.writeBundle(t, "curated", "Expert")

	rec, payload := ts.request(t, "GET", "/agents/file:curated", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	agent := payload["agent"].(map[string]any)
	assert.Equal(t, "# PERSONA & ROLE\nExpert", agent["systemPrompt"])
}

func TestGetAgent_BadID(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "GET", "/agents/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])
}

func TestGetAgent_Missing(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.request(t, "GET", "/agents/99999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAgent(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"name":"helper","displayName":"Helper","systemPrompt":"Be helpful."}`
	rec, payload := ts.request(t, "POST", "/agents", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	agent := payload["agent"].(map[string]any)
	assert.Equal(t, "helper", agent["name"])
	assert.NotZero(t, agent["id"])
}

func TestCreateAgent_Invalid(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.request(t, "POST", "/agents", `{"name":"Bad Name","displayName":"X","systemPrompt":"p"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.request(t, "POST", "/agents", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAgent_Duplicate(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"name":"helper","displayName":"Helper","systemPrompt":"p"}`
	rec, _ := ts.request(t, "POST", "/agents", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = ts.request(t, "POST", "/agents", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateAgent(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "POST", "/agents", `{"name":"helper","displayName":"Helper","systemPrompt":"old"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := payload["agent"].(map[string]any)["id"].(json.Number)

	rec, payload = ts.request(t, "PUT", "/agents/"+id.String(), `{"systemPrompt":"new"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	agent := payload["agent"].(map[string]any)
	assert.Equal(t, "new", agent["systemPrompt"])
	assert.Equal(t, "Helper", agent["displayName"])
}

func TestUpdateAgent_MissingIs404(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.request(t, "PUT", "/agents/99999", `{"systemPrompt":"new"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAgent_FileIDRejected(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.writeBundle(t, "curated", "persona")

	rec, _ := ts.request(t, "PUT", "/agents/file:curated", `{"systemPrompt":"new"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAgent(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "POST", "/agents", `{"name":"helper","displayName":"Helper","systemPrompt":"p"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := payload["agent"].(map[string]any)["id"].(json.Number)

	rec, _ = ts.request(t, "DELETE", "/agents/"+id.String(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.request(t, "DELETE", "/agents/"+id.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplatesEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "GET", "/agents/templates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["templates"].([]any), 5)
}

func TestCredentialsFlow(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "POST", "/credentials", `{"name":"reg","type":"docker","value":"secret"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := payload["credential"].(map[string]any)["id"].(json.Number)

	rec, payload = ts.request(t, "GET", "/credentials?type=docker", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	creds := payload["credentials"].([]any)
	require.Len(t, creds, 1)
	// Values never appear in listings.
	assert.NotContains(t, rec.Body.String(), "secret")

	rec, _ = ts.request(t, "PATCH", "/credentials/"+id.String()+"/active", `{"isActive":false}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.request(t, "DELETE", "/credentials/"+id.String(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.request(t, "DELETE", "/credentials/"+id.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKeysFlow(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "POST", "/keys", `{"name":"laptop"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := payload["token"].(string)
	assert.True(t, strings.HasPrefix(token, "ak_"))

	rec, payload = ts.request(t, "GET", "/keys", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	keys := payload["keys"].([]any)
	require.Len(t, keys, 1)
	// Raw token never appears after creation.
	assert.NotContains(t, rec.Body.String(), token)
}

func TestAuth_APIKey(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Server.RequireAuth = true })

	// No token.
	rec, _ := ts.request(t, "GET", "/agents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Mint a key directly in the store.
	_, token, err := store.NewAPIKeyStore(ts.db).Create(ts.ownerID, "test")
	require.NoError(t, err)

	rec, _ = ts.request(t, "GET", "/agents", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.request(t, "GET", "/agents", "", map[string]string{"X-API-Key": token})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.request(t, "GET", "/agents", "", map[string]string{"X-API-Key": "ak_" + strings.Repeat("00", 32)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec, _ = ts.request(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_FallbackToFirstUser(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.request(t, "GET", "/agents", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, payload := ts.request(t, "GET", "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, payload["success"])
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.request(t, "GET", "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, _ = ts.request(t, "GET", "/health", "", map[string]string{"X-Request-ID": "fixed"})
	assert.Equal(t, "fixed", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	})

	req := httptest.NewRequest("OPTIONS", "/agents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestResolveBindAddr(t *testing.T) {
	cases := []struct {
		bind string
		host string
		want string
	}{
		{"loopback", "", "127.0.0.1:18890"},
		{"lan", "", "0.0.0.0:18890"},
		{"auto", "", "0.0.0.0:18890"},
		{"custom", "10.0.0.5", "10.0.0.5:18890"},
		{"custom", "", "0.0.0.0:18890"},
		{"bogus", "", "127.0.0.1:18890"},
	}
	for _, tc := range cases {
		cfg := config.ServerConfig{Port: 18890, Bind: tc.bind, CustomBindHost: tc.host}
		assert.Equal(t, tc.want, resolveBindAddr(cfg))
	}
}
