package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/app"
	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/storage/memory"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Code   string          `json:"code"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "memory"
	cfg.Auth.JWTSecret = "test-secret"
	a := app.New(cfg, common.NewSilentLogger(), memory.NewManager(), nil)
	t.Cleanup(a.Close)
	return NewServer(a)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func do(t *testing.T, srv *Server, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", env.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec, _ = do(t, srv, http.MethodPost, "/api/health", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/version", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/wallets", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDPropagated(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPathParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/wallets/w1/bonds", nil)
	assert.Equal(t, "w1", PathParam(r, "/api/wallets/", "/bonds"))
	assert.Equal(t, "w1", PathParam(r, "/api/wallets/", ""))
	assert.Equal(t, "", PathParam(r, "/api/bonds/", ""))

	id, sub := splitPath(r, "/api/wallets/")
	assert.Equal(t, "w1", id)
	assert.Equal(t, "bonds", sub)
}

func TestAmountField(t *testing.T) {
	var req struct {
		A amountField `json:"a"`
		B amountField `json:"b"`
		C amountField `json:"c"`
		D amountField `json:"d"`
		E amountField `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "R$ 1.234,56", "c": null, "d": 1234.567, "e": "1.000"}`), &req))

	a, err := parseAmount("a", req.A, true)
	require.NoError(t, err)
	assert.Equal(t, "12.5", a.String())

	b, err := parseAmount("b", req.B, true)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", b.String())

	_, err = parseAmount("c", req.C, true)
	assert.Error(t, err)

	c, err := parseAmount("c", req.C, false)
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	// JSON numbers keep their dot as the decimal point.
	d, err := parseAmount("d", req.D, true)
	require.NoError(t, err)
	assert.Equal(t, "1234.567", d.String())

	e, err := parseAmount("e", req.E, true)
	require.NoError(t, err)
	assert.Equal(t, "1000", e.String())
}
