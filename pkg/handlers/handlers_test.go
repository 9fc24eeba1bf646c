package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PrivateRookie/psql/pkg/config"
	"github.com/PrivateRookie/psql/pkg/database"
	"github.com/PrivateRookie/psql/pkg/plan"
	"github.com/PrivateRookie/psql/pkg/registry"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:     "test",
		Version: "test",
		Scan:    config.ScanConfig{Enabled: true},
	}
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(database.Config{}, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = reg.Close() })
	require.NoError(t, reg.AddConn(context.Background(), "main", "sqlite://"))
	return reg
}

func testMux(t *testing.T, reg *registry.Registry, p *plan.Plan) *http.ServeMux {
	t.Helper()
	cfg := testConfig()
	logger := zaptest.NewLogger(t)
	mux := http.NewServeMux()
	NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	NewQueryHandler(reg, cfg, p.Prefix, logger).RegisterRoutes(mux)
	NewAdminHandler(reg, cfg, p.Prefix, logger).RegisterRoutes(mux)
	NewDocHandler(reg, p, "test", logger).RegisterRoutes(mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestExecuteQuery(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.AddQuery(plan.Query{
		Name:   "answer",
		Conn:   "main",
		Method: "GET",
		SQL:    "--? n: num = 42\nSELECT @n AS answer",
	})
	require.NoError(t, err)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/api/answer", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{"answer"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.EqualValues(t, 42, result.Rows[0]["answer"])
}

func TestExecuteQueryWithSuppliedParam(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.AddQuery(plan.Query{
		Name:   "echo",
		Conn:   "main",
		Method: "GET",
		SQL:    "--? n: num = 0\nSELECT @n AS n",
	})
	require.NoError(t, err)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/api/echo?n=7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "7")
}

func TestExecuteQueryNotFound(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecuteQueryWrongMethod(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.AddQuery(plan.Query{Name: "q", Conn: "main", Method: "GET", SQL: "SELECT 1"})
	require.NoError(t, err)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/q", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExecuteQueryMissingRequiredParam(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.AddQuery(plan.Query{
		Name:   "q",
		Conn:   "main",
		Method: "GET",
		SQL:    "--? name: str\nSELECT @name AS name",
	})
	require.NoError(t, err)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/api/q", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestExecuteQueryRejectsInjection(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.AddQuery(plan.Query{
		Name:   "q",
		Conn:   "main",
		Method: "GET",
		SQL:    "--? name: str\nSELECT @name AS name",
	})
	require.NoError(t, err)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/api/q?name="+
		"%27%3B%20DROP%20TABLE%20users--", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsafe_parameter")
}

func TestAddConnAndMetaQueries(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/__util/add_conn", `{"name": "extra", "uri": "sqlite://"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Name    string   `json:"name"`
		Backend string   `json:"backend"`
		Meta    []string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "extra", resp.Name)
	assert.Equal(t, "sqlite", resp.Backend)
	assert.Contains(t, resp.Meta, "extra/__meta/tables")

	rec = do(mux, http.MethodGet, "/api/extra/__meta/tables", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAddConnBadURI(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/__util/add_conn", `{"name": "x", "uri": "redis://nope"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAddQueryEndpoint(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/__util/add_query",
		`{"name": "late", "conn": "main", "sql": "SELECT 1 AS one"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(mux, http.MethodGet, "/api/late", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAddQueryUnknownConn(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/__util/add_query",
		`{"name": "q", "conn": "nope", "sql": "SELECT 1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTestConnective(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/__util/test_connective", `{"uri": "sqlite://"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodPost, "/api/__util/test_connective", `{"uri": "redis://nope"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPreview(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	body := `{"conn": "main", "sql": "--? age: num = 18\nSELECT * FROM user WHERE age > @age", "params": {"age": 30}}`
	rec := do(mux, http.MethodPost, "/api/__util/preview", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Statements []string `json:"statements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Statements, 1)
	assert.Equal(t, "SELECT * FROM user WHERE age > 30", resp.Statements[0])
}

func TestPreviewCompileError(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodPost, "/api/__util/preview", `{"conn": "main", "sql": "SELECT @nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocEndpoint(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.AddQuery(plan.Query{
		Name:    "answer",
		Conn:    "main",
		Method:  "GET",
		SQL:     "SELECT 42 AS answer",
		Summary: "the answer",
	})
	require.NoError(t, err)
	mux := testMux(t, reg, &plan.Plan{Title: "t", Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/_doc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.0", doc["openapi"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/answer")
}

func TestHealthAndPing(t *testing.T) {
	reg := testRegistry(t)
	mux := testMux(t, reg, &plan.Plan{Prefix: "api", DocPath: "_doc"})

	rec := do(mux, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(mux, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ping PingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ping))
	assert.Equal(t, "psql", ping.Service)
}
