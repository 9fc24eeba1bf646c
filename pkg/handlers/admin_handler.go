package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/PrivateRookie/psql/pkg/apperrors"
	"github.com/PrivateRookie/psql/pkg/config"
	"github.com/PrivateRookie/psql/pkg/logging"
	"github.com/PrivateRookie/psql/pkg/plan"
	"github.com/PrivateRookie/psql/pkg/registry"
	"github.com/PrivateRookie/psql/pkg/scan"
	"github.com/PrivateRookie/psql/pkg/template"
)

// AdminHandler exposes runtime registration: adding connections and
// queries to a running server, probing connectivity, and previewing a
// template render without executing it.
type AdminHandler struct {
	registry *registry.Registry
	cfg      *config.Config
	prefix   string
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reg *registry.Registry, cfg *config.Config, prefix string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{registry: reg, cfg: cfg, prefix: prefix, logger: logger}
}

// RegisterRoutes registers the utility routes under the plan prefix.
// They share the prefix with registered queries; the mux prefers the
// exact __util patterns over the query subtree.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	util := "/" + h.prefix + "/__util/"
	mux.HandleFunc("POST "+util+"add_conn", h.AddConn)
	mux.HandleFunc("POST "+util+"add_query", h.AddQuery)
	mux.HandleFunc("POST "+util+"test_connective", h.TestConnective)
	mux.HandleFunc("POST "+util+"preview", h.Preview)
	mux.HandleFunc("GET "+util+"conns", h.Conns)
}

type addConnRequest struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// AddConn opens a named connection and registers the backend's
// catalog queries under <name>/__meta/ so the new connection is
// immediately explorable.
func (h *AdminHandler) AddConn(w http.ResponseWriter, r *http.Request) {
	var req addConnRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Name == "" || req.URI == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "name and uri are required")
		return
	}

	if err := h.registry.AddConn(r.Context(), req.Name, req.URI); err != nil {
		h.logger.Error("add_conn failed",
			zap.String("conn", req.Name),
			zap.String("uri", logging.SanitizeConnectionString(req.URI)),
			zap.String("error", logging.SanitizeError(err)))
		_ = ErrorResponse(w, http.StatusBadGateway, "connect_failed", logging.SanitizeError(err))
		return
	}

	pool, err := h.registry.Pool(req.Name)
	if err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	metas := metaQueries(req.Name, pool.Backend)
	routes := make([]string, 0, len(metas))
	for _, q := range metas {
		entry, err := h.registry.AddQuery(q)
		if err != nil {
			h.logger.Warn("meta query registration failed",
				zap.String("conn", req.Name),
				zap.String("query", q.Name),
				zap.Error(err))
			continue
		}
		routes = append(routes, entry.Query.Route())
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"name":    req.Name,
		"backend": pool.Backend.String(),
		"meta":    routes,
	})
}

// AddQuery compiles and registers a query against an existing
// connection. The request body is a plan query definition.
func (h *AdminHandler) AddQuery(w http.ResponseWriter, r *http.Request) {
	var q plan.Query
	if err := decodeBody(r, &q); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if q.Name == "" || q.Conn == "" || q.SQL == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "name, conn and sql are required")
		return
	}
	if q.Method == "" {
		q.Method = http.MethodGet
	}

	entry, err := h.registry.AddQuery(q)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, apperrors.ErrConnNotFound) {
			status = http.StatusNotFound
		}
		_ = ErrorResponse(w, status, "register_failed", err.Error())
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"id":    entry.ID.String(),
		"route": entry.Query.Route(),
	})
}

type testConnectiveRequest struct {
	URI string `json:"uri"`
}

// TestConnective opens and pings a URI without registering it.
func (h *AdminHandler) TestConnective(w http.ResponseWriter, r *http.Request) {
	var req testConnectiveRequest
	if err := decodeBody(r, &req); err != nil || req.URI == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "uri is required")
		return
	}
	if err := h.registry.TestConn(r.Context(), req.URI); err != nil {
		_ = ErrorResponse(w, http.StatusBadGateway, "connect_failed", logging.SanitizeError(err))
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type previewRequest struct {
	Conn   string                     `json:"conn"`
	SQL    string                     `json:"sql"`
	Params map[string]json.RawMessage `json:"params"`
}

// Preview compiles ad-hoc SQL against a connection's dialect, binds
// the given parameters and returns the rendered statements without
// executing anything.
func (h *AdminHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Conn == "" || req.SQL == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "conn and sql are required")
		return
	}

	prog, backend, err := h.registry.Compile(req.Conn, req.SQL)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, apperrors.ErrConnNotFound) {
			status = http.StatusNotFound
		}
		_ = ErrorResponse(w, status, "compile_failed", err.Error())
		return
	}

	supplied := make(map[string][]string, len(req.Params))
	for name, raw := range req.Params {
		values, err := jsonToStrings(raw)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_parameters", err.Error())
			return
		}
		supplied[name] = values
	}
	ctx, err := template.BuildContext(prog.Params(), supplied)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	if h.cfg.Scan.Enabled {
		if results := scan.CheckContext(ctx); len(results) > 0 {
			_ = ErrorResponse(w, http.StatusBadRequest, "unsafe_parameter",
				apperrors.ErrUnsafeValue.Error()+": "+results[0].ParamName)
			return
		}
	}

	statements, err := prog.Render(backend.Dialect(), ctx)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "render_failed", err.Error())
		return
	}
	rendered := make([]string, len(statements))
	for i, stmt := range statements {
		rendered[i] = stmt.String()
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"statements": rendered})
}

// Conns lists the registered connection names with their backends.
func (h *AdminHandler) Conns(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.registry.Conns())
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}
