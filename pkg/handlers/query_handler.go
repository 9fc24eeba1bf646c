package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/PrivateRookie/psql/pkg/apperrors"
	"github.com/PrivateRookie/psql/pkg/config"
	"github.com/PrivateRookie/psql/pkg/logging"
	"github.com/PrivateRookie/psql/pkg/registry"
	"github.com/PrivateRookie/psql/pkg/scan"
)

// QueryResult is the JSON shape of an executed query.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// QueryHandler serves the registered queries under the plan prefix.
type QueryHandler struct {
	registry *registry.Registry
	cfg      *config.Config
	prefix   string
	logger   *zap.Logger
}

// NewQueryHandler creates a QueryHandler serving routes under prefix.
func NewQueryHandler(reg *registry.Registry, cfg *config.Config, prefix string, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{registry: reg, cfg: cfg, prefix: prefix, logger: logger}
}

// RegisterRoutes registers the prefix subtree on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/"+h.prefix+"/", h.Execute)
}

// Execute resolves the route to a registered query, binds the request
// parameters, renders the template and runs the single resulting
// statement against the query's connection.
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	route := strings.Trim(strings.TrimPrefix(r.URL.Path, "/"+h.prefix+"/"), "/")

	entry, pool, err := h.registry.Resolve(route)
	if err != nil {
		_ = ErrorResponse(w, statusForResolve(err), "query_not_found", err.Error())
		return
	}
	if r.Method != entry.Query.Method {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed",
			apperrors.ErrMethodNotAllowed.Error()+": "+entry.Query.Name+" is served as "+entry.Query.Method)
		return
	}

	ctx, err := bindRequest(r, entry.Program.Params())
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	if h.cfg.Scan.Enabled {
		if results := scan.CheckContext(ctx); len(results) > 0 {
			h.logger.Warn("parameter rejected by injection scan",
				zap.String("query", entry.Query.Name),
				zap.String("param", results[0].ParamName),
				zap.String("fingerprint", results[0].Fingerprint))
			_ = ErrorResponse(w, http.StatusBadRequest, "unsafe_parameter",
				apperrors.ErrUnsafeValue.Error()+": "+results[0].ParamName)
			return
		}
	}

	statements, err := entry.Program.Render(pool.Backend.Dialect(), ctx)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "render_failed", err.Error())
		return
	}
	if len(statements) != 1 {
		_ = ErrorResponse(w, http.StatusBadRequest, "multiple_statements",
			apperrors.ErrMultipleStmts.Error())
		return
	}

	query := statements[0].String()
	h.logger.Debug("executing query",
		zap.String("query", entry.Query.Name),
		zap.String("sql", logging.SanitizeQuery(query)))

	output, err := pool.Query(r.Context(), query)
	if err != nil {
		h.logger.Error("query execution failed",
			zap.String("query", entry.Query.Name),
			zap.String("error", logging.SanitizeError(err)))
		_ = ErrorResponse(w, http.StatusInternalServerError, "execution_failed",
			logging.SanitizeError(err))
		return
	}

	if err := WriteJSON(w, http.StatusOK, QueryResult{Columns: output.Columns, Rows: output.Rows}); err != nil {
		h.logger.Error("failed to write query result", zap.Error(err))
	}
}

// statusForResolve maps registry resolution errors onto HTTP statuses.
func statusForResolve(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrQueryNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConnNotFound):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
