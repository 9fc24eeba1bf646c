package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/PrivateRookie/psql/pkg/openapi"
	"github.com/PrivateRookie/psql/pkg/plan"
	"github.com/PrivateRookie/psql/pkg/registry"
)

// DocHandler serves the OpenAPI document describing every registered
// query, including those added at runtime.
type DocHandler struct {
	registry *registry.Registry
	plan     *plan.Plan
	version  string
	logger   *zap.Logger
}

// NewDocHandler creates a new DocHandler.
func NewDocHandler(reg *registry.Registry, p *plan.Plan, version string, logger *zap.Logger) *DocHandler {
	return &DocHandler{registry: reg, plan: p, version: version, logger: logger}
}

// RegisterRoutes registers the doc route from the plan on the mux.
func (h *DocHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /"+h.plan.DocPath, h.Doc)
}

// Doc regenerates the document from the current registry snapshot on
// every request; registration is rare enough that caching would only
// add an invalidation problem.
func (h *DocHandler) Doc(w http.ResponseWriter, r *http.Request) {
	doc := openapi.Generate(h.plan, h.registry.Snapshot(), h.version)
	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("failed to write api document", zap.Error(err))
	}
}
