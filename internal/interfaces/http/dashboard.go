package http

import (
	"net/http"

	"findash/internal/domain/metrics"
)

type DashboardHandler struct {
	engine *metrics.Engine
}

func NewDashboardHandler(engine *metrics.Engine) *DashboardHandler {
	return &DashboardHandler{engine: engine}
}

func (h *DashboardHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	m, err := h.engine.Compute(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
