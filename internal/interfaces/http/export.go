package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"findash/internal/domain/export"
	"findash/internal/shared/logger"
)

type ExportHandler struct {
	projector *export.Projector
	now       func() time.Time
}

func NewExportHandler(projector *export.Projector) *ExportHandler {
	return &ExportHandler{projector: projector, now: time.Now}
}

type noMatchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// HandleFields lists the exportable fields.
func (h *ExportHandler) HandleFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]export.FieldInfo{"fields": export.Fields()})
}

// HandleExport streams the caller's matching transactions as a CSV download.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req export.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	proj, err := h.projector.Build(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if proj.Empty() {
		writeJSON(w, http.StatusNotFound, noMatchResponse{
			Success: false,
			Message: "No transactions found matching the specified criteria",
			Kind:    "no_matching_records",
		})
		return
	}

	// Encode fully before writing headers so a failure can still be a 500.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, proj); err != nil {
		writeError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Int64("user_id", userID).Int("rows", len(proj.Rows)).Msg("transactions exported")

	filename := export.Filename(req.Filename, h.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
