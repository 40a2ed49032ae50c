package api

import (
	"bytes"
	"net/http"
	"strconv"

	"appointment/internal/audit"
	"appointment/internal/metrics"
)

const maxAuditExportRows = 10000

// handleAuditExport streams the latest validation audit entries as .xlsx.
// GET /api/v1/audit/validations.xlsx?limit=500
func (s *HTTPServer) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("audit_export")

	limit := 1000
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditExportRows)
	}

	records, err := s.db.ListValidations(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list validation audit")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	if err := audit.WriteValidations(&buf, records); err != nil {
		s.logger.Error().Err(err).Msg("render audit export")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="validations.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
