package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"appointment/internal/metrics"
	"appointment/internal/models"
	"appointment/internal/validation"
)

// ValidateRequest is the request body for POST /api/v1/appointments/validate.
type ValidateRequest struct {
	Doctor   string `json:"doctor"`
	Timeslot string `json:"timeslot"`
}

// ValidateResponse is returned for every processed submission.
type ValidateResponse struct {
	Valid      bool              `json:"valid"`
	Skipped    bool              `json:"skipped,omitempty"`
	Reason     string            `json:"reason,omitempty"` // malformed_window, out_of_range
	Normalized string            `json:"normalized,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// handleValidate checks a timeslot against the selected doctor's working hours.
// POST /api/v1/appointments/validate
func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validate")

	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	res, err := s.handler.Validate(r.Context(), sub)
	if err != nil {
		s.logger.Error().Err(err).Str("doctor", sub.Doctor).Msg("validate timeslot")
		writeError(w, http.StatusInternalServerError, "doctor lookup failed")
		return
	}

	resp := ValidateResponse{
		Valid:      res.Valid(),
		Skipped:    res.Skipped,
		Reason:     res.Outcome.Reason.String(),
		Normalized: res.Normalized,
	}
	if res.Errors.HasErrors() {
		resp.Errors = res.Errors
	}

	status := http.StatusOK
	if !resp.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// decodeSubmission reads a JSON body, or form fields when the request is
// form-encoded. Unknown form fields are ignored, as a booking form posts more
// than the two checked values.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (validation.Submission, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return validation.Submission{}, false
		}
		values := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			values[k] = r.PostForm.Get(k)
		}
		return validation.SubmissionFromValues(values), true
	}

	var req ValidateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return validation.Submission{}, false
	}
	return validation.Submission{Doctor: req.Doctor, Timeslot: req.Timeslot}, true
}

// DoctorResponse describes a doctor and the parsed working-hours window.
type DoctorResponse struct {
	models.Doctor
	Window *WindowResponse `json:"window,omitempty"`
}

// WindowResponse holds window boundaries as HH:MM:SS and seconds since midnight.
type WindowResponse struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	StartSeconds int    `json:"start_seconds"`
	EndSeconds   int    `json:"end_seconds"`
}

// handleDoctor returns a doctor record. Malformed working hours yield no window.
// GET /api/v1/doctors/{id}
func (s *HTTPServer) handleDoctor(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("doctor")

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}

	d, err := s.db.GetDoctor(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "doctor not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("doctor_id", id).Msg("get doctor")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := DoctorResponse{Doctor: *d}
	if win, err := d.Window(); err == nil {
		resp.Window = &WindowResponse{
			Start:        win.Start.String(),
			End:          win.End.String(),
			StartSeconds: int(win.Start),
			EndSeconds:   int(win.End),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
