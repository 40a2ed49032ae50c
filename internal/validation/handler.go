// Package validation binds submitted appointment forms to the working-hours check.
package validation

import (
	"context"
	"fmt"

	"appointment/internal/events"
	"appointment/internal/metrics"
	"appointment/internal/models"
	"appointment/internal/timeslot"
	"appointment/internal/workinghours"

	"github.com/rs/zerolog"
)

const (
	FieldDoctor   = "doctor"
	FieldTimeslot = "timeslot"
)

// OutcomeSkipped is counted when a submission is not checked at all.
const OutcomeSkipped = "skipped"

// DoctorLookup resolves a doctor id to its raw working-hours string.
type DoctorLookup interface {
	WorkingHours(ctx context.Context, doctorID string) (hours string, found bool, err error)
}

// Submission holds the two form values the check depends on.
type Submission struct {
	Doctor   string `json:"doctor"`
	Timeslot string `json:"timeslot"`
}

// SubmissionFromValues picks the doctor and timeslot fields out of form values.
func SubmissionFromValues(values map[string]string) Submission {
	return Submission{Doctor: values[FieldDoctor], Timeslot: values[FieldTimeslot]}
}

// FieldErrors maps a form field to its error message.
type FieldErrors map[string]string

// Add sets the message for field, keeping the first one reported.
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// HasErrors reports whether any field failed.
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// Result describes what happened to a submission.
type Result struct {
	Outcome    workinghours.Outcome
	Errors     FieldErrors
	Skipped    bool
	Normalized string
}

// Valid reports whether the form may proceed. Skipped submissions are valid.
func (r Result) Valid() bool {
	return r.Skipped || r.Outcome.Valid()
}

type ctxKey struct{}

// WithRequestID attaches a request id that ends up in published events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id set by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Handler validates submissions against doctors' working hours.
type Handler struct {
	lookup     DoctorLookup
	normalizer *timeslot.Normalizer
	bus        *events.EventBus
	logger     *zerolog.Logger
}

// NewHandler wires a handler. bus may be nil.
func NewHandler(lookup DoctorLookup, normalizer *timeslot.Normalizer, bus *events.EventBus, logger *zerolog.Logger) *Handler {
	if normalizer == nil {
		normalizer = timeslot.New(nil)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{lookup: lookup, normalizer: normalizer, bus: bus, logger: logger}
}

// Validate checks sub. Missing fields and unknown doctors are skipped, not rejected.
// The error is non-nil only when the lookup itself fails.
func (h *Handler) Validate(ctx context.Context, sub Submission) (Result, error) {
	if absent(sub.Doctor) || absent(sub.Timeslot) {
		return h.skip("missing field"), nil
	}

	hours, found, err := h.lookup.WorkingHours(ctx, sub.Doctor)
	if err != nil {
		return Result{}, fmt.Errorf("lookup doctor %s: %w", sub.Doctor, err)
	}
	if !found {
		return h.skip("doctor not found"), nil
	}

	normalized := h.normalizer.Normalize(sub.Timeslot)
	outcome := workinghours.Validate(hours, normalized)

	res := Result{Outcome: outcome, Errors: FieldErrors{}, Normalized: normalized}
	if !outcome.Valid() {
		res.Errors.Add(FieldTimeslot, outcome.Message)
	}

	label := models.OutcomeLabel(outcome)
	metrics.IncValidation(label)
	h.logger.Debug().
		Str("doctor", sub.Doctor).
		Str("timeslot", sub.Timeslot).
		Str("normalized", normalized).
		Str("outcome", label).
		Msg("timeslot validated")

	h.publish(ctx, sub, normalized, label, outcome.Message)
	return res, nil
}

func (h *Handler) skip(reason string) Result {
	metrics.IncValidation(OutcomeSkipped)
	h.logger.Debug().Str("reason", reason).Msg("timeslot validation skipped")
	return Result{Skipped: true, Errors: FieldErrors{}}
}

func (h *Handler) publish(ctx context.Context, sub Submission, normalized, label, message string) {
	if h.bus == nil {
		return
	}
	ev, err := events.NewTimeslotValidated(events.TimeslotValidated{
		RequestID:  RequestID(ctx),
		DoctorID:   sub.Doctor,
		Timeslot:   sub.Timeslot,
		Normalized: normalized,
		Outcome:    label,
		Message:    message,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("encode validation event")
		return
	}
	h.bus.Publish(ev)
}

// absent mirrors the form host's truthiness: empty and "0" count as not submitted.
func absent(v string) bool {
	return v == "" || v == "0"
}
