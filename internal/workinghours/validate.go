package workinghours

import "fmt"

const (
	// MessageMalformedWindow is shown when a doctor's working hours cannot be parsed.
	MessageMalformedWindow = "Working hours for this doctor are not configured properly."
	messageOutOfRange      = "Selected timeslot is outside the working hours of the doctor (%s - %s)."
)

// Reason classifies a failed validation.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMalformedWindow
	ReasonOutOfRange
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformedWindow:
		return "malformed_window"
	case ReasonOutOfRange:
		return "out_of_range"
	default:
		return ""
	}
}

// Outcome is the result of a single validation. The zero value is valid.
type Outcome struct {
	Reason  Reason
	Message string
}

// Valid reports whether the timeslot was accepted.
func (o Outcome) Valid() bool {
	return o.Reason == ReasonNone
}

// Err returns nil for a valid outcome and a *ValidationError otherwise.
func (o Outcome) Err() error {
	if o.Valid() {
		return nil
	}
	return &ValidationError{Reason: o.Reason, Message: o.Message}
}

// ValidationError carries a user-facing validation message.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches ErrMalformedWindow and ErrOutOfRange by reason.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrMalformedWindow:
		return e.Reason == ReasonMalformedWindow
	case ErrOutOfRange:
		return e.Reason == ReasonOutOfRange
	}
	return false
}

// Validate checks an HH:MM:SS candidate against the raw working-hours string.
func Validate(windowRaw, candidate string) Outcome {
	w, err := ParseWindow(windowRaw)
	if err != nil {
		return Outcome{Reason: ReasonMalformedWindow, Message: MessageMalformedWindow}
	}

	if !w.Contains(ParseTimeOfDay(candidate)) {
		return Outcome{
			Reason:  ReasonOutOfRange,
			Message: fmt.Sprintf(messageOutOfRange, w.StartText, w.EndText),
		}
	}

	return Outcome{}
}
