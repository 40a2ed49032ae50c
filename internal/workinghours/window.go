// Package workinghours checks appointment times against a doctor's
// "HH:MM-HH:MM" working-hours string.
package workinghours

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const secondsPerDay = 24 * 60 * 60

var (
	// ErrMalformedWindow is returned when the working-hours string is empty or has no separator.
	ErrMalformedWindow = errors.New("malformed working hours")
	// ErrOutOfRange is matched by validation errors for timeslots outside the window.
	ErrOutOfRange = errors.New("timeslot out of working hours")
)

// TimeOfDay is a number of seconds since midnight.
type TimeOfDay int

// Clock builds a TimeOfDay from its components.
func Clock(hours, minutes, seconds int) TimeOfDay {
	return TimeOfDay(hours*3600 + minutes*60 + seconds)
}

// Normalize folds t into a single day, [0, 86399].
func (t TimeOfDay) Normalize() TimeOfDay {
	n := int(t) % secondsPerDay
	if n < 0 {
		n += secondsPerDay
	}
	return TimeOfDay(n)
}

// String renders t as HH:MM:SS. Values outside a day are normalized first.
func (t TimeOfDay) String() string {
	n := int(t.Normalize())
	return fmt.Sprintf("%02d:%02d:%02d", n/3600, n%3600/60, n%60)
}

// ParseTimeOfDay converts "H[:M[:S]]" into seconds since midnight.
// Missing or non-numeric components count as zero and the result is not clamped.
func ParseTimeOfDay(text string) TimeOfDay {
	parts := strings.Split(text, ":")

	var fields [3]int
	for i := 0; i < len(fields) && i < len(parts); i++ {
		fields[i] = leadingInt(parts[i])
	}

	return Clock(fields[0], fields[1], fields[2])
}

// leadingInt reads the numeric prefix of s the way a loose integer cast does:
// leading whitespace, an optional sign, digits, and an optional fraction or
// exponent. Fractions truncate toward zero, out-of-range values saturate at
// the int bounds, and anything without a leading number yields 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intEnd := i
	mantissa := intEnd - digits

	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > i+1 {
			mantissa += j - i - 1
			i = j
		}
	}
	if mantissa == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '-' || s[j] == '+') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	if i == intEnd {
		// On overflow ParseInt returns the saturated bound.
		n, _ := strconv.ParseInt(s[:i], 10, 0)
		return int(n)
	}

	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil && math.IsInf(f, 0) {
		return 0
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Window is a parsed working-hours range. Start after End is kept as is.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay

	// StartText and EndText are the trimmed boundary tokens from the raw string.
	StartText string
	EndText   string
}

// ParseWindow parses a raw "HH:MM-HH:MM" working-hours string.
func ParseWindow(raw string) (Window, error) {
	if raw == "" || !strings.Contains(raw, "-") {
		return Window{}, ErrMalformedWindow
	}

	// Only the first two tokens count: "07:00-12:00-18:00" ends at 12:00.
	parts := strings.Split(raw, "-")
	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])

	return Window{
		Start:     ParseTimeOfDay(start),
		End:       ParseTimeOfDay(end),
		StartText: start,
		EndText:   end,
	}, nil
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Start && t <= w.End
}

// String returns the window in "start - end" form using the original tokens.
func (w Window) String() string {
	return w.StartText + " - " + w.EndText
}
