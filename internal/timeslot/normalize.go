// Package timeslot turns free-form appointment times into the HH:MM:SS form
// the working-hours validator compares.
package timeslot

import (
	"strconv"
	"strings"
	"time"
)

const clockLayout = "15:04:05"

var zonedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
}

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04:05PM",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// Normalizer resolves timeslots in a fixed location.
type Normalizer struct {
	Location *time.Location
}

// New returns a Normalizer for loc; nil means time.Local.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{Location: loc}
}

func (n *Normalizer) location() *time.Location {
	if n == nil || n.Location == nil {
		return time.Local
	}
	return n.Location
}

// Fallback is the clock value used for text that cannot be parsed: the Unix
// epoch read in the normalizer's location ("00:00:00" in UTC).
func (n *Normalizer) Fallback() string {
	return time.Unix(0, 0).In(n.location()).Format(clockLayout)
}

// Normalize returns text as HH:MM:SS, or Fallback when it cannot be parsed.
func (n *Normalizer) Normalize(text string) string {
	t, ok := n.Parse(text)
	if !ok {
		return n.Fallback()
	}
	return t.Format(clockLayout)
}

// Parse reads text as a point in time in the normalizer's location.
// Clock-only inputs land on the zero date.
func (n *Normalizer) Parse(text string) (time.Time, bool) {
	loc := n.location()
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}

	if strings.HasPrefix(s, "@") {
		sec, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(sec, 0).In(loc), true
	}

	switch strings.ToLower(s) {
	case "noon", "midday":
		return time.Date(0, 1, 1, 12, 0, 0, 0, loc), true
	case "midnight":
		return time.Date(0, 1, 1, 0, 0, 0, 0, loc), true
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}

	upper := strings.ToUpper(s)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
