package workinghours

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{"07:00", 25200},
		{"18:00:00", 64800},
		{"abc", 0},
		{"", 0},
		{"9", 32400},
		{"06:59:59", 25199},
		{"ab:cd", 0},
		{"7h", 25200},
		{" 8:15", 29700},
		{"25:00", 90000},
		{"10:30:15:99", 37815},
		{"-1:00", -3600},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimeOfDay(tt.in))
		})
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"07", 7},
		{"  +8", 8},
		{"-3x", -3},
		{"x3", 0},
		{"-", 0},
		{"", 0},
		{"7.9", 7},
		{"-7.9", -7},
		{".5", 0},
		{"5.", 5},
		{"1e3", 1000},
		{"1.5e2", 150},
		{"2e", 2},
		{"2e+", 2},
		{"3E-1", 0},
		{"99999999999999999999", math.MaxInt},
		{"-99999999999999999999", math.MinInt},
		{"1e30", math.MaxInt},
		{"1e400", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, leadingInt(tt.in))
		})
	}
}

func TestParseTimeOfDay_ExponentHours(t *testing.T) {
	assert.Equal(t, Clock(0, 0, 100), ParseTimeOfDay("0:0:1e2"))
	assert.Equal(t, Clock(7, 30, 0), ParseTimeOfDay("7.5:30"))
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "07:00:00", Clock(7, 0, 0).String())
	assert.Equal(t, "23:59:59", TimeOfDay(86399).String())
	assert.Equal(t, "01:00:00", TimeOfDay(90000).String())
	assert.Equal(t, "23:00:00", TimeOfDay(-3600).String())
}

func TestTimeOfDay_Normalize(t *testing.T) {
	assert.Equal(t, TimeOfDay(0), TimeOfDay(86400).Normalize())
	assert.Equal(t, TimeOfDay(3600), TimeOfDay(90000).Normalize())
	assert.Equal(t, TimeOfDay(82800), TimeOfDay(-3600).Normalize())
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("07:00-18:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(25200), w.Start)
	assert.Equal(t, TimeOfDay(64800), w.End)
	assert.Equal(t, "07:00", w.StartText)
	assert.Equal(t, "18:00", w.EndText)
	assert.Equal(t, "07:00 - 18:00", w.String())
}

func TestParseWindow_TrimsTokens(t *testing.T) {
	w, err := ParseWindow("  09:30 -  17:45 ")
	require.NoError(t, err)
	assert.Equal(t, "09:30", w.StartText)
	assert.Equal(t, "17:45", w.EndText)
	assert.Equal(t, Clock(9, 30, 0), w.Start)
	assert.Equal(t, Clock(17, 45, 0), w.End)
}

func TestParseWindow_Malformed(t *testing.T) {
	for _, raw := range []string{"", "07001800", "0", "07:00 18:00"} {
		_, err := ParseWindow(raw)
		assert.ErrorIs(t, err, ErrMalformedWindow, "raw=%q", raw)
	}
}

func TestParseWindow_CompactTokens(t *testing.T) {
	// "0700" is read as hour 700, not 07:00.
	w, err := ParseWindow("0700-1800")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(700*3600), w.Start)
	assert.Equal(t, TimeOfDay(1800*3600), w.End)
}

func TestParseWindow_ExtraSeparators(t *testing.T) {
	w, err := ParseWindow("07:00-12:00-18:00")
	require.NoError(t, err)
	assert.Equal(t, "12:00", w.EndText)
	assert.Equal(t, Clock(12, 0, 0), w.End)
}

func TestParseWindow_KeepsInvertedWindow(t *testing.T) {
	w, err := ParseWindow("22:00-06:00")
	require.NoError(t, err)
	assert.Greater(t, w.Start, w.End)
	assert.False(t, w.Contains(Clock(23, 0, 0)))
	assert.False(t, w.Contains(Clock(3, 0, 0)))
}

func TestParseWindow_EmptySides(t *testing.T) {
	w, err := ParseWindow("-")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(0), w.Start)
	assert.Equal(t, TimeOfDay(0), w.End)
	assert.True(t, w.Contains(0))
}

func TestWindow_ContainsIsInclusive(t *testing.T) {
	w, err := ParseWindow("07:00-18:00")
	require.NoError(t, err)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start-1))
	assert.False(t, w.Contains(w.End+1))
}

func TestValidate_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		window    string
		candidate string
		want      Reason
	}{
		{"start boundary", "07:00-18:00", "07:00:00", ReasonNone},
		{"one second early", "07:00-18:00", "06:59:59", ReasonOutOfRange},
		{"end boundary", "07:00-18:00", "18:00:00", ReasonNone},
		{"one second late", "07:00-18:00", "18:00:01", ReasonOutOfRange},
		{"empty window", "", "09:00:00", ReasonMalformedWindow},
		{"no separator", "07001800", "09:00:00", ReasonMalformedWindow},
		{"hours only", "9-17", "12:00:00", ReasonNone},
		{"garbage candidate is midnight", "07:00-18:00", "ab:cd", ReasonOutOfRange},
		{"garbage candidate inside midnight window", "00:00-06:00", "ab:cd", ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.window, tt.candidate)
			assert.Equal(t, tt.want, got.Reason)
			assert.Equal(t, tt.want == ReasonNone, got.Valid())
		})
	}
}

func TestValidate_OutOfRangeMessageUsesOriginalTokens(t *testing.T) {
	got := Validate(" 7:00 - 18:00 ", "06:00:00")
	require.False(t, got.Valid())
	assert.Equal(t, "Selected timeslot is outside the working hours of the doctor (7:00 - 18:00).", got.Message)
}

func TestValidate_MalformedMessage(t *testing.T) {
	got := Validate("always", "09:00:00")
	assert.Equal(t, ReasonMalformedWindow, got.Reason)
	assert.Equal(t, MessageMalformedWindow, got.Message)
}

func TestValidate_RangeProperty(t *testing.T) {
	w, err := ParseWindow("08:15-16:45")
	require.NoError(t, err)

	for c := TimeOfDay(0); c < secondsPerDay; c += 37 {
		got := Validate("08:15-16:45", c.String())
		if c >= w.Start && c <= w.End {
			assert.True(t, got.Valid(), "candidate %s", c)
			continue
		}
		assert.Equal(t, ReasonOutOfRange, got.Reason, "candidate %s", c)
		assert.Contains(t, got.Message, "08:15")
		assert.Contains(t, got.Message, "16:45")
	}
}

func TestOutcome_Err(t *testing.T) {
	assert.NoError(t, Outcome{}.Err())

	err := Validate("07:00-18:00", "20:00:00").Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.False(t, errors.Is(err, ErrMalformedWindow))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonOutOfRange, verr.Reason)

	err = Validate("", "20:00:00").Err()
	assert.ErrorIs(t, err, ErrMalformedWindow)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "", ReasonNone.String())
	assert.Equal(t, "malformed_window", ReasonMalformedWindow.String())
	assert.Equal(t, "out_of_range", ReasonOutOfRange.String())
}
