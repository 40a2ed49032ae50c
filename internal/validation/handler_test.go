package validation

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"appointment/internal/events"
	"appointment/internal/timeslot"
	"appointment/internal/workinghours"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) WorkingHours(ctx context.Context, doctorID string) (string, bool, error) {
	args := m.Called(ctx, doctorID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func newTestHandler(lookup DoctorLookup, bus *events.EventBus) *Handler {
	logger := zerolog.New(io.Discard)
	return NewHandler(lookup, timeslot.New(time.UTC), bus, &logger)
}

func TestHandler_Scenarios(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		hours    string
		timeslot string
		want     workinghours.Reason
	}{
		{"start boundary", "07:00-18:00", "07:00:00", workinghours.ReasonNone},
		{"just before start", "07:00-18:00", "06:59:59", workinghours.ReasonOutOfRange},
		{"end boundary", "07:00-18:00", "18:00:00", workinghours.ReasonNone},
		{"empty working hours", "", "09:00:00", workinghours.ReasonMalformedWindow},
		{"hours only", "9-17", "12:00:00", workinghours.ReasonNone},
		{"twelve hour clock", "07:00-18:00", "6:30 PM", workinghours.ReasonOutOfRange},
		{"unparseable timeslot is midnight", "07:00-18:00", "soon", workinghours.ReasonOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(mockLookup)
			lookup.On("WorkingHours", ctx, "12").Return(tt.hours, true, nil).Once()

			res, err := newTestHandler(lookup, nil).Validate(ctx, Submission{Doctor: "12", Timeslot: tt.timeslot})
			require.NoError(t, err)

			assert.False(t, res.Skipped)
			assert.Equal(t, tt.want, res.Outcome.Reason)
			assert.Equal(t, tt.want == workinghours.ReasonNone, res.Valid())
			if tt.want == workinghours.ReasonNone {
				assert.False(t, res.Errors.HasErrors())
			} else {
				assert.Equal(t, res.Outcome.Message, res.Errors[FieldTimeslot])
			}
			lookup.AssertExpectations(t)
		})
	}
}

func TestHandler_OutOfRangeMessage(t *testing.T) {
	ctx := context.Background()
	lookup := new(mockLookup)
	lookup.On("WorkingHours", ctx, "3").Return("07:00-18:00", true, nil)

	res, err := newTestHandler(lookup, nil).Validate(ctx, Submission{Doctor: "3", Timeslot: "06:59:59"})
	require.NoError(t, err)

	msg := res.Errors[FieldTimeslot]
	assert.Contains(t, msg, "07:00")
	assert.Contains(t, msg, "18:00")
	assert.Equal(t, "06:59:59", res.Normalized)
}

func TestHandler_Skips(t *testing.T) {
	ctx := context.Background()

	for _, sub := range []Submission{
		{Doctor: "", Timeslot: "09:00"},
		{Doctor: "0", Timeslot: "09:00"},
		{Doctor: "12", Timeslot: ""},
		{Doctor: "12", Timeslot: "0"},
	} {
		lookup := new(mockLookup)
		res, err := newTestHandler(lookup, nil).Validate(ctx, sub)
		require.NoError(t, err)
		assert.True(t, res.Skipped, "%+v", sub)
		assert.True(t, res.Valid())
		lookup.AssertNotCalled(t, "WorkingHours", mock.Anything, mock.Anything)
	}
}

func TestHandler_UnknownDoctorSkipped(t *testing.T) {
	ctx := context.Background()
	lookup := new(mockLookup)
	lookup.On("WorkingHours", ctx, "99").Return("", false, nil)

	res, err := newTestHandler(lookup, nil).Validate(ctx, Submission{Doctor: "99", Timeslot: "23:00"})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, res.Errors.HasErrors())
}

func TestHandler_LookupError(t *testing.T) {
	ctx := context.Background()
	lookup := new(mockLookup)
	boom := errors.New("db down")
	lookup.On("WorkingHours", ctx, "1").Return("", false, boom)

	_, err := newTestHandler(lookup, nil).Validate(ctx, Submission{Doctor: "1", Timeslot: "10:00"})
	assert.ErrorIs(t, err, boom)
}

func TestHandler_PublishesEvent(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	lookup := new(mockLookup)
	lookup.On("WorkingHours", ctx, "7").Return("08:00-12:00", true, nil)

	bus := events.NewEventBus()
	var got []events.TimeslotValidated
	bus.Subscribe(events.TypeTimeslotValidated, func(e events.Event) error {
		p, err := events.DecodeTimeslotValidated(e)
		got = append(got, p)
		return err
	})

	_, err := newTestHandler(lookup, bus).Validate(ctx, Submission{Doctor: "7", Timeslot: "1 PM"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.Equal(t, "13:00:00", got[0].Normalized)
	assert.Equal(t, "out_of_range", got[0].Outcome)
	assert.Contains(t, got[0].Message, "08:00 - 12:00")
}

func TestSubmissionFromValues(t *testing.T) {
	sub := SubmissionFromValues(map[string]string{"doctor": "4", "timeslot": "10:15", "name": "x"})
	assert.Equal(t, Submission{Doctor: "4", Timeslot: "10:15"}, sub)
}

func TestFieldErrors_AddKeepsFirst(t *testing.T) {
	e := FieldErrors{}
	e.Add(FieldTimeslot, "first")
	e.Add(FieldTimeslot, "second")
	assert.Equal(t, "first", e[FieldTimeslot])
	assert.True(t, e.HasErrors())
}
