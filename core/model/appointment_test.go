package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetScheduledAtDerivesLabel(t *testing.T) {
	var a Appointment
	a.SetScheduledAt(time.Date(2025, 11, 20, 7, 5, 0, 0, time.UTC))
	assert.Equal(t, "07:05", a.TimeLabel)
	a.SetScheduledAt(time.Date(2025, 11, 20, 16, 0, 0, 0, time.UTC))
	assert.Equal(t, "16:00", a.TimeLabel)
}

func TestAppointmentEnd(t *testing.T) {
	a := Appointment{DurationMinutes: 90}
	a.SetScheduledAt(time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 11, 20, 10, 30, 0, 0, time.UTC), a.End())
}

func TestLifecycleTransitions(t *testing.T) {
	a := Appointment{State: StatePending}
	assert.False(t, a.OnSite())
	now := time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC)
	a.MarkOnSite(now)
	require.NotNil(t, a.ArrivedAt)
	assert.True(t, a.OnSite())
	assert.Equal(t, now, *a.ArrivedAt)

	// a second signal keeps the first arrival
	a.MarkOnSite(now.Add(time.Hour))
	assert.Equal(t, now, *a.ArrivedAt)

	a.MarkDeparted()
	assert.False(t, a.OnSite())
	assert.Equal(t, StateDeparted, a.State)

	a.MarkPending()
	assert.Nil(t, a.ArrivedAt)
}

func TestDayKeyRoundTrip(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	d, err := ParseDayKey("2025-11-20", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-20", DayKey(d))
	_, err = ParseDayKey("20/11/2025", loc)
	assert.Error(t, err)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, OperationCourier.Valid())
	assert.False(t, OperationType("x").Valid())
	assert.True(t, StateDeparted.Valid())
	assert.False(t, LifecycleState("").Valid())
}

func TestAppointmentID(t *testing.T) {
	assert.Equal(t, "del-2801-2025-11-20", AppointmentID("2801", "2025-11-20"))
}
