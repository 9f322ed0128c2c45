package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2024, 5, 6, 14, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"partial overlap at end", at(0), at(60), at(30), at(90), true},
		{"partial overlap at start", at(30), at(90), at(0), at(60), true},
		{"contained", at(0), at(120), at(30), at(60), true},
		{"containing", at(30), at(60), at(0), at(120), true},
		{"identical", at(0), at(60), at(0), at(60), true},
		{"touching after", at(0), at(60), at(60), at(120), false},
		{"touching before", at(60), at(120), at(0), at(60), false},
		{"disjoint", at(0), at(30), at(90), at(120), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), "overlap must be symmetric")
		})
	}
}

func TestOverlapsMatchesDefinition(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for s1 := 0; s1 < 6; s1++ {
		for e1 := s1 + 1; e1 <= 6; e1++ {
			for s2 := 0; s2 < 6; s2++ {
				for e2 := s2 + 1; e2 <= 6; e2++ {
					want := s1 < e2 && s2 < e1
					got := Overlaps(
						base.Add(time.Duration(s1)*time.Hour), base.Add(time.Duration(e1)*time.Hour),
						base.Add(time.Duration(s2)*time.Hour), base.Add(time.Duration(e2)*time.Hour),
					)
					assert.Equal(t, want, got, "[%d,%d) vs [%d,%d)", s1, e1, s2, e2)
				}
			}
		}
	}
}

func TestAppointmentTransitions(t *testing.T) {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		AppointmentStatusPending:    {AppointmentStatusConfirmed, AppointmentStatusCancelled},
		AppointmentStatusConfirmed:  {AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
		AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
	}
	all := []AppointmentStatus{
		AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransitionAppointment(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAppointmentTerminalStates(t *testing.T) {
	assert.True(t, AppointmentStatusCompleted.IsTerminal())
	assert.True(t, AppointmentStatusCancelled.IsTerminal())
	assert.True(t, AppointmentStatusNoShow.IsTerminal())
	assert.False(t, AppointmentStatusPending.IsTerminal())
	assert.False(t, AppointmentStatus("BOGUS").IsTerminal())
	assert.False(t, AppointmentStatus("BOGUS").Valid())
}
