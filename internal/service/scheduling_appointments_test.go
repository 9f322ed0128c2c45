package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

type bookingFixture struct {
	*fixture
	tech   *domain.Technician
	ticket *domain.Ticket
}

func newBookingFixture(t *testing.T) bookingFixture {
	f := newFixture(t)
	tech := f.technician(t, "Alice", domain.ServiceTypeHardware)
	client := f.client(t, "Acme")
	ticket := f.ticket(t, client.ID, domain.ServiceTypeHardware)
	return bookingFixture{fixture: f, tech: tech, ticket: ticket}
}

func (b bookingFixture) book(start, end time.Time) (*domain.Appointment, error) {
	return b.scheduling.CreateAppointment(context.Background(), CreateAppointmentInput{
		TechnicianID: b.tech.ID,
		TicketID:     b.ticket.ID,
		StartTime:    start,
		EndTime:      end,
	}, "dispatcher-1")
}

func TestCreateAppointmentConflictScenario(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	existing, err := b.book(tomorrow(14, 0), tomorrow(15, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusPending, existing.Status)
	_, err = b.scheduling.UpdateAppointmentStatus(ctx, existing.ID, domain.AppointmentStatusConfirmed, "dispatcher-1")
	require.NoError(t, err)

	_, err = b.book(tomorrow(14, 30), tomorrow(15, 30))
	assertCode(t, err, apperrors.CodeInvalidState)

	touching, err := b.book(tomorrow(15, 0), tomorrow(16, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusPending, touching.Status)
}

func TestCreateAppointmentIgnoresCancelledAndNoShow(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	cancelled, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)
	_, err = b.scheduling.CancelAppointment(ctx, cancelled.ID, "client rescheduled", "")
	require.NoError(t, err)

	noShow, err := b.book(tomorrow(11, 0), tomorrow(12, 0))
	require.NoError(t, err)
	_, err = b.scheduling.UpdateAppointmentStatus(ctx, noShow.ID, domain.AppointmentStatusConfirmed, "")
	require.NoError(t, err)
	_, err = b.scheduling.UpdateAppointmentStatus(ctx, noShow.ID, domain.AppointmentStatusNoShow, "")
	require.NoError(t, err)

	_, err = b.book(tomorrow(9, 0), tomorrow(10, 0))
	assert.NoError(t, err)
	_, err = b.book(tomorrow(11, 0), tomorrow(12, 0))
	assert.NoError(t, err)
}

func TestCreateAppointmentConflictsOnlyWithSameTechnician(t *testing.T) {
	b := newBookingFixture(t)
	bob := b.technician(t, "Bob", domain.ServiceTypeHardware)

	_, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)

	_, err = b.scheduling.CreateAppointment(context.Background(), CreateAppointmentInput{
		TechnicianID: bob.ID,
		TicketID:     b.ticket.ID,
		StartTime:    tomorrow(9, 0),
		EndTime:      tomorrow(10, 0),
	}, "")
	assert.NoError(t, err)
}

func TestCreateAppointmentDurationBounds(t *testing.T) {
	cases := []struct {
		name     string
		duration time.Duration
		ok       bool
	}{
		{"29 minutes", 29 * time.Minute, false},
		{"30 minutes", 30 * time.Minute, true},
		{"8 hours", 8 * time.Hour, true},
		{"8 hours 1 minute", 8*time.Hour + time.Minute, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBookingFixture(t)
			start := tomorrow(8, 0)
			_, err := b.book(start, start.Add(tc.duration))
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assertCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestCreateAppointmentRejectsInvalidWindows(t *testing.T) {
	b := newBookingFixture(t)

	_, err := b.book(time.Time{}, tomorrow(10, 0))
	assertCode(t, err, apperrors.CodeValidation)

	_, err = b.book(tomorrow(10, 0), tomorrow(10, 0))
	assertCode(t, err, apperrors.CodeValidation)

	_, err = b.book(tomorrow(11, 0), tomorrow(10, 0))
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCreateAppointmentRejectsPastStart(t *testing.T) {
	b := newBookingFixture(t)

	start := baseTime.Add(-time.Minute)
	_, err := b.book(start, start.Add(time.Hour))
	assertCode(t, err, apperrors.CodeValidation)

	_, err = b.book(baseTime, baseTime.Add(time.Hour))
	assert.NoError(t, err, "starting exactly now is allowed")
}

func TestCreateAppointmentRequiresActiveTechnicianAndOpenTicket(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	_, err := b.scheduling.CreateAppointment(ctx, CreateAppointmentInput{
		TechnicianID: "missing", TicketID: b.ticket.ID, StartTime: tomorrow(9, 0), EndTime: tomorrow(10, 0),
	}, "")
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = b.scheduling.CreateAppointment(ctx, CreateAppointmentInput{
		TechnicianID: b.tech.ID, TicketID: "missing", StartTime: tomorrow(9, 0), EndTime: tomorrow(10, 0),
	}, "")
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = b.directory.UpdateTechnicianStatus(ctx, b.tech.ID, domain.TechnicianStatusOnVacation, "")
	require.NoError(t, err)
	_, err = b.book(tomorrow(9, 0), tomorrow(10, 0))
	assertCode(t, err, apperrors.CodeInvalidState)

	_, err = b.directory.UpdateTechnicianStatus(ctx, b.tech.ID, domain.TechnicianStatusActive, "")
	require.NoError(t, err)
	_, err = b.scheduling.CloseTicket(ctx, b.ticket.ID, "fixed remotely", "tech-1")
	require.NoError(t, err)
	_, err = b.book(tomorrow(9, 0), tomorrow(10, 0))
	assertCode(t, err, apperrors.CodeInvalidState)
}

func TestCreateAppointmentRecordsHistoryAndEvent(t *testing.T) {
	b := newBookingFixture(t)

	appointment, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)

	history, err := b.scheduling.ListTicketHistory(context.Background(), b.ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Contains(t, history[1].Description, "Appointment scheduled with Alice")
	assert.Equal(t, "dispatcher-1", history[1].Actor)
	assert.Contains(t, b.eventTypes(), events.EventAppointmentCreated)

	listed, err := b.scheduling.ListTicketAppointments(context.Background(), b.ticket.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, appointment.ID, listed[0].ID)
}

func TestCreateAppointmentIsAtomic(t *testing.T) {
	b := newBookingFixture(t)
	failing := NewSchedulingService(SchedulingDependencies{
		Store:  historyFailingStore{inner: b.store},
		Clock:  b.clock,
		Logger: zap.NewNop(),
	})

	_, err := failing.CreateAppointment(context.Background(), CreateAppointmentInput{
		TechnicianID: b.tech.ID,
		TicketID:     b.ticket.ID,
		StartTime:    tomorrow(9, 0),
		EndTime:      tomorrow(10, 0),
	}, "")
	assertCode(t, err, apperrors.CodeInternal)

	listed, err := b.scheduling.ListTechnicianAppointments(context.Background(), b.tech.ID, tomorrow(0, 0), tomorrow(23, 0))
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCancelAppointmentTwice(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)

	cancelled, err := b.scheduling.CancelAppointment(ctx, appointment.ID, "client unavailable", "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, "client unavailable", cancelled.CancellationReason)

	_, err = b.scheduling.CancelAppointment(ctx, appointment.ID, "again", "dispatcher-1")
	assertCode(t, err, apperrors.CodeInvalidState)
	assert.Contains(t, err.Error(), "already cancelled")
}

func TestCancelCompletedAppointment(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)
	for _, next := range []domain.AppointmentStatus{
		domain.AppointmentStatusConfirmed,
		domain.AppointmentStatusInProgress,
		domain.AppointmentStatusCompleted,
	} {
		_, err = b.scheduling.UpdateAppointmentStatus(ctx, appointment.ID, next, "")
		require.NoError(t, err)
	}

	_, err = b.scheduling.CancelAppointment(ctx, appointment.ID, "", "")
	assertCode(t, err, apperrors.CodeInvalidState)
	assert.Contains(t, err.Error(), "cannot cancel a completed appointment")
}

func TestTerminalAppointmentStatesRejectEveryTransition(t *testing.T) {
	paths := map[domain.AppointmentStatus][]domain.AppointmentStatus{
		domain.AppointmentStatusCompleted: {domain.AppointmentStatusConfirmed, domain.AppointmentStatusInProgress, domain.AppointmentStatusCompleted},
		domain.AppointmentStatusCancelled: {domain.AppointmentStatusCancelled},
		domain.AppointmentStatusNoShow:    {domain.AppointmentStatusConfirmed, domain.AppointmentStatusNoShow},
	}
	all := []domain.AppointmentStatus{
		domain.AppointmentStatusPending,
		domain.AppointmentStatusConfirmed,
		domain.AppointmentStatusInProgress,
		domain.AppointmentStatusCompleted,
		domain.AppointmentStatusCancelled,
		domain.AppointmentStatusNoShow,
	}
	for terminal, path := range paths {
		t.Run(string(terminal), func(t *testing.T) {
			b := newBookingFixture(t)
			ctx := context.Background()
			appointment, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
			require.NoError(t, err)
			for _, next := range path {
				_, err = b.scheduling.UpdateAppointmentStatus(ctx, appointment.ID, next, "")
				require.NoError(t, err)
			}
			for _, next := range all {
				_, err := b.scheduling.UpdateAppointmentStatus(ctx, appointment.ID, next, "")
				assertCode(t, err, apperrors.CodeInvalidTransition)
			}
		})
	}
}

func TestUpdateAppointmentStatusValidation(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	_, err := b.scheduling.UpdateAppointmentStatus(ctx, "missing", domain.AppointmentStatusConfirmed, "")
	assertCode(t, err, apperrors.CodeNotFound)

	appointment, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)
	_, err = b.scheduling.UpdateAppointmentStatus(ctx, appointment.ID, domain.AppointmentStatus("LATE"), "")
	assertCode(t, err, apperrors.CodeValidation)
	_, err = b.scheduling.UpdateAppointmentStatus(ctx, appointment.ID, domain.AppointmentStatusCompleted, "")
	assertCode(t, err, apperrors.CodeInvalidTransition)
}

func TestListTechnicianAppointmentsWindow(t *testing.T) {
	b := newBookingFixture(t)
	ctx := context.Background()

	_, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)
	_, err = b.book(tomorrow(13, 0), tomorrow(14, 0))
	require.NoError(t, err)

	morning, err := b.scheduling.ListTechnicianAppointments(ctx, b.tech.ID, tomorrow(8, 0), tomorrow(12, 0))
	require.NoError(t, err)
	require.Len(t, morning, 1)
	assert.True(t, morning[0].StartTime.Equal(tomorrow(9, 0)))

	_, err = b.scheduling.ListTechnicianAppointments(ctx, b.tech.ID, tomorrow(12, 0), tomorrow(8, 0))
	assertCode(t, err, apperrors.CodeValidation)

	_, err = b.scheduling.ListTechnicianAppointments(ctx, "missing", tomorrow(8, 0), tomorrow(12, 0))
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestOperationsAreCountedByOutcome(t *testing.T) {
	b := newBookingFixture(t)

	_, err := b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.NoError(t, err)
	_, err = b.book(tomorrow(9, 0), tomorrow(10, 0))
	require.Error(t, err)

	ops := b.metrics.Snapshot().Operations
	assert.Equal(t, int64(1), ops["create_appointment|ok"])
	assert.Equal(t, int64(1), ops["create_appointment|"+apperrors.CodeInvalidState])
}
