package service

import (
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// AppointmentLifecycle holds the booking rules and the appointment state machine.
type AppointmentLifecycle struct {
	clock clock.Clock
}

// NewAppointmentLifecycle constructs the lifecycle with its time source.
func NewAppointmentLifecycle(c clock.Clock) *AppointmentLifecycle {
	return &AppointmentLifecycle{clock: c}
}

// ValidateWindow checks that a requested window is well formed, not in the
// past and within the allowed duration.
func (l *AppointmentLifecycle) ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.NewValidationError("start and end time are required", nil)
	}
	if !end.After(start) {
		return apperrors.NewValidationError("end time must be after start time", map[string]any{
			"start_time": start, "end_time": end,
		})
	}
	if start.Before(l.clock.Now()) {
		return apperrors.NewValidationError("cannot schedule an appointment in the past", map[string]any{
			"start_time": start,
		})
	}
	duration := end.Sub(start)
	if duration < domain.MinAppointmentDuration || duration > domain.MaxAppointmentDuration {
		return apperrors.NewValidationError("appointment duration must be between 30 minutes and 8 hours", map[string]any{
			"duration_minutes": int(duration / time.Minute),
		})
	}
	return nil
}

// CheckTechnician rejects technicians who cannot take new appointments.
func (l *AppointmentLifecycle) CheckTechnician(technician *domain.Technician) error {
	if !technician.IsActive() {
		return apperrors.NewInvalidState("technician is not active", map[string]any{
			"technician_id": technician.ID, "status": technician.Status,
		})
	}
	return nil
}

// CheckTicket rejects tickets that cannot take new appointments.
func (l *AppointmentLifecycle) CheckTicket(ticket *domain.Ticket) error {
	if ticket.IsClosed() {
		return apperrors.NewInvalidState("cannot schedule an appointment for a closed ticket", map[string]any{
			"ticket_id": ticket.ID,
		})
	}
	return nil
}

// New builds a PENDING appointment.
func (l *AppointmentLifecycle) New(id, technicianID, ticketID string, start, end time.Time) *domain.Appointment {
	now := l.clock.Now()
	return &domain.Appointment{
		ID:           id,
		TechnicianID: technicianID,
		TicketID:     ticketID,
		StartTime:    start,
		EndTime:      end,
		Status:       domain.AppointmentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Transition moves the appointment to next if the transition table allows it.
func (l *AppointmentLifecycle) Transition(appointment *domain.Appointment, next domain.AppointmentStatus) error {
	if !next.Valid() {
		return apperrors.NewValidationError("unknown appointment status", map[string]any{"status": next})
	}
	if !domain.CanTransitionAppointment(appointment.Status, next) {
		return apperrors.NewInvalidTransition(string(appointment.Status), string(next))
	}
	appointment.Status = next
	appointment.UpdatedAt = l.clock.Now()
	return nil
}

// Cancel cancels the appointment and records the reason.
func (l *AppointmentLifecycle) Cancel(appointment *domain.Appointment, reason string) error {
	switch appointment.Status {
	case domain.AppointmentStatusCompleted:
		return apperrors.NewInvalidState("cannot cancel a completed appointment", map[string]any{"appointment_id": appointment.ID})
	case domain.AppointmentStatusCancelled:
		return apperrors.NewInvalidState("appointment already cancelled", map[string]any{"appointment_id": appointment.ID})
	}
	if err := l.Transition(appointment, domain.AppointmentStatusCancelled); err != nil {
		return err
	}
	appointment.CancellationReason = reason
	return nil
}
