package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// CreateAppointmentInput describes a booking request.
type CreateAppointmentInput struct {
	TechnicianID string
	TicketID     string
	StartTime    time.Time
	EndTime      time.Time
}

// CreateAppointment books a PENDING appointment for an active technician on
// an open ticket. The conflict check and the insert share one transaction.
func (s *SchedulingService) CreateAppointment(ctx context.Context, input CreateAppointmentInput, actor string) (*domain.Appointment, error) {
	var created *domain.Appointment
	err := s.run.inTx(ctx, "create_appointment", func(ctx context.Context, uow *unitOfWork) error {
		if err := s.appointments.ValidateWindow(input.StartTime, input.EndTime); err != nil {
			return err
		}
		technician, err := loadTechnician(ctx, uow.Repositories, input.TechnicianID)
		if err != nil {
			return err
		}
		if err := s.appointments.CheckTechnician(technician); err != nil {
			return err
		}
		ticket, err := loadTicket(ctx, uow.Repositories, input.TicketID)
		if err != nil {
			return err
		}
		if err := s.appointments.CheckTicket(ticket); err != nil {
			return err
		}

		conflicts, err := s.conflicts.FindConflicts(ctx, uow.Appointments, technician.ID,
			input.StartTime, input.EndTime, domain.ConflictExcludedStatuses())
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			ids := make([]string, len(conflicts))
			for i, c := range conflicts {
				ids[i] = c.ID
			}
			return apperrors.NewInvalidState("technician has a conflicting appointment", map[string]any{
				"technician_id":   technician.ID,
				"conflicting_ids": ids,
			})
		}

		appointment := s.appointments.New(uuid.NewString(), technician.ID, ticket.ID, input.StartTime, input.EndTime)
		if err := uow.Appointments.Create(ctx, appointment); err != nil {
			return err
		}
		description := fmt.Sprintf("Appointment scheduled with %s from %s to %s",
			technician.Name, appointment.StartTime.UTC().Format(time.RFC3339), appointment.EndTime.UTC().Format(time.RFC3339))
		if err := uow.appendHistory(ctx, ticket, description, actor); err != nil {
			return err
		}
		uow.emit(events.EventAppointmentCreated, appointment.ID, actor, events.AppointmentCreatedPayload{
			TechnicianID: appointment.TechnicianID,
			TicketID:     appointment.TicketID,
			StartTime:    appointment.StartTime,
			EndTime:      appointment.EndTime,
		})
		created = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAppointment returns one appointment.
func (s *SchedulingService) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	var appointment *domain.Appointment
	err := s.run.inTx(ctx, "get_appointment", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		appointment, err = loadAppointment(ctx, uow.Repositories, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// UpdateAppointmentStatus moves an appointment along its state machine.
func (s *SchedulingService) UpdateAppointmentStatus(ctx context.Context, id string, next domain.AppointmentStatus, actor string) (*domain.Appointment, error) {
	return s.changeAppointment(ctx, "update_appointment_status", id, actor, "", func(appointment *domain.Appointment) error {
		return s.appointments.Transition(appointment, next)
	})
}

// CancelAppointment cancels an appointment and records why.
func (s *SchedulingService) CancelAppointment(ctx context.Context, id, reason, actor string) (*domain.Appointment, error) {
	reason = strings.TrimSpace(reason)
	return s.changeAppointment(ctx, "cancel_appointment", id, actor, reason, func(appointment *domain.Appointment) error {
		return s.appointments.Cancel(appointment, reason)
	})
}

func (s *SchedulingService) changeAppointment(ctx context.Context, operation, id, actor, reason string, apply func(*domain.Appointment) error) (*domain.Appointment, error) {
	var updated *domain.Appointment
	err := s.run.inTx(ctx, operation, func(ctx context.Context, uow *unitOfWork) error {
		appointment, err := loadAppointment(ctx, uow.Repositories, id)
		if err != nil {
			return err
		}
		previous := appointment.Status
		if err := apply(appointment); err != nil {
			return err
		}
		if err := uow.Appointments.Update(ctx, appointment); err != nil {
			return err
		}
		ticket, err := loadTicket(ctx, uow.Repositories, appointment.TicketID)
		if err != nil {
			return err
		}
		description := withReason(fmt.Sprintf("Appointment status changed from %s to %s.", previous, appointment.Status), reason)
		if err := uow.appendHistory(ctx, ticket, description, actor); err != nil {
			return err
		}
		uow.emit(events.EventAppointmentStatusChanged, appointment.ID, actor, events.AppointmentStatusChangedPayload{
			TicketID:  appointment.TicketID,
			OldStatus: previous,
			NewStatus: appointment.Status,
			Reason:    reason,
		})
		updated = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListTechnicianAppointments returns the technician's appointments that
// overlap [from,to), cancelled ones included.
func (s *SchedulingService) ListTechnicianAppointments(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Appointment, error) {
	if !to.After(from) {
		return nil, apperrors.NewValidationError("window end must be after window start", map[string]any{"from": from, "to": to})
	}
	var out []domain.Appointment
	err := s.run.inTx(ctx, "list_technician_appointments", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadTechnician(ctx, uow.Repositories, technicianID); err != nil {
			return err
		}
		var err error
		out, err = uow.Appointments.ListByTechnician(ctx, technicianID, from, to)
		return err
	})
	return out, err
}

// ListTicketAppointments returns every appointment booked for a ticket.
func (s *SchedulingService) ListTicketAppointments(ctx context.Context, ticketID string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := s.run.inTx(ctx, "list_ticket_appointments", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadTicket(ctx, uow.Repositories, ticketID); err != nil {
			return err
		}
		var err error
		out, err = uow.Appointments.ListByTicket(ctx, ticketID)
		return err
	})
	return out, err
}
