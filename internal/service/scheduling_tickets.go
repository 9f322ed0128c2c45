package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// CreateTicketInput describes a new support request.
type CreateTicketInput struct {
	ClientID    string
	ServiceType domain.ServiceType
	Description string
}

// Workload summarises a technician's open tickets and booked time.
type Workload struct {
	TechnicianID string
	OpenTickets  int
	Appointments int
	From         time.Time
	To           time.Time
}

// CreateTicket opens a ticket for an active client. The creation entry in the
// history is always attributed to the system.
func (s *SchedulingService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	var created *domain.Ticket
	err := s.run.inTx(ctx, "create_ticket", func(ctx context.Context, uow *unitOfWork) error {
		client, err := loadClient(ctx, uow.Repositories, input.ClientID)
		if err != nil {
			return err
		}
		ticket, err := s.tickets.Open(uuid.NewString(), client, input.ServiceType, input.Description)
		if err != nil {
			return err
		}
		if err := uow.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if err := uow.appendHistory(ctx, ticket, historyCreated(), domain.ActorSystem); err != nil {
			return err
		}
		uow.emit(events.EventTicketCreated, ticket.ID, domain.ActorSystem, events.TicketCreatedPayload{
			ClientID:    client.ID,
			ServiceType: ticket.ServiceType,
			DueAt:       ticket.DueAt,
		})
		created = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetTicket returns one ticket.
func (s *SchedulingService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.run.inTx(ctx, "get_ticket", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		ticket, err = loadTicket(ctx, uow.Repositories, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTicketHistory returns the audit trail of a ticket, oldest first.
func (s *SchedulingService) ListTicketHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	err := s.run.inTx(ctx, "list_ticket_history", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadTicket(ctx, uow.Repositories, ticketID); err != nil {
			return err
		}
		var err error
		out, err = uow.History.ListByTicket(ctx, ticketID)
		return err
	})
	return out, err
}

// ListOverdueTickets returns OPEN tickets whose due time has passed.
func (s *SchedulingService) ListOverdueTickets(ctx context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := s.run.inTx(ctx, "list_overdue_tickets", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		out, err = uow.Tickets.ListOverdue(ctx, uow.now)
		return err
	})
	return out, err
}

// ListTechnicianTickets returns the technician's assigned tickets in status,
// earliest due first. An empty status lists OPEN tickets.
func (s *SchedulingService) ListTechnicianTickets(ctx context.Context, technicianID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	if status == "" {
		status = domain.TicketStatusOpen
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	var out []domain.Ticket
	err := s.run.inTx(ctx, "list_technician_tickets", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadTechnician(ctx, uow.Repositories, technicianID); err != nil {
			return err
		}
		var err error
		out, err = uow.Tickets.ListByAssignedTechnicianAndStatus(ctx, technicianID, status)
		return err
	})
	return out, err
}

// ListClientTickets returns every ticket of a client, oldest first.
func (s *SchedulingService) ListClientTickets(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := s.run.inTx(ctx, "list_client_tickets", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadClient(ctx, uow.Repositories, clientID); err != nil {
			return err
		}
		var err error
		out, err = uow.Tickets.ListByClient(ctx, clientID)
		return err
	})
	return out, err
}

// AssignTechnician assigns an active technician to an open ticket.
func (s *SchedulingService) AssignTechnician(ctx context.Context, ticketID, technicianID, actor string) (*domain.Ticket, error) {
	var updated *domain.Ticket
	err := s.run.inTx(ctx, "assign_technician", func(ctx context.Context, uow *unitOfWork) error {
		ticket, err := loadTicket(ctx, uow.Repositories, ticketID)
		if err != nil {
			return err
		}
		if err := s.tickets.CheckAssignable(ticket); err != nil {
			return err
		}
		technician, err := loadTechnician(ctx, uow.Repositories, technicianID)
		if err != nil {
			return err
		}
		if err := s.assign(ctx, uow, ticket, technician, actor, ""); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AutoAssignTechnician assigns the least loaded qualified technician.
func (s *SchedulingService) AutoAssignTechnician(ctx context.Context, ticketID, actor string) (*domain.Ticket, *domain.Technician, error) {
	var (
		updated *domain.Ticket
		chosen  *domain.Technician
	)
	err := s.run.inTx(ctx, "auto_assign_technician", func(ctx context.Context, uow *unitOfWork) error {
		ticket, err := loadTicket(ctx, uow.Repositories, ticketID)
		if err != nil {
			return err
		}
		if err := s.tickets.CheckAssignable(ticket); err != nil {
			return err
		}
		technician, err := s.matcher.FindBestForServiceType(ctx, uow.Repositories, ticket.ServiceType)
		if err != nil {
			return err
		}
		if technician == nil {
			return apperrors.NewInvalidState("no qualified active technician available", map[string]any{
				"ticket_id": ticket.ID, "service_type": ticket.ServiceType,
			})
		}
		if err := s.assign(ctx, uow, ticket, technician, actor, "automatic assignment"); err != nil {
			return err
		}
		updated, chosen = ticket, technician
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, chosen, nil
}

func (s *SchedulingService) assign(ctx context.Context, uow *unitOfWork, ticket *domain.Ticket, technician *domain.Technician, actor, reason string) error {
	if err := s.tickets.Assign(ticket, technician); err != nil {
		return err
	}
	if err := uow.Tickets.Update(ctx, ticket); err != nil {
		return err
	}
	if err := uow.appendHistory(ctx, ticket, historyAssigned(technician.Name), actor); err != nil {
		return err
	}
	uow.emit(events.EventTicketAssigned, ticket.ID, actor, events.TicketAssignmentPayload{
		TechnicianID: technician.ID,
		Reason:       reason,
	})
	return nil
}

// UnassignTechnician clears the ticket's technician.
func (s *SchedulingService) UnassignTechnician(ctx context.Context, ticketID, reason, actor string) (*domain.Ticket, error) {
	var updated *domain.Ticket
	err := s.run.inTx(ctx, "unassign_technician", func(ctx context.Context, uow *unitOfWork) error {
		ticket, err := loadTicket(ctx, uow.Repositories, ticketID)
		if err != nil {
			return err
		}
		previous, err := s.tickets.Unassign(ticket)
		if err != nil {
			return err
		}
		name := previous
		technician, err := uow.Technicians.GetByID(ctx, previous)
		switch {
		case err == nil:
			name = technician.Name
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		if err := uow.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if err := uow.appendHistory(ctx, ticket, historyUnassigned(name, reason), actor); err != nil {
			return err
		}
		uow.emit(events.EventTicketUnassigned, ticket.ID, actor, events.TicketAssignmentPayload{
			TechnicianID: previous,
			Reason:       strings.TrimSpace(reason),
		})
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CloseTicket resolves an OPEN ticket.
func (s *SchedulingService) CloseTicket(ctx context.Context, ticketID, resolutionNotes, closedBy string) (*domain.Ticket, error) {
	var updated *domain.Ticket
	err := s.run.inTx(ctx, "close_ticket", func(ctx context.Context, uow *unitOfWork) error {
		ticket, err := loadTicket(ctx, uow.Repositories, ticketID)
		if err != nil {
			return err
		}
		previous := ticket.Status
		if err := s.tickets.Close(ticket); err != nil {
			return err
		}
		if err := uow.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if err := uow.appendHistory(ctx, ticket, historyClosed(resolutionNotes), closedBy); err != nil {
			return err
		}
		uow.emit(events.EventTicketStatusChanged, ticket.ID, closedBy, events.TicketStatusChangedPayload{
			OldStatus: previous,
			NewStatus: ticket.Status,
			Comment:   strings.TrimSpace(resolutionNotes),
		})
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateTicketStatus applies a status change. Re-applying the current status
// succeeds and still records one history entry.
func (s *SchedulingService) UpdateTicketStatus(ctx context.Context, ticketID string, next domain.TicketStatus, reason, actor string) (*domain.Ticket, error) {
	var updated *domain.Ticket
	err := s.run.inTx(ctx, "update_ticket_status", func(ctx context.Context, uow *unitOfWork) error {
		ticket, err := loadTicket(ctx, uow.Repositories, ticketID)
		if err != nil {
			return err
		}
		previous, err := s.tickets.ChangeStatus(ticket, next)
		if err != nil {
			return err
		}
		if previous != next {
			if err := uow.Tickets.Update(ctx, ticket); err != nil {
				return err
			}
			uow.emit(events.EventTicketStatusChanged, ticket.ID, actor, events.TicketStatusChangedPayload{
				OldStatus: previous,
				NewStatus: next,
				Comment:   strings.TrimSpace(reason),
			})
		}
		if err := uow.appendHistory(ctx, ticket, historyStatusChanged(previous, next, reason), actor); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindBestTechnician returns the least loaded qualified active technician,
// or nil when there is none.
func (s *SchedulingService) FindBestTechnician(ctx context.Context, serviceType domain.ServiceType) (*domain.Technician, error) {
	var best *domain.Technician
	err := s.run.inTx(ctx, "find_best_technician", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		best, err = s.matcher.FindBestForServiceType(ctx, uow.Repositories, serviceType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return best, nil
}

// FindAvailableTechnicians lists technicians in status with at most maxLoad
// open tickets. A nil maxLoad uses the configured default.
func (s *SchedulingService) FindAvailableTechnicians(ctx context.Context, status domain.TechnicianStatus, maxLoad *int) ([]TechnicianLoad, error) {
	if status == "" {
		status = domain.TechnicianStatusActive
	}
	limit := s.defaultMaxLoad
	if maxLoad != nil {
		limit = *maxLoad
	}
	var out []TechnicianLoad
	err := s.run.inTx(ctx, "find_available_technicians", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		out, err = s.matcher.FindAvailable(ctx, uow.Repositories, status, limit)
		return err
	})
	return out, err
}

// TechnicianWorkload reports open tickets and the number of live
// appointments overlapping [from,to).
func (s *SchedulingService) TechnicianWorkload(ctx context.Context, technicianID string, from, to time.Time) (*Workload, error) {
	if !to.After(from) {
		return nil, apperrors.NewValidationError("window end must be after window start", map[string]any{"from": from, "to": to})
	}
	var workload *Workload
	err := s.run.inTx(ctx, "technician_workload", func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadTechnician(ctx, uow.Repositories, technicianID); err != nil {
			return err
		}
		open, err := s.matcher.CurrentLoad(ctx, uow.Tickets, technicianID)
		if err != nil {
			return err
		}
		booked, err := uow.Appointments.CountByTechnicianInWindow(ctx, technicianID, from, to, domain.ConflictExcludedStatuses())
		if err != nil {
			return err
		}
		workload = &Workload{TechnicianID: technicianID, OpenTickets: open, Appointments: booked, From: from, To: to}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workload, nil
}
