package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// TicketLifecycle holds ticket state rules and the wording of their history entries.
type TicketLifecycle struct {
	clock clock.Clock
}

// NewTicketLifecycle constructs the lifecycle with its time source.
func NewTicketLifecycle(c clock.Clock) *TicketLifecycle {
	return &TicketLifecycle{clock: c}
}

// Open builds an OPEN ticket for an active client. The due time is fixed here
// and never recomputed.
func (l *TicketLifecycle) Open(id string, client *domain.Client, serviceType domain.ServiceType, description string) (*domain.Ticket, error) {
	if !client.IsActive() {
		return nil, apperrors.NewInvalidState("client is not active", map[string]any{
			"client_id": client.ID, "status": client.Status,
		})
	}
	sla, ok := serviceType.SLA()
	if !ok {
		return nil, apperrors.NewValidationError("unknown service type", map[string]any{"service_type": serviceType})
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	now := l.clock.Now()
	clientID := client.ID
	return &domain.Ticket{
		ID:          id,
		ClientID:    &clientID,
		ServiceType: serviceType,
		Description: description,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   now,
		DueAt:       now.Add(sla),
		UpdatedAt:   now,
	}, nil
}

// CheckAssignable rejects tickets that cannot take a technician.
func (l *TicketLifecycle) CheckAssignable(ticket *domain.Ticket) error {
	if ticket.IsClosed() {
		return apperrors.NewInvalidState("cannot assign a closed ticket", map[string]any{"ticket_id": ticket.ID})
	}
	return nil
}

// Assign points the ticket at an active technician.
func (l *TicketLifecycle) Assign(ticket *domain.Ticket, technician *domain.Technician) error {
	if err := l.CheckAssignable(ticket); err != nil {
		return err
	}
	if !technician.IsActive() {
		return apperrors.NewInvalidState("technician is not active", map[string]any{
			"technician_id": technician.ID, "status": technician.Status,
		})
	}
	id := technician.ID
	ticket.AssignedTechnicianID = &id
	ticket.UpdatedAt = l.clock.Now()
	return nil
}

// Unassign clears the assignment and returns the previous technician id.
func (l *TicketLifecycle) Unassign(ticket *domain.Ticket) (string, error) {
	if ticket.AssignedTechnicianID == nil {
		return "", apperrors.NewInvalidState("ticket has no assigned technician", map[string]any{"ticket_id": ticket.ID})
	}
	previous := *ticket.AssignedTechnicianID
	ticket.AssignedTechnicianID = nil
	ticket.UpdatedAt = l.clock.Now()
	return previous, nil
}

// Close resolves an OPEN ticket.
func (l *TicketLifecycle) Close(ticket *domain.Ticket) error {
	if ticket.Status != domain.TicketStatusOpen {
		return apperrors.NewInvalidState("only open tickets can be closed", map[string]any{
			"ticket_id": ticket.ID, "status": ticket.Status,
		})
	}
	l.apply(ticket, domain.TicketStatusClosed)
	return nil
}

// ChangeStatus applies next if the transition table allows it and returns the
// previous status. Re-applying the current status succeeds without changes.
func (l *TicketLifecycle) ChangeStatus(ticket *domain.Ticket, next domain.TicketStatus) (domain.TicketStatus, error) {
	if !next.Valid() {
		return "", apperrors.NewValidationError("unknown ticket status", map[string]any{"status": next})
	}
	previous := ticket.Status
	if !domain.CanTransitionTicket(previous, next) {
		return "", apperrors.NewInvalidTransition(string(previous), string(next))
	}
	if previous != next {
		l.apply(ticket, next)
	}
	return previous, nil
}

func (l *TicketLifecycle) apply(ticket *domain.Ticket, next domain.TicketStatus) {
	now := l.clock.Now()
	ticket.Status = next
	ticket.UpdatedAt = now
	if next == domain.TicketStatusClosed {
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}
}

func historyCreated() string {
	return "Ticket created"
}

func historyAssigned(technicianName string) string {
	return "Assigned to technician: " + technicianName
}

func historyUnassigned(technicianName, reason string) string {
	return withReason("Unassigned from technician: "+technicianName+".", reason)
}

func historyClosed(notes string) string {
	return "Ticket closed. Resolution: " + strings.TrimSpace(notes)
}

func historyStatusChanged(from, to domain.TicketStatus, reason string) string {
	return withReason(fmt.Sprintf("Status changed from %s to %s.", from, to), reason)
}

func withReason(text, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return text
	}
	return text + " " + reason
}
