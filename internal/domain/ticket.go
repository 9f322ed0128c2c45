package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	return s == TicketStatusOpen || s == TicketStatusClosed
}

// IsTerminal reports whether no further transition leaves s.
func (s TicketStatus) IsTerminal() bool {
	return len(ticketTransitions[s]) == 0
}

var ticketTransitions = map[TicketStatus]map[TicketStatus]struct{}{
	TicketStatusOpen:   {TicketStatusClosed: {}},
	TicketStatusClosed: {},
}

// CanTransitionTicket reports whether a ticket may move from one status to
// another. Re-applying the current status is always allowed.
func CanTransitionTicket(from, to TicketStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	_, ok := ticketTransitions[from][to]
	return ok
}

// ServiceType is the kind of work a ticket asks for.
type ServiceType string

const (
	ServiceTypeHardware ServiceType = "HARDWARE"
	ServiceTypeSoftware ServiceType = "SOFTWARE"
)

var serviceLevels = map[ServiceType]time.Duration{
	ServiceTypeHardware: 24 * time.Hour,
	ServiceTypeSoftware: 48 * time.Hour,
}

// Valid reports whether t has a resolution SLA.
func (t ServiceType) Valid() bool {
	_, ok := serviceLevels[t]
	return ok
}

// SLA returns the resolution window for the service type.
func (t ServiceType) SLA() (time.Duration, bool) {
	d, ok := serviceLevels[t]
	return d, ok
}

// Ticket is the aggregate for a support request.
type Ticket struct {
	ID                   string
	ClientID             *string
	ServiceType          ServiceType
	Description          string
	Status               TicketStatus
	AssignedTechnicianID *string
	CreatedAt            time.Time
	DueAt                time.Time
	UpdatedAt            time.Time
	ClosedAt             *time.Time
}

// IsClosed reports whether the ticket is in its terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

// IsOverdue reports whether an open ticket has passed its due time.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.Status == TicketStatusOpen && now.After(t.DueAt)
}
