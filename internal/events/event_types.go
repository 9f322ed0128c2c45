package events

import (
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentCreated       EventType = "appointment_created"
	EventAppointmentStatusChanged EventType = "appointment_status_changed"
	EventTicketCreated            EventType = "ticket_created"
	EventTicketAssigned           EventType = "ticket_assigned"
	EventTicketUnassigned         EventType = "ticket_unassigned"
	EventTicketStatusChanged      EventType = "ticket_status_changed"
	EventTechnicianStatusChanged  EventType = "technician_status_changed"
	EventClientStatusChanged      EventType = "client_status_changed"
)

// Event represents a domain event emitted after a unit of work commits.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	Actor       string      `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// AppointmentCreatedPayload payload.
type AppointmentCreatedPayload struct {
	TechnicianID string    `json:"technician_id"`
	TicketID     string    `json:"ticket_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// AppointmentStatusChangedPayload payload.
type AppointmentStatusChangedPayload struct {
	TicketID  string                   `json:"ticket_id"`
	OldStatus domain.AppointmentStatus `json:"old_status"`
	NewStatus domain.AppointmentStatus `json:"new_status"`
	Reason    string                   `json:"reason,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ClientID    string             `json:"client_id"`
	ServiceType domain.ServiceType `json:"service_type"`
	DueAt       time.Time          `json:"due_at"`
}

// TicketAssignmentPayload payload for assign and unassign events.
type TicketAssignmentPayload struct {
	TechnicianID string `json:"technician_id"`
	Reason       string `json:"reason,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// StatusChangedPayload payload for technician and client status changes.
type StatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
