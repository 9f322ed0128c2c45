package dto

import (
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ClientID    string             `json:"client_id"`
	ServiceType domain.ServiceType `json:"service_type"`
	Description string             `json:"description"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID string `json:"technician_id"`
}

// UnassignTechnicianRequest payload.
type UnassignTechnicianRequest struct {
	Reason string `json:"reason"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	ResolutionNotes string `json:"resolution_notes"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Reason string              `json:"reason"`
}

// TicketResponse representation.
type TicketResponse struct {
	ID                   string              `json:"id"`
	ClientID             *string             `json:"client_id"`
	ServiceType          domain.ServiceType  `json:"service_type"`
	Description          string              `json:"description"`
	Status               domain.TicketStatus `json:"status"`
	AssignedTechnicianID *string             `json:"assigned_technician_id"`
	Overdue              bool                `json:"overdue"`
	CreatedAt            time.Time           `json:"created_at"`
	DueAt                time.Time           `json:"due_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	ClosedAt             *time.Time          `json:"closed_at"`
}

// AutoAssignResponse reports the ticket and the technician chosen for it.
type AutoAssignResponse struct {
	Ticket     TicketResponse     `json:"ticket"`
	Technician TechnicianResponse `json:"technician"`
}

// TicketHistoryResponse entry.
type TicketHistoryResponse struct {
	ID          string              `json:"id"`
	Status      domain.TicketStatus `json:"status"`
	Description string              `json:"description"`
	Actor       string              `json:"actor"`
	CreatedAt   time.Time           `json:"created_at"`
}
