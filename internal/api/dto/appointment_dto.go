package dto

import (
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// CreateAppointmentRequest payload. Missing times decode to the zero value
// and are rejected by validation.
type CreateAppointmentRequest struct {
	TechnicianID string    `json:"technician_id"`
	TicketID     string    `json:"ticket_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// UpdateAppointmentStatusRequest payload.
type UpdateAppointmentStatusRequest struct {
	Status domain.AppointmentStatus `json:"status"`
}

// CancelAppointmentRequest payload.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// AppointmentResponse representation.
type AppointmentResponse struct {
	ID                 string                   `json:"id"`
	TechnicianID       string                   `json:"technician_id"`
	TicketID           string                   `json:"ticket_id"`
	StartTime          time.Time                `json:"start_time"`
	EndTime            time.Time                `json:"end_time"`
	Status             domain.AppointmentStatus `json:"status"`
	CancellationReason string                   `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// WorkloadResponse representation.
type WorkloadResponse struct {
	TechnicianID string    `json:"technician_id"`
	OpenTickets  int       `json:"open_tickets"`
	Appointments int       `json:"appointments"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
}
