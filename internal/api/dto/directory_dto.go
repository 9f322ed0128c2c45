package dto

import (
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	Name   string               `json:"name"`
	Email  string               `json:"email"`
	Skills []domain.ServiceType `json:"skills"`
}

// UpdateTechnicianStatusRequest payload.
type UpdateTechnicianStatusRequest struct {
	Status domain.TechnicianStatus `json:"status"`
}

// AddSkillRequest payload.
type AddSkillRequest struct {
	ServiceType domain.ServiceType `json:"service_type"`
}

// TechnicianResponse representation.
type TechnicianResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	Status    domain.TechnicianStatus `json:"status"`
	Skills    []domain.ServiceType    `json:"skills"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// TechnicianLoadResponse pairs a technician with their open ticket count.
type TechnicianLoadResponse struct {
	Technician  TechnicianResponse `json:"technician"`
	OpenTickets int                `json:"open_tickets"`
}

// CreateClientRequest payload.
type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateClientStatusRequest payload.
type UpdateClientStatusRequest struct {
	Status domain.ClientStatus `json:"status"`
}

// ClientResponse representation.
type ClientResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Phone     string              `json:"phone,omitempty"`
	Status    domain.ClientStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
