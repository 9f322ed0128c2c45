package domain

import "time"

// TechnicianStatus enumerates employment states for a technician.
type TechnicianStatus string

const (
	TechnicianStatusActive     TechnicianStatus = "ACTIVE"
	TechnicianStatusInactive   TechnicianStatus = "INACTIVE"
	TechnicianStatusInTraining TechnicianStatus = "IN_TRAINING"
	TechnicianStatusOnVacation TechnicianStatus = "ON_VACATION"
	TechnicianStatusTerminated TechnicianStatus = "TERMINATED"
)

// Valid reports whether s is a known technician status.
func (s TechnicianStatus) Valid() bool {
	switch s {
	case TechnicianStatusActive, TechnicianStatusInactive, TechnicianStatusInTraining,
		TechnicianStatusOnVacation, TechnicianStatusTerminated:
		return true
	}
	return false
}

// TechnicianSkill links a technician to a service type they can handle.
type TechnicianSkill struct {
	TechnicianID string
	ServiceType  ServiceType
	CreatedAt    time.Time
}

// Technician is a field or bench engineer who can be booked for tickets.
// Assigned tickets are referenced from Ticket.AssignedTechnicianID.
type Technician struct {
	ID        string
	Name      string
	Email     string
	Status    TechnicianStatus
	Skills    []TechnicianSkill
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the technician may take new work.
func (t *Technician) IsActive() bool {
	return t.Status == TechnicianStatusActive
}

// HasSkill reports whether the technician is qualified for serviceType.
func (t *Technician) HasSkill(serviceType ServiceType) bool {
	for _, skill := range t.Skills {
		if skill.ServiceType == serviceType {
			return true
		}
	}
	return false
}
