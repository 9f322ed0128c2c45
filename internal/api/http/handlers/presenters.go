package handlers

import (
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/api/dto"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/service"
)

func technicianResponse(t *domain.Technician) dto.TechnicianResponse {
	skills := make([]domain.ServiceType, 0, len(t.Skills))
	for _, skill := range t.Skills {
		skills = append(skills, skill.ServiceType)
	}
	return dto.TechnicianResponse{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Status:    t.Status,
		Skills:    skills,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func technicianLoads(loads []service.TechnicianLoad) []dto.TechnicianLoadResponse {
	items := make([]dto.TechnicianLoadResponse, 0, len(loads))
	for i := range loads {
		items = append(items, dto.TechnicianLoadResponse{
			Technician:  technicianResponse(&loads[i].Technician),
			OpenTickets: loads[i].OpenTickets,
		})
	}
	return items
}

func clientResponse(c *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ticketResponse(t *domain.Ticket, now time.Time) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                   t.ID,
		ClientID:             t.ClientID,
		ServiceType:          t.ServiceType,
		Description:          t.Description,
		Status:               t.Status,
		AssignedTechnicianID: t.AssignedTechnicianID,
		Overdue:              t.IsOverdue(now),
		CreatedAt:            t.CreatedAt,
		DueAt:                t.DueAt,
		UpdatedAt:            t.UpdatedAt,
		ClosedAt:             t.ClosedAt,
	}
}

func ticketList(tickets []domain.Ticket, now time.Time) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i], now))
	}
	return items
}

func historyList(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:          entry.ID,
			Status:      entry.Status,
			Description: entry.Description,
			Actor:       entry.Actor,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return items
}

func appointmentResponse(a *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:                 a.ID,
		TechnicianID:       a.TechnicianID,
		TicketID:           a.TicketID,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             a.Status,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func appointmentList(appointments []domain.Appointment) []dto.AppointmentResponse {
	items := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		items = append(items, appointmentResponse(&appointments[i]))
	}
	return items
}
