package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techsupport-scheduler/internal/api/dto"
	"github.com/spec-kit/techsupport-scheduler/internal/auth"
	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/service"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.SchedulingService
	clock   clock.Clock
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(scheduling *service.SchedulingService, c clock.Clock) *TicketsHandler {
	return &TicketsHandler{service: scheduling, clock: c}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" {
		return apperrors.NewValidationError("client_id required", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.CreateTicketInput{
		ClientID:    req.ClientID,
		ServiceType: req.ServiceType,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket, h.clock.Now())})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, h.clock.Now())})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.ListTicketHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyList(entries)})
}

// Appointments GET /tickets/:id/appointments.
func (h *TicketsHandler) Appointments(c *fiber.Ctx) error {
	appointments, err := h.service.ListTicketAppointments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentList(appointments)})
}

// Overdue GET /tickets/overdue.
func (h *TicketsHandler) Overdue(c *fiber.Ctx) error {
	tickets, err := h.service.ListOverdueTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets, h.clock.Now())})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	ticket, err := h.service.AssignTechnician(c.UserContext(), c.Params("id"), req.TechnicianID, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, h.clock.Now())})
}

// AutoAssign POST /tickets/:id/auto-assign.
func (h *TicketsHandler) AutoAssign(c *fiber.Ctx) error {
	ticket, technician, err := h.service.AutoAssignTechnician(c.UserContext(), c.Params("id"), auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AutoAssignResponse{
		Ticket:     ticketResponse(ticket, h.clock.Now()),
		Technician: technicianResponse(technician),
	}})
}

// Unassign POST /tickets/:id/unassign.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	var req dto.UnassignTechnicianRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.service.UnassignTechnician(c.UserContext(), c.Params("id"), req.Reason, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, h.clock.Now())})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CloseTicket(c.UserContext(), c.Params("id"), req.ResolutionNotes, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, h.clock.Now())})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicketStatus(c.UserContext(), c.Params("id"), req.Status, req.Reason, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, h.clock.Now())})
}
