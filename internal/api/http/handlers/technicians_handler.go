package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techsupport-scheduler/internal/api/dto"
	"github.com/spec-kit/techsupport-scheduler/internal/auth"
	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/service"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// TechniciansHandler manages technician directory and matching endpoints.
type TechniciansHandler struct {
	directory  *service.DirectoryService
	scheduling *service.SchedulingService
	clock      clock.Clock
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(directory *service.DirectoryService, scheduling *service.SchedulingService, c clock.Clock) *TechniciansHandler {
	return &TechniciansHandler{directory: directory, scheduling: scheduling, clock: c}
}

// Create POST /technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	technician, err := h.directory.CreateTechnician(c.UserContext(), service.CreateTechnicianInput{
		Name:   req.Name,
		Email:  req.Email,
		Skills: req.Skills,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": technicianResponse(technician)})
}

// Get GET /technicians/:id.
func (h *TechniciansHandler) Get(c *fiber.Ctx) error {
	technician, err := h.directory.GetTechnician(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(technician)})
}

// UpdateStatus PATCH /technicians/:id/status.
func (h *TechniciansHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTechnicianStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	technician, err := h.directory.UpdateTechnicianStatus(c.UserContext(), c.Params("id"), req.Status, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(technician)})
}

// AddSkill POST /technicians/:id/skills.
func (h *TechniciansHandler) AddSkill(c *fiber.Ctx) error {
	var req dto.AddSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	technician, err := h.directory.AddSkill(c.UserContext(), c.Params("id"), req.ServiceType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(technician)})
}

// RemoveSkill DELETE /technicians/:id/skills/:serviceType.
func (h *TechniciansHandler) RemoveSkill(c *fiber.Ctx) error {
	serviceType := domain.ServiceType(c.Params("serviceType"))
	technician, err := h.directory.RemoveSkill(c.UserContext(), c.Params("id"), serviceType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(technician)})
}

// Delete DELETE /technicians/:id.
func (h *TechniciansHandler) Delete(c *fiber.Ctx) error {
	if err := h.directory.DeleteTechnician(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Load GET /technicians/:id/load.
func (h *TechniciansHandler) Load(c *fiber.Ctx) error {
	from, to, err := parseWindow(c, h.clock.Now(), 24*time.Hour)
	if err != nil {
		return err
	}
	workload, err := h.scheduling.TechnicianWorkload(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WorkloadResponse{
		TechnicianID: workload.TechnicianID,
		OpenTickets:  workload.OpenTickets,
		Appointments: workload.Appointments,
		From:         workload.From,
		To:           workload.To,
	}})
}

// Appointments GET /technicians/:id/appointments.
func (h *TechniciansHandler) Appointments(c *fiber.Ctx) error {
	from, to, err := parseWindow(c, h.clock.Now(), 7*24*time.Hour)
	if err != nil {
		return err
	}
	appointments, err := h.scheduling.ListTechnicianAppointments(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentList(appointments)})
}

// Tickets GET /technicians/:id/tickets?status=OPEN.
func (h *TechniciansHandler) Tickets(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Query("status"))
	tickets, err := h.scheduling.ListTechnicianTickets(c.UserContext(), c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets, h.clock.Now())})
}

// Available GET /technicians/available.
func (h *TechniciansHandler) Available(c *fiber.Ctx) error {
	maxLoad, err := parseOptionalInt(c, "max_load")
	if err != nil {
		return err
	}
	status := domain.TechnicianStatus(c.Query("status"))
	loads, err := h.scheduling.FindAvailableTechnicians(c.UserContext(), status, maxLoad)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianLoads(loads)})
}

// Best GET /technicians/best?service_type=.
func (h *TechniciansHandler) Best(c *fiber.Ctx) error {
	serviceType := domain.ServiceType(c.Query("service_type"))
	technician, err := h.scheduling.FindBestTechnician(c.UserContext(), serviceType)
	if err != nil {
		return err
	}
	if technician == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": technicianResponse(technician)})
}
