package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techsupport-scheduler/internal/api/dto"
	"github.com/spec-kit/techsupport-scheduler/internal/auth"
	"github.com/spec-kit/techsupport-scheduler/internal/service"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// AppointmentsHandler manages appointment booking endpoints.
type AppointmentsHandler struct {
	service *service.SchedulingService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(scheduling *service.SchedulingService) *AppointmentsHandler {
	return &AppointmentsHandler{service: scheduling}
}

// Create POST /appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" || req.TicketID == "" {
		return apperrors.NewValidationError("technician_id and ticket_id required", nil)
	}
	appointment, err := h.service.CreateAppointment(c.UserContext(), service.CreateAppointmentInput{
		TechnicianID: req.TechnicianID,
		TicketID:     req.TicketID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Get GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	appointment, err := h.service.GetAppointment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// UpdateStatus PATCH /appointments/:id/status.
func (h *AppointmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateAppointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	appointment, err := h.service.UpdateAppointmentStatus(c.UserContext(), c.Params("id"), req.Status, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Cancel POST /appointments/:id/cancel.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelAppointmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	appointment, err := h.service.CancelAppointment(c.UserContext(), c.Params("id"), req.Reason, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}
