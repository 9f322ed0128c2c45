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

// ClientsHandler manages client endpoints.
type ClientsHandler struct {
	directory  *service.DirectoryService
	scheduling *service.SchedulingService
	clock      clock.Clock
}

// NewClientsHandler constructs handler.
func NewClientsHandler(directory *service.DirectoryService, scheduling *service.SchedulingService, c clock.Clock) *ClientsHandler {
	return &ClientsHandler{directory: directory, scheduling: scheduling, clock: c}
}

// Create POST /clients.
func (h *ClientsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	client, err := h.directory.CreateClient(c.UserContext(), service.CreateClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": clientResponse(client)})
}

// Get GET /clients/:id.
func (h *ClientsHandler) Get(c *fiber.Ctx) error {
	client, err := h.directory.GetClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// Tickets GET /clients/:id/tickets.
func (h *ClientsHandler) Tickets(c *fiber.Ctx) error {
	tickets, err := h.scheduling.ListClientTickets(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets, h.clock.Now())})
}

// UpdateStatus PATCH /clients/:id/status.
func (h *ClientsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateClientStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	client, err := h.directory.UpdateClientStatus(c.UserContext(), c.Params("id"), req.Status, auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// Delete DELETE /clients/:id.
func (h *ClientsHandler) Delete(c *fiber.Ctx) error {
	if err := h.directory.DeleteClient(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
