package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceTypeSLA(t *testing.T) {
	sla, ok := ServiceTypeHardware.SLA()
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, sla)

	sla, ok = ServiceTypeSoftware.SLA()
	assert.True(t, ok)
	assert.Equal(t, 48*time.Hour, sla)

	_, ok = ServiceType("PLUMBING").SLA()
	assert.False(t, ok)
	assert.False(t, ServiceType("PLUMBING").Valid())
}

func TestCanTransitionTicket(t *testing.T) {
	assert.True(t, CanTransitionTicket(TicketStatusOpen, TicketStatusClosed))
	assert.True(t, CanTransitionTicket(TicketStatusOpen, TicketStatusOpen))
	assert.True(t, CanTransitionTicket(TicketStatusClosed, TicketStatusClosed))
	assert.False(t, CanTransitionTicket(TicketStatusClosed, TicketStatusOpen))
	assert.False(t, CanTransitionTicket(TicketStatusOpen, TicketStatus("ARCHIVED")))
	assert.True(t, TicketStatusClosed.IsTerminal())
	assert.False(t, TicketStatusOpen.IsTerminal())
}

func TestTicketIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusOpen, DueAt: now.Add(-time.Minute)}
	assert.True(t, ticket.IsOverdue(now))

	ticket.DueAt = now
	assert.False(t, ticket.IsOverdue(now))

	ticket.DueAt = now.Add(-time.Hour)
	ticket.Status = TicketStatusClosed
	assert.False(t, ticket.IsOverdue(now))
}

func TestTechnicianHasSkill(t *testing.T) {
	tech := &Technician{
		Status: TechnicianStatusActive,
		Skills: []TechnicianSkill{{ServiceType: ServiceTypeHardware}},
	}
	assert.True(t, tech.IsActive())
	assert.True(t, tech.HasSkill(ServiceTypeHardware))
	assert.False(t, tech.HasSkill(ServiceTypeSoftware))

	tech.Status = TechnicianStatusOnVacation
	assert.False(t, tech.IsActive())
}
