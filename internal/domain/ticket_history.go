package domain

import "time"

// ActorSystem marks history entries produced without a human principal.
const ActorSystem = "SYSTEM"

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID          string
	TicketID    string
	Status      TicketStatus
	Description string
	Actor       string
	CreatedAt   time.Time
}
