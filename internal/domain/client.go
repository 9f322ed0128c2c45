package domain

import "time"

// ClientStatus represents lifecycle states for a client account.
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "ACTIVE"
	ClientStatusInactive  ClientStatus = "INACTIVE"
	ClientStatusSuspended ClientStatus = "SUSPENDED"
)

// Valid reports whether s is a known client status.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusSuspended:
		return true
	}
	return false
}

// Client is the customer who files tickets.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Status    ClientStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the client may open tickets.
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}
