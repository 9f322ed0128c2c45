package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update persists mutable fields; due_at is never rewritten.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error)
	// DetachClient clears the client reference on every ticket of clientID.
	DetachClient(ctx context.Context, clientID string, at time.Time) (int64, error)
	ListByAssignedTechnicianAndStatus(ctx context.Context, technicianID string, status domain.TicketStatus) ([]domain.Ticket, error)
	CountByAssignedTechnicianAndStatus(ctx context.Context, technicianID string, status domain.TicketStatus) (int, error)
	// ListOverdue returns OPEN tickets whose due time is before now, oldest due first.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, client_id, service_type, description, status, assigned_technician_id,
               created_at, due_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, client_id, service_type, description, status, assigned_technician_id,
                             created_at, due_at, updated_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.ClientID,
		ticket.ServiceType,
		ticket.Description,
		ticket.Status,
		ticket.AssignedTechnicianID,
		ticket.CreatedAt,
		ticket.DueAt,
		ticket.UpdatedAt,
		ticket.ClosedAt,
	)
	return err
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET client_id=$1, description=$2, status=$3, assigned_technician_id=$4,
            updated_at=$5, closed_at=$6
        WHERE id=$7`
	return expectOneRow(r.db.Exec(ctx, query,
		ticket.ClientID,
		ticket.Description,
		ticket.Status,
		ticket.AssignedTechnicianID,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		ticket.ID,
	))
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	ticket, err := pgx.CollectOneRow(rows, scanTicket)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE client_id=$1 ORDER BY created_at ASC`, clientID)
}

func (r *ticketRepository) DetachClient(ctx context.Context, clientID string, at time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET client_id=NULL, updated_at=$2 WHERE client_id=$1`, clientID, at)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) ListByAssignedTechnicianAndStatus(ctx context.Context, technicianID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets
        WHERE assigned_technician_id=$1 AND status=$2 ORDER BY due_at ASC`, technicianID, status)
}

func (r *ticketRepository) CountByAssignedTechnicianAndStatus(ctx context.Context, technicianID string, status domain.TicketStatus) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE assigned_technician_id=$1 AND status=$2`,
		technicianID, status).Scan(&count)
	return count, err
}

func (r *ticketRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets
        WHERE status=$1 AND due_at < $2 ORDER BY due_at ASC`, domain.TicketStatusOpen, now)
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTicket)
}

func scanTicket(row pgx.CollectableRow) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.ClientID,
		&ticket.ServiceType,
		&ticket.Description,
		&ticket.Status,
		&ticket.AssignedTechnicianID,
		&ticket.CreatedAt,
		&ticket.DueAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	)
	return ticket, err
}
