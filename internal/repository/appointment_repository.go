package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// AppointmentRepository stores technician bookings.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	Update(ctx context.Context, appointment *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	// FindConflicting returns the technician's appointments overlapping
	// [start,end) whose status is not in excluded. Overlap follows
	// domain.Overlaps: start_time < end AND end_time > start.
	FindConflicting(ctx context.Context, technicianID string, start, end time.Time, excluded []domain.AppointmentStatus) ([]domain.Appointment, error)
	// ListByTechnician returns every appointment of the technician overlapping [from,to).
	ListByTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Appointment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Appointment, error)
	CountByTechnicianInWindow(ctx context.Context, technicianID string, from, to time.Time, excluded []domain.AppointmentStatus) (int, error)
}

type appointmentRepository struct {
	db DBTX
}

// NewAppointmentRepository instantiates the repository.
func NewAppointmentRepository(db DBTX) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `id, technician_id, ticket_id, start_time, end_time, status,
               cancellation_reason, created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (id, technician_id, ticket_id, start_time, end_time, status,
                                  cancellation_reason, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.Exec(ctx, query,
		appointment.ID,
		appointment.TechnicianID,
		appointment.TicketID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.CancellationReason,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	return err
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        UPDATE appointments SET start_time=$1, end_time=$2, status=$3, cancellation_reason=$4, updated_at=$5
        WHERE id=$6`
	return expectOneRow(r.db.Exec(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.CancellationReason,
		appointment.UpdatedAt,
		appointment.ID,
	))
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id=$1`, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	appointment, err := pgx.CollectOneRow(rows, scanAppointment)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindConflicting(ctx context.Context, technicianID string, start, end time.Time, excluded []domain.AppointmentStatus) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM appointments
        WHERE technician_id=$1 AND start_time < $3 AND end_time > $2 AND NOT (status = ANY($4))
        ORDER BY start_time ASC`,
		technicianID, start, end, statusStrings(excluded))
}

func (r *appointmentRepository) ListByTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM appointments
        WHERE technician_id=$1 AND start_time < $3 AND end_time > $2
        ORDER BY start_time ASC`, technicianID, from, to)
}

func (r *appointmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM appointments
        WHERE ticket_id=$1 ORDER BY start_time ASC`, ticketID)
}

func (r *appointmentRepository) CountByTechnicianInWindow(ctx context.Context, technicianID string, from, to time.Time, excluded []domain.AppointmentStatus) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments
        WHERE technician_id=$1 AND start_time < $3 AND end_time > $2 AND NOT (status = ANY($4))`,
		technicianID, from, to, statusStrings(excluded)).Scan(&count)
	return count, err
}

func (r *appointmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAppointment)
}

func scanAppointment(row pgx.CollectableRow) (domain.Appointment, error) {
	var appointment domain.Appointment
	err := row.Scan(
		&appointment.ID,
		&appointment.TechnicianID,
		&appointment.TicketID,
		&appointment.StartTime,
		&appointment.EndTime,
		&appointment.Status,
		&appointment.CancellationReason,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	return appointment, err
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = string(status)
	}
	return out
}
