package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// ErrNotFound is returned when a lookup by identifier matches nothing.
var ErrNotFound = apperrors.ErrNotFound

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups every repository bound to one unit of work.
type Repositories struct {
	Technicians  TechnicianRepository
	Clients      ClientRepository
	Tickets      TicketRepository
	Appointments AppointmentRepository
	History      TicketHistoryRepository
}

// Store runs a unit of work. Everything fn reads and writes through repos is
// committed together when fn returns nil and discarded otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// NewRepositories binds all pgx repositories to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Technicians:  NewTechnicianRepository(db),
		Clients:      NewClientRepository(db),
		Tickets:      NewTicketRepository(db),
		Appointments: NewAppointmentRepository(db),
		History:      NewTicketHistoryRepository(db),
	}
}

// PostgresStore runs units of work in serializable pgx transactions so that
// conflict checks and the writes depending on them see one snapshot.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a store over pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// invalidTextRepresentation is raised when an id is not a valid UUID. Such an
// id cannot match a row.
const invalidTextRepresentation = "22P02"

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return ErrNotFound
	}
	return err
}

func expectOneRow(cmd pgconn.CommandTag, err error) error {
	if err != nil {
		return notFoundOr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
