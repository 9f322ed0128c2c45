package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

var t0 = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func seedTechnician(t *testing.T, store *Store, id, email string) {
	t.Helper()
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		return repos.Technicians.Create(ctx, &domain.Technician{
			ID: id, Name: id, Email: email, Status: domain.TechnicianStatusActive,
			CreatedAt: t0, UpdatedAt: t0,
		})
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		require.NoError(t, repos.Technicians.Create(ctx, &domain.Technician{ID: "t1", Email: "a@example.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		_, err := repos.Technicians.GetByID(ctx, "t1")
		return err
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	seedTechnician(t, store, "t1", "a@example.com")

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		tech, err := repos.Technicians.GetByID(ctx, "t1")
		if err != nil {
			return err
		}
		assert.Equal(t, "a@example.com", tech.Email)
		return nil
	})
	require.NoError(t, err)
}

func TestTechnicianEmailIsUnique(t *testing.T) {
	store := NewStore()
	seedTechnician(t, store, "t1", "a@example.com")

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		return repos.Technicians.Create(ctx, &domain.Technician{ID: "t2", Email: "A@example.com"})
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))
}

func TestFindConflictingUsesHalfOpenWindows(t *testing.T) {
	store := NewStore()
	seedTechnician(t, store, "t1", "a@example.com")

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		require.NoError(t, repos.Tickets.Create(ctx, &domain.Ticket{ID: "k1", Status: domain.TicketStatusOpen}))
		for _, a := range []domain.Appointment{
			{ID: "a1", TechnicianID: "t1", TicketID: "k1", StartTime: t0, EndTime: t0.Add(time.Hour), Status: domain.AppointmentStatusConfirmed},
			{ID: "a2", TechnicianID: "t1", TicketID: "k1", StartTime: t0.Add(2 * time.Hour), EndTime: t0.Add(3 * time.Hour), Status: domain.AppointmentStatusCancelled},
			{ID: "a3", TechnicianID: "t2", TicketID: "k1", StartTime: t0, EndTime: t0.Add(time.Hour), Status: domain.AppointmentStatusPending},
		} {
			a := a
			require.NoError(t, repos.Appointments.Create(ctx, &a))
		}

		excluded := domain.ConflictExcludedStatuses()
		found, err := repos.Appointments.FindConflicting(ctx, "t1", t0.Add(30*time.Minute), t0.Add(90*time.Minute), excluded)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "a1", found[0].ID)

		found, err = repos.Appointments.FindConflicting(ctx, "t1", t0.Add(time.Hour), t0.Add(2*time.Hour), excluded)
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = repos.Appointments.FindConflicting(ctx, "t1", t0.Add(2*time.Hour), t0.Add(3*time.Hour), excluded)
		require.NoError(t, err)
		assert.Empty(t, found, "cancelled appointments free their slot")

		count, err := repos.Appointments.CountByTechnicianInWindow(ctx, "t1", t0, t0.Add(4*time.Hour), excluded)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		return nil
	})
	require.NoError(t, err)
}

func TestTicketUpdateKeepsDueAt(t *testing.T) {
	store := NewStore()
	due := t0.Add(24 * time.Hour)

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		require.NoError(t, repos.Tickets.Create(ctx, &domain.Ticket{ID: "k1", Status: domain.TicketStatusOpen, CreatedAt: t0, DueAt: due}))
		require.NoError(t, repos.Tickets.Update(ctx, &domain.Ticket{ID: "k1", Status: domain.TicketStatusClosed, DueAt: due.Add(time.Hour)}))
		got, err := repos.Tickets.GetByID(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, due, got.DueAt)
		assert.Equal(t, domain.TicketStatusClosed, got.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteTechnicianCascades(t *testing.T) {
	store := NewStore()
	seedTechnician(t, store, "t1", "a@example.com")
	techID := "t1"

	err := store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		require.NoError(t, repos.Tickets.Create(ctx, &domain.Ticket{ID: "k1", Status: domain.TicketStatusOpen, AssignedTechnicianID: &techID}))
		require.NoError(t, repos.Appointments.Create(ctx, &domain.Appointment{ID: "a1", TechnicianID: "t1", TicketID: "k1", StartTime: t0, EndTime: t0.Add(time.Hour)}))
		require.NoError(t, repos.Technicians.Delete(ctx, "t1"))

		_, err := repos.Appointments.GetByID(ctx, "a1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		ticket, err := repos.Tickets.GetByID(ctx, "k1")
		require.NoError(t, err)
		assert.Nil(t, ticket.AssignedTechnicianID)
		return nil
	})
	require.NoError(t, err)
}
