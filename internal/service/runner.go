package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	"github.com/spec-kit/techsupport-scheduler/internal/observability"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// runner executes service operations as units of work and publishes the
// events they collect once the work is committed.
type runner struct {
	store      repository.Store
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

func newRunner(store repository.Store, c clock.Clock, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *runner {
	if c == nil {
		c = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &runner{store: store, clock: c, dispatcher: dispatcher, logger: logger, metrics: metrics}
}

type unitOfWork struct {
	repository.Repositories
	now     time.Time
	pending []events.Event
}

func (u *unitOfWork) emit(eventType events.EventType, aggregateID, actor string, payload any) {
	u.pending = append(u.pending, events.Event{
		Type:        eventType,
		AggregateID: aggregateID,
		Actor:       actorOrSystem(actor),
		Timestamp:   u.now,
		Payload:     payload,
	})
}

// appendHistory records an audit entry for ticket at its current status.
func (u *unitOfWork) appendHistory(ctx context.Context, ticket *domain.Ticket, description, actor string) error {
	return u.History.Create(ctx, &domain.TicketHistory{
		ID:          uuid.NewString(),
		TicketID:    ticket.ID,
		Status:      ticket.Status,
		Description: description,
		Actor:       actorOrSystem(actor),
		CreatedAt:   u.now,
	})
}

func (r *runner) inTx(ctx context.Context, operation string, fn func(ctx context.Context, uow *unitOfWork) error) error {
	var committed []events.Event
	err := r.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		uow := &unitOfWork{Repositories: repos, now: r.clock.Now()}
		if err := fn(ctx, uow); err != nil {
			return err
		}
		committed = uow.pending
		return nil
	})
	if err != nil {
		mapped := apperrors.ToDomainError(err)
		r.metrics.RecordOperation(operation, mapped.Code)
		if mapped.HTTPStatus >= http.StatusInternalServerError {
			r.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		} else {
			r.logger.Debug("operation rejected",
				zap.String("operation", operation),
				zap.String("code", mapped.Code),
				zap.String("reason", mapped.Message))
		}
		return mapped
	}
	r.metrics.RecordOperation(operation, "ok")
	r.publish(ctx, committed)
	return nil
}

func (r *runner) publish(ctx context.Context, pending []events.Event) {
	if r.dispatcher == nil {
		return
	}
	for _, event := range pending {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if err := r.dispatcher.Publish(ctx, event); err != nil {
			r.logger.Warn("event publish failed",
				zap.String("event_type", string(event.Type)),
				zap.String("aggregate_id", event.AggregateID),
				zap.Error(err))
		}
	}
}

func actorOrSystem(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return domain.ActorSystem
	}
	return actor
}

func loadTechnician(ctx context.Context, repos repository.Repositories, id string) (*domain.Technician, error) {
	technician, err := repos.Technicians.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": id})
	}
	return technician, err
}

func loadClient(ctx context.Context, repos repository.Repositories, id string) (*domain.Client, error) {
	client, err := repos.Clients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("client", map[string]any{"client_id": id})
	}
	return client, err
}

func loadTicket(ctx context.Context, repos repository.Repositories, id string) (*domain.Ticket, error) {
	ticket, err := repos.Tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return ticket, err
}

func loadAppointment(ctx context.Context, repos repository.Repositories, id string) (*domain.Appointment, error) {
	appointment, err := repos.Appointments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("appointment", map[string]any{"appointment_id": id})
	}
	return appointment, err
}
