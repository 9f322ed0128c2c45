package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	"github.com/spec-kit/techsupport-scheduler/internal/observability"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	"github.com/spec-kit/techsupport-scheduler/internal/repository/memory"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

var baseTime = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store      *memory.Store
	clock      *clock.Fixed
	metrics    *observability.Metrics
	scheduling *SchedulingService
	directory  *DirectoryService

	mu     sync.Mutex
	events []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   memory.NewStore(),
		clock:   clock.NewFixed(baseTime),
		metrics: observability.NewMetrics(),
	}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.AllEvents, func(ctx context.Context, event events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, event)
		return nil
	})
	f.scheduling = NewSchedulingService(SchedulingDependencies{
		Store:          f.store,
		Clock:          f.clock,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
		Metrics:        f.metrics,
		DefaultMaxLoad: 5,
	})
	f.directory = NewDirectoryService(DirectoryDependencies{
		Store:      f.store,
		Clock:      f.clock,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Metrics:    f.metrics,
	})
	return f
}

func (f *fixture) eventTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func (f *fixture) technician(t *testing.T, name string, skills ...domain.ServiceType) *domain.Technician {
	t.Helper()
	technician, err := f.directory.CreateTechnician(context.Background(), CreateTechnicianInput{
		Name:   name,
		Email:  strings.ToLower(name) + "@example.com",
		Skills: skills,
	})
	require.NoError(t, err)
	return technician
}

func (f *fixture) client(t *testing.T, name string) *domain.Client {
	t.Helper()
	client, err := f.directory.CreateClient(context.Background(), CreateClientInput{
		Name:  name,
		Email: strings.ToLower(name) + "@client.example.com",
		Phone: "+1 555 0100",
	})
	require.NoError(t, err)
	return client
}

func (f *fixture) ticket(t *testing.T, clientID string, serviceType domain.ServiceType) *domain.Ticket {
	t.Helper()
	ticket, err := f.scheduling.CreateTicket(context.Background(), CreateTicketInput{
		ClientID:    clientID,
		ServiceType: serviceType,
		Description: "printer on fire",
	})
	require.NoError(t, err)
	return ticket
}

// tomorrow returns baseTime's next day at hh:mm.
func tomorrow(hour, minute int) time.Time {
	return time.Date(2024, 6, 4, hour, minute, 0, 0, time.UTC)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, code, domainErr.Code, domainErr.Message)
}

// historyFailingStore runs units of work on an in-memory store but fails
// every history append.
type historyFailingStore struct {
	inner *memory.Store
}

var errHistoryUnavailable = errors.New("history unavailable")

type failingHistory struct{}

func (failingHistory) Create(ctx context.Context, history *domain.TicketHistory) error {
	return errHistoryUnavailable
}

func (failingHistory) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	return nil, errHistoryUnavailable
}

func (s historyFailingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.History = failingHistory{}
		return fn(ctx, repos)
	})
}
