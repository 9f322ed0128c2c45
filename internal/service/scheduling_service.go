package service

import (
	"go.uber.org/zap"

	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	"github.com/spec-kit/techsupport-scheduler/internal/observability"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
)

// SchedulingService runs appointment, ticket and matching workflows. Every
// public operation is one unit of work: it either commits all of its writes
// and history entries or none of them.
type SchedulingService struct {
	run            *runner
	appointments   *AppointmentLifecycle
	tickets        *TicketLifecycle
	matcher        *TechnicianMatcher
	conflicts      *ConflictDetector
	defaultMaxLoad int
}

// SchedulingDependencies bundles collaborators for the scheduling service.
type SchedulingDependencies struct {
	Store          repository.Store
	Clock          clock.Clock
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	DefaultMaxLoad int
}

// NewSchedulingService constructs the orchestrator.
func NewSchedulingService(deps SchedulingDependencies) *SchedulingService {
	run := newRunner(deps.Store, deps.Clock, deps.Dispatcher, deps.Logger, deps.Metrics)
	return &SchedulingService{
		run:            run,
		appointments:   NewAppointmentLifecycle(run.clock),
		tickets:        NewTicketLifecycle(run.clock),
		matcher:        NewTechnicianMatcher(),
		conflicts:      NewConflictDetector(),
		defaultMaxLoad: deps.DefaultMaxLoad,
	}
}
