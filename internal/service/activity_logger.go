package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/techsupport-scheduler/internal/events"
)

// ActivityLogger writes a structured log line for every committed domain event.
type ActivityLogger struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityLogger creates the subscriber.
func NewActivityLogger(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityLogger {
	return &ActivityLogger{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *ActivityLogger) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAppointmentCreated, a.handleAppointmentCreated)
	a.dispatcher.Subscribe(events.EventAppointmentStatusChanged, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventTechnicianStatusChanged, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventClientStatusChanged, a.handleStatusChange)
	a.dispatcher.Subscribe(events.AllEvents, a.handleAny)
}

func (a *ActivityLogger) handleAppointmentCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AppointmentCreatedPayload)
	if !ok {
		return nil
	}
	a.logger.Info("AppointmentCreated",
		zap.String("appointment_id", event.AggregateID),
		zap.String("technician_id", payload.TechnicianID),
		zap.String("ticket_id", payload.TicketID),
		zap.Time("start_time", payload.StartTime),
		zap.Time("end_time", payload.EndTime))
	return nil
}

func (a *ActivityLogger) handleStatusChange(ctx context.Context, event events.Event) error {
	a.logger.Info("StatusChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("aggregate_id", event.AggregateID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *ActivityLogger) handleAny(ctx context.Context, event events.Event) error {
	a.logger.Debug("event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("aggregate_id", event.AggregateID),
		zap.Time("timestamp", event.Timestamp))
	return nil
}
