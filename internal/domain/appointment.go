package domain

import "time"

// AppointmentStatus enumerates the states of a booked visit.
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed  AppointmentStatus = "CONFIRMED"
	AppointmentStatusInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted  AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled  AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow     AppointmentStatus = "NO_SHOW"
)

// Appointment duration bounds, inclusive.
const (
	MinAppointmentDuration = 30 * time.Minute
	MaxAppointmentDuration = 8 * time.Hour
)

var appointmentTransitions = map[AppointmentStatus]map[AppointmentStatus]struct{}{
	AppointmentStatusPending: {
		AppointmentStatusConfirmed: {},
		AppointmentStatusCancelled: {},
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusInProgress: {},
		AppointmentStatusCancelled:  {},
		AppointmentStatusNoShow:     {},
	},
	AppointmentStatusInProgress: {
		AppointmentStatusCompleted: {},
		AppointmentStatusCancelled: {},
	},
	AppointmentStatusCompleted: {},
	AppointmentStatusCancelled: {},
	AppointmentStatusNoShow:    {},
}

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

// CanTransitionAppointment reports whether from -> to is in the transition table.
// Self transitions are not listed and therefore rejected.
func CanTransitionAppointment(from, to AppointmentStatus) bool {
	_, ok := appointmentTransitions[from][to]
	return ok
}

// ConflictExcludedStatuses lists statuses that no longer hold a calendar slot.
func ConflictExcludedStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusCancelled, AppointmentStatusNoShow}
}

// Appointment books a technician against a ticket for a time window.
type Appointment struct {
	ID                 string
	TechnicianID       string
	TicketID           string
	StartTime          time.Time
	EndTime            time.Time
	Status             AppointmentStatus
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Duration returns the length of the booked window.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2) intersect.
// Windows that only touch at an edge do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
