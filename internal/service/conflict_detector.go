package service

import (
	"context"
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
)

// ConflictDetector finds appointments that would double-book a technician.
//
// Storage narrows candidates by technician and window; the detector then
// applies the exact half-open comparison.
type ConflictDetector struct{}

// NewConflictDetector constructs the detector.
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// FindConflicts returns the technician's appointments overlapping [start,end)
// whose status is not in excluded.
func (d *ConflictDetector) FindConflicts(ctx context.Context, appointments repository.AppointmentRepository, technicianID string, start, end time.Time, excluded []domain.AppointmentStatus) ([]domain.Appointment, error) {
	candidates, err := appointments.FindConflicting(ctx, technicianID, start, end, excluded)
	if err != nil {
		return nil, err
	}
	return Conflicts(candidates, technicianID, start, end, excluded), nil
}

// HasConflict reports whether any appointment blocks [start,end).
func (d *ConflictDetector) HasConflict(ctx context.Context, appointments repository.AppointmentRepository, technicianID string, start, end time.Time, excluded []domain.AppointmentStatus) (bool, error) {
	conflicts, err := d.FindConflicts(ctx, appointments, technicianID, start, end, excluded)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// Conflicts filters candidates down to real conflicts with [start,end).
func Conflicts(candidates []domain.Appointment, technicianID string, start, end time.Time, excluded []domain.AppointmentStatus) []domain.Appointment {
	var out []domain.Appointment
	for _, candidate := range candidates {
		if candidate.TechnicianID != technicianID {
			continue
		}
		if statusIn(excluded, candidate.Status) {
			continue
		}
		if !domain.Overlaps(candidate.StartTime, candidate.EndTime, start, end) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func statusIn(statuses []domain.AppointmentStatus, status domain.AppointmentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
