package service

import (
	"context"
	"sort"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// TechnicianLoad pairs a technician with their current number of OPEN tickets.
type TechnicianLoad struct {
	Technician  domain.Technician
	OpenTickets int
}

// TechnicianMatcher picks technicians for work by skill and open-ticket load.
type TechnicianMatcher struct{}

// NewTechnicianMatcher constructs the matcher.
func NewTechnicianMatcher() *TechnicianMatcher {
	return &TechnicianMatcher{}
}

// CurrentLoad counts the technician's OPEN assigned tickets. Closed tickets
// never count.
func (m *TechnicianMatcher) CurrentLoad(ctx context.Context, tickets repository.TicketRepository, technicianID string) (int, error) {
	return tickets.CountByAssignedTechnicianAndStatus(ctx, technicianID, domain.TicketStatusOpen)
}

// FindBestForServiceType returns the qualified ACTIVE technician with the
// fewest open tickets, lowest id first on ties, or nil when nobody qualifies.
func (m *TechnicianMatcher) FindBestForServiceType(ctx context.Context, repos repository.Repositories, serviceType domain.ServiceType) (*domain.Technician, error) {
	if !serviceType.Valid() {
		return nil, apperrors.NewValidationError("unknown service type", map[string]any{"service_type": serviceType})
	}
	active := domain.TechnicianStatusActive
	candidates, err := repos.Technicians.List(ctx, repository.TechnicianFilter{Status: &active, ServiceType: &serviceType})
	if err != nil {
		return nil, err
	}

	loads := make([]TechnicianLoad, 0, len(candidates))
	for _, technician := range candidates {
		if !technician.IsActive() || !technician.HasSkill(serviceType) {
			continue
		}
		load, err := m.CurrentLoad(ctx, repos.Tickets, technician.ID)
		if err != nil {
			return nil, err
		}
		loads = append(loads, TechnicianLoad{Technician: technician, OpenTickets: load})
	}
	best, ok := leastLoaded(loads)
	if !ok {
		return nil, nil
	}
	return &best.Technician, nil
}

// FindAvailable returns technicians in status whose open-ticket count is at
// most maxLoad, least loaded first.
func (m *TechnicianMatcher) FindAvailable(ctx context.Context, repos repository.Repositories, status domain.TechnicianStatus, maxLoad int) ([]TechnicianLoad, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown technician status", map[string]any{"status": status})
	}
	if maxLoad < 0 {
		return nil, apperrors.NewValidationError("max load must not be negative", map[string]any{"max_load": maxLoad})
	}
	technicians, err := repos.Technicians.List(ctx, repository.TechnicianFilter{Status: &status})
	if err != nil {
		return nil, err
	}
	out := make([]TechnicianLoad, 0, len(technicians))
	for _, technician := range technicians {
		load, err := m.CurrentLoad(ctx, repos.Tickets, technician.ID)
		if err != nil {
			return nil, err
		}
		if load <= maxLoad {
			out = append(out, TechnicianLoad{Technician: technician, OpenTickets: load})
		}
	}
	sortByLoad(out)
	return out, nil
}

func leastLoaded(loads []TechnicianLoad) (TechnicianLoad, bool) {
	if len(loads) == 0 {
		return TechnicianLoad{}, false
	}
	sorted := append([]TechnicianLoad(nil), loads...)
	sortByLoad(sorted)
	return sorted[0], true
}

func sortByLoad(loads []TechnicianLoad) {
	sort.SliceStable(loads, func(i, j int) bool {
		if loads[i].OpenTickets != loads[j].OpenTickets {
			return loads[i].OpenTickets < loads[j].OpenTickets
		}
		return loads[i].Technician.ID < loads[j].Technician.ID
	})
}
