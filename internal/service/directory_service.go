package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	"github.com/spec-kit/techsupport-scheduler/internal/observability"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

// DirectoryService manages technicians, their skills and clients.
type DirectoryService struct {
	run *runner
}

// DirectoryDependencies bundles collaborators for the directory service.
type DirectoryDependencies struct {
	Store      repository.Store
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{run: newRunner(deps.Store, deps.Clock, deps.Dispatcher, deps.Logger, deps.Metrics)}
}

// CreateTechnicianInput describes a new technician.
type CreateTechnicianInput struct {
	Name   string
	Email  string
	Skills []domain.ServiceType
}

// CreateClientInput describes a new client.
type CreateClientInput struct {
	Name  string
	Email string
	Phone string
}

// CreateTechnician registers an ACTIVE technician with an optional skill set.
func (s *DirectoryService) CreateTechnician(ctx context.Context, input CreateTechnicianInput) (*domain.Technician, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	for _, serviceType := range input.Skills {
		if !serviceType.Valid() {
			return nil, apperrors.NewValidationError("unknown service type", map[string]any{"service_type": serviceType})
		}
	}

	var created *domain.Technician
	err = s.run.inTx(ctx, "create_technician", func(ctx context.Context, uow *unitOfWork) error {
		_, lookupErr := uow.Technicians.GetByEmail(ctx, email)
		if err := emailAvailable(lookupErr); err != nil {
			return err
		}
		technician := &domain.Technician{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Status:    domain.TechnicianStatusActive,
			CreatedAt: uow.now,
			UpdatedAt: uow.now,
		}
		for _, serviceType := range input.Skills {
			if technician.HasSkill(serviceType) {
				continue
			}
			technician.Skills = append(technician.Skills, domain.TechnicianSkill{
				TechnicianID: technician.ID,
				ServiceType:  serviceType,
				CreatedAt:    uow.now,
			})
		}
		if err := uow.Technicians.Create(ctx, technician); err != nil {
			return err
		}
		created = technician
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetTechnician returns one technician with skills.
func (s *DirectoryService) GetTechnician(ctx context.Context, id string) (*domain.Technician, error) {
	var technician *domain.Technician
	err := s.run.inTx(ctx, "get_technician", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		technician, err = loadTechnician(ctx, uow.Repositories, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return technician, nil
}

// UpdateTechnicianStatus changes a technician's employment status.
func (s *DirectoryService) UpdateTechnicianStatus(ctx context.Context, id string, status domain.TechnicianStatus, actor string) (*domain.Technician, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown technician status", map[string]any{"status": status})
	}
	var updated *domain.Technician
	err := s.run.inTx(ctx, "update_technician_status", func(ctx context.Context, uow *unitOfWork) error {
		technician, err := loadTechnician(ctx, uow.Repositories, id)
		if err != nil {
			return err
		}
		previous := technician.Status
		if previous != status {
			technician.Status = status
			technician.UpdatedAt = uow.now
			if err := uow.Technicians.Update(ctx, technician); err != nil {
				return err
			}
			uow.emit(events.EventTechnicianStatusChanged, technician.ID, actor, events.StatusChangedPayload{
				OldStatus: string(previous),
				NewStatus: string(status),
			})
		}
		updated = technician
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddSkill qualifies a technician for a service type. Adding a skill twice is a no-op.
func (s *DirectoryService) AddSkill(ctx context.Context, technicianID string, serviceType domain.ServiceType) (*domain.Technician, error) {
	if !serviceType.Valid() {
		return nil, apperrors.NewValidationError("unknown service type", map[string]any{"service_type": serviceType})
	}
	return s.changeSkills(ctx, "add_skill", technicianID, func(ctx context.Context, uow *unitOfWork) error {
		return uow.Technicians.AddSkill(ctx, domain.TechnicianSkill{
			TechnicianID: technicianID,
			ServiceType:  serviceType,
			CreatedAt:    uow.now,
		})
	})
}

// RemoveSkill drops a qualification.
func (s *DirectoryService) RemoveSkill(ctx context.Context, technicianID string, serviceType domain.ServiceType) (*domain.Technician, error) {
	return s.changeSkills(ctx, "remove_skill", technicianID, func(ctx context.Context, uow *unitOfWork) error {
		err := uow.Technicians.RemoveSkill(ctx, technicianID, serviceType)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("skill", map[string]any{"technician_id": technicianID, "service_type": serviceType})
		}
		return err
	})
}

func (s *DirectoryService) changeSkills(ctx context.Context, operation, technicianID string, change func(context.Context, *unitOfWork) error) (*domain.Technician, error) {
	var updated *domain.Technician
	err := s.run.inTx(ctx, operation, func(ctx context.Context, uow *unitOfWork) error {
		if _, err := loadTechnician(ctx, uow.Repositories, technicianID); err != nil {
			return err
		}
		if err := change(ctx, uow); err != nil {
			return err
		}
		var err error
		updated, err = loadTechnician(ctx, uow.Repositories, technicianID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTechnician removes a TERMINATED technician.
func (s *DirectoryService) DeleteTechnician(ctx context.Context, id string) error {
	return s.run.inTx(ctx, "delete_technician", func(ctx context.Context, uow *unitOfWork) error {
		technician, err := loadTechnician(ctx, uow.Repositories, id)
		if err != nil {
			return err
		}
		if technician.Status != domain.TechnicianStatusTerminated {
			return apperrors.NewInvalidState("only terminated technicians can be deleted", map[string]any{
				"technician_id": id, "status": technician.Status,
			})
		}
		return uow.Technicians.Delete(ctx, id)
	})
}

// CreateClient registers an ACTIVE client.
func (s *DirectoryService) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	var created *domain.Client
	err = s.run.inTx(ctx, "create_client", func(ctx context.Context, uow *unitOfWork) error {
		_, lookupErr := uow.Clients.GetByEmail(ctx, email)
		if err := emailAvailable(lookupErr); err != nil {
			return err
		}
		client := &domain.Client{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Phone:     strings.TrimSpace(input.Phone),
			Status:    domain.ClientStatusActive,
			CreatedAt: uow.now,
			UpdatedAt: uow.now,
		}
		if err := uow.Clients.Create(ctx, client); err != nil {
			return err
		}
		created = client
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetClient returns one client.
func (s *DirectoryService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	var client *domain.Client
	err := s.run.inTx(ctx, "get_client", func(ctx context.Context, uow *unitOfWork) error {
		var err error
		client, err = loadClient(ctx, uow.Repositories, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClientStatus changes a client's account status.
func (s *DirectoryService) UpdateClientStatus(ctx context.Context, id string, status domain.ClientStatus, actor string) (*domain.Client, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown client status", map[string]any{"status": status})
	}
	var updated *domain.Client
	err := s.run.inTx(ctx, "update_client_status", func(ctx context.Context, uow *unitOfWork) error {
		client, err := loadClient(ctx, uow.Repositories, id)
		if err != nil {
			return err
		}
		previous := client.Status
		if previous != status {
			client.Status = status
			client.UpdatedAt = uow.now
			if err := uow.Clients.Update(ctx, client); err != nil {
				return err
			}
			uow.emit(events.EventClientStatusChanged, client.ID, actor, events.StatusChangedPayload{
				OldStatus: string(previous),
				NewStatus: string(status),
			})
		}
		updated = client
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteClient removes a client that is no longer ACTIVE. Its tickets are
// kept with the client reference cleared.
func (s *DirectoryService) DeleteClient(ctx context.Context, id string) error {
	return s.run.inTx(ctx, "delete_client", func(ctx context.Context, uow *unitOfWork) error {
		client, err := loadClient(ctx, uow.Repositories, id)
		if err != nil {
			return err
		}
		if client.IsActive() {
			return apperrors.NewInvalidState("active clients cannot be deleted", map[string]any{"client_id": id})
		}
		detached, err := uow.Tickets.DetachClient(ctx, id, uow.now)
		if err != nil {
			return err
		}
		s.run.logger.Debug("detached client tickets", zap.String("client_id", id), zap.Int64("tickets", detached))
		return uow.Clients.Delete(ctx, id)
	})
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.NewValidationError("email required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"email": raw})
	}
	return email, nil
}

// emailAvailable interprets the error of a GetByEmail lookup.
func emailAvailable(lookupErr error) error {
	switch {
	case lookupErr == nil:
		return apperrors.NewInvalidState("email already in use", nil)
	case errors.Is(lookupErr, repository.ErrNotFound):
		return nil
	}
	return lookupErr
}
