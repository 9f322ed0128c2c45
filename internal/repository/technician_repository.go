package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// TechnicianFilter narrows technician listings.
type TechnicianFilter struct {
	Status      *domain.TechnicianStatus
	ServiceType *domain.ServiceType
}

// TechnicianRepository handles persistence for technicians and their skills.
type TechnicianRepository interface {
	Create(ctx context.Context, technician *domain.Technician) error
	Update(ctx context.Context, technician *domain.Technician) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	GetByEmail(ctx context.Context, email string) (*domain.Technician, error)
	// List returns matching technicians ordered by id.
	List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error)
	AddSkill(ctx context.Context, skill domain.TechnicianSkill) error
	RemoveSkill(ctx context.Context, technicianID string, serviceType domain.ServiceType) error
}

type technicianRepository struct {
	db DBTX
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(db DBTX) TechnicianRepository {
	return &technicianRepository{db: db}
}

const technicianColumns = `id, name, email, status, created_at, updated_at`

func (r *technicianRepository) Create(ctx context.Context, technician *domain.Technician) error {
	const query = `
        INSERT INTO technicians (id, name, email, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := r.db.Exec(ctx, query,
		technician.ID,
		technician.Name,
		technician.Email,
		technician.Status,
		technician.CreatedAt,
		technician.UpdatedAt,
	); err != nil {
		return err
	}
	for _, skill := range technician.Skills {
		if err := r.AddSkill(ctx, skill); err != nil {
			return err
		}
	}
	return nil
}

func (r *technicianRepository) Update(ctx context.Context, technician *domain.Technician) error {
	const query = `
        UPDATE technicians SET name=$1, email=$2, status=$3, updated_at=$4
        WHERE id=$5`
	return expectOneRow(r.db.Exec(ctx, query,
		technician.Name,
		technician.Email,
		technician.Status,
		technician.UpdatedAt,
		technician.ID,
	))
}

func (r *technicianRepository) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.Exec(ctx, `DELETE FROM technicians WHERE id=$1`, id))
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	return r.fetchSingle(ctx, `SELECT `+technicianColumns+` FROM technicians WHERE id=$1`, id)
}

func (r *technicianRepository) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	return r.fetchSingle(ctx, `SELECT `+technicianColumns+` FROM technicians WHERE lower(email)=lower($1)`, email)
}

func (r *technicianRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Technician, error) {
	var technician domain.Technician
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&technician.ID,
		&technician.Name,
		&technician.Email,
		&technician.Status,
		&technician.CreatedAt,
		&technician.UpdatedAt,
	); err != nil {
		return nil, notFoundOr(err)
	}
	technicians := []domain.Technician{technician}
	if err := r.attachSkills(ctx, technicians); err != nil {
		return nil, err
	}
	return &technicians[0], nil
}

func (r *technicianRepository) List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.ServiceType != nil {
		args = append(args, *filter.ServiceType)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM technician_skills s WHERE s.technician_id=t.id AND s.service_type=$%d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT t.id, t.name, t.email, t.status, t.created_at, t.updated_at
        FROM technicians t WHERE %s ORDER BY t.id ASC`, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	technicians, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Technician, error) {
		var t domain.Technician
		err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Status, &t.CreatedAt, &t.UpdatedAt)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachSkills(ctx, technicians); err != nil {
		return nil, err
	}
	return technicians, nil
}

func (r *technicianRepository) attachSkills(ctx context.Context, technicians []domain.Technician) error {
	if len(technicians) == 0 {
		return nil
	}
	ids := make([]string, len(technicians))
	index := make(map[string]int, len(technicians))
	for i := range technicians {
		ids[i] = technicians[i].ID
		index[technicians[i].ID] = i
	}

	const query = `
        SELECT technician_id, service_type, created_at
        FROM technician_skills WHERE technician_id = ANY($1)
        ORDER BY technician_id, service_type`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var skill domain.TechnicianSkill
		if err := rows.Scan(&skill.TechnicianID, &skill.ServiceType, &skill.CreatedAt); err != nil {
			return err
		}
		i := index[skill.TechnicianID]
		technicians[i].Skills = append(technicians[i].Skills, skill)
	}
	return rows.Err()
}

func (r *technicianRepository) AddSkill(ctx context.Context, skill domain.TechnicianSkill) error {
	const query = `
        INSERT INTO technician_skills (technician_id, service_type, created_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (technician_id, service_type) DO NOTHING`
	_, err := r.db.Exec(ctx, query, skill.TechnicianID, skill.ServiceType, skill.CreatedAt)
	return err
}

func (r *technicianRepository) RemoveSkill(ctx context.Context, technicianID string, serviceType domain.ServiceType) error {
	return expectOneRow(r.db.Exec(ctx,
		`DELETE FROM technician_skills WHERE technician_id=$1 AND service_type=$2`,
		technicianID, serviceType))
}
