package repository

import (
	"context"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
)

// ClientRepository handles persistence for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
}

type clientRepository struct {
	db DBTX
}

// NewClientRepository instantiates the repository.
func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (id, name, email, phone, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.Exec(ctx, query,
		client.ID,
		client.Name,
		client.Email,
		client.Phone,
		client.Status,
		client.CreatedAt,
		client.UpdatedAt,
	)
	return err
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	const query = `
        UPDATE clients SET name=$1, email=$2, phone=$3, status=$4, updated_at=$5
        WHERE id=$6`
	return expectOneRow(r.db.Exec(ctx, query,
		client.Name,
		client.Email,
		client.Phone,
		client.Status,
		client.UpdatedAt,
		client.ID,
	))
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id))
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return r.fetchSingle(ctx, `
        SELECT id, name, email, phone, status, created_at, updated_at
        FROM clients WHERE id=$1`, id)
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return r.fetchSingle(ctx, `
        SELECT id, name, email, phone, status, created_at, updated_at
        FROM clients WHERE lower(email)=lower($1)`, email)
}

func (r *clientRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Status,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, notFoundOr(err)
	}
	return &client, nil
}
