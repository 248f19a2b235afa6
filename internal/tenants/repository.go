package tenants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the tenant does not exist.
var ErrNotFound = errors.New("tenant not found")

// Repository provides persistence for tenants.
type Repository interface {
	Get(ctx context.Context, id int64) (*Tenant, error)
	ListActive(ctx context.Context) ([]Tenant, error)
	Create(ctx context.Context, tenant Tenant) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed tenant repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const tenantColumns = `id, name, tax_id, address, contact_email, active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Tenant, error) {
	var t Tenant
	err := r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.TaxID, &t.Address, &t.ContactEmail, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Tenant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.TaxID, &t.Address, &t.ContactEmail, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, tenant Tenant) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tenants (name, tax_id, address, contact_email, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, tenant.Name, tenant.TaxID, tenant.Address, tenant.ContactEmail, tenant.Active).Scan(&id)
	return id, err
}
