package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, tenantID, id int64) (*Quote, error)
	List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error)
	Update(ctx context.Context, q *Quote) error
	Delete(ctx context.Context, tenantID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed quote repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const quoteColumns = `id, quote_number, tenant_id, client_name, origin, destination,
	vehicle_type, service_date, amount_cents, notes, status, converted_note_id,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, q *Quote) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quote_sequences (tenant_id, seq)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET seq = quote_sequences.seq + 1
		RETURNING seq
	`, q.TenantID).Scan(&q.QuoteNumber)
	if err != nil {
		return fmt.Errorf("assign quote number: %w", err)
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO quotes (
			quote_number, tenant_id, client_name, origin, destination,
			vehicle_type, service_date, amount_cents, notes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		q.QuoteNumber, q.TenantID, q.ClientName, q.Origin, q.Destination,
		q.VehicleType, q.ServiceDate, q.AmountCents, q.Notes, q.Status,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

func (r *repository) Get(ctx context.Context, tenantID, id int64) (*Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM quotes WHERE id = $1 AND tenant_id = $2`, quoteColumns),
		id, tenantID,
	).Scan(
		&q.ID, &q.QuoteNumber, &q.TenantID, &q.ClientName, &q.Origin, &q.Destination,
		&q.VehicleType, &q.ServiceDate, &q.AmountCents, &q.Notes, &q.Status, &q.ConvertedNoteID,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	conditions := "WHERE tenant_id = $1"
	args := []any{req.TenantID}
	if req.Status != nil {
		args = append(args, *req.Status)
		conditions += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quotes "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM quotes %s ORDER BY quote_number DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, conditions, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		var q Quote
		err := rows.Scan(
			&q.ID, &q.QuoteNumber, &q.TenantID, &q.ClientName, &q.Origin, &q.Destination,
			&q.VehicleType, &q.ServiceDate, &q.AmountCents, &q.Notes, &q.Status, &q.ConvertedNoteID,
			&q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, q *Quote) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quotes SET
			client_name = $1, origin = $2, destination = $3, vehicle_type = $4,
			service_date = $5, amount_cents = $6, notes = $7, status = $8,
			converted_note_id = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11
	`,
		q.ClientName, q.Origin, q.Destination, q.VehicleType,
		q.ServiceDate, q.AmountCents, q.Notes, q.Status,
		q.ConvertedNoteID, q.ID, q.TenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
