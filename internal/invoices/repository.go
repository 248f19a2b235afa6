package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camino-saas/camino/internal/platform/db"
)

// Repository persists invoices. Creation is transactional: the invoice, its
// lines and the invoiced flag on every billed note land together or not at
// all.
type Repository interface {
	Create(ctx context.Context, inv *Invoice, markAt time.Time) error
	Get(ctx context.Context, tenantID, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `id, invoice_number, tenant_id, client_name, issue_date,
	subtotal_cents, tax_rate, tax_cents, total_cents, created_at`

// Create assigns the per-tenant invoice number, inserts the invoice and its
// lines, and flips is_invoiced on each billed note. A note that is trashed
// or already invoiced aborts the whole transaction with ErrNoteNotBillable.
func (r *repository) Create(ctx context.Context, inv *Invoice, markAt time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO invoice_sequences (tenant_id, seq)
			VALUES ($1, 1)
			ON CONFLICT (tenant_id)
			DO UPDATE SET seq = invoice_sequences.seq + 1
			RETURNING seq
		`, inv.TenantID).Scan(&inv.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("assign invoice number: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO invoices (
				invoice_number, tenant_id, client_name, issue_date,
				subtotal_cents, tax_rate, tax_cents, total_cents
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at
		`,
			inv.InvoiceNumber, inv.TenantID, inv.ClientName, inv.IssueDate,
			inv.SubtotalCents, inv.TaxRate, inv.TaxCents, inv.TotalCents,
		).Scan(&inv.ID, &inv.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		for i := range inv.Lines {
			line := &inv.Lines[i]
			line.InvoiceID = inv.ID

			// Guarded update: a trashed or already-invoiced note
			// matches no row and fails the whole invoice.
			tag, err := tx.Exec(ctx, `
				UPDATE delivery_notes
				SET is_invoiced = TRUE, invoiced_at = $1
				WHERE id = $2 AND tenant_id = $3
				  AND deleted_at IS NULL AND is_invoiced = FALSE
			`, markAt, line.NoteID, inv.TenantID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: note %d", ErrNoteNotBillable, line.NoteID)
			}

			err = tx.QueryRow(ctx, `
				INSERT INTO invoice_lines (invoice_id, note_id, note_number, description, amount_cents)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, line.InvoiceID, line.NoteID, line.NoteNumber, line.Description, line.AmountCents).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) Get(ctx context.Context, tenantID, id int64) (*Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1 AND tenant_id = $2`, invoiceColumns),
		id, tenantID,
	).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.TenantID, &inv.ClientName, &inv.IssueDate,
		&inv.SubtotalCents, &inv.TaxRate, &inv.TaxCents, &inv.TotalCents, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, note_id, note_number, description, amount_cents
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id
	`, inv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.NoteID, &l.NoteNumber, &l.Description, &l.AmountCents); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	conditions := "WHERE tenant_id = $1"
	args := []any{req.TenantID}
	if req.DateFrom != nil {
		args = append(args, *req.DateFrom)
		conditions += fmt.Sprintf(" AND issue_date >= $%d", len(args))
	}
	if req.DateTo != nil {
		args = append(args, *req.DateTo)
		conditions += fmt.Sprintf(" AND issue_date <= $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices "+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.Limit, req.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM invoices %s ORDER BY invoice_number DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, conditions, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.TenantID, &inv.ClientName, &inv.IssueDate,
			&inv.SubtotalCents, &inv.TaxRate, &inv.TaxCents, &inv.TotalCents, &inv.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}
