package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camino-saas/camino/internal/platform/db"
)

var (
	ErrNotFound = errors.New("delivery note not found")
)

// Repository provides persistence for delivery notes. All operations are
// tenant-scoped; an id belonging to another tenant behaves as not found.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NextNoteNumber(ctx context.Context, tenantID int64) (int64, error)
	Create(ctx context.Context, note DeliveryNote) (int64, error)
	Get(ctx context.Context, tenantID, id int64) (*DeliveryNote, error)
	List(ctx context.Context, req ListNotesRequest) ([]DeliveryNote, int, error)
	ListDeleted(ctx context.Context, tenantID int64, limit, offset int) ([]DeliveryNote, int, error)
	Update(ctx context.Context, tenantID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, tenantID, id, deletedBy int64, at time.Time) error
	Restore(ctx context.Context, tenantID, id int64) error
	HardDelete(ctx context.Context, tenantID, id int64) error
	ListInvoiceCandidates(ctx context.Context, tenantID int64) ([]DeliveryNote, error)
	SetInvoiced(ctx context.Context, tenantID, id int64, invoiced bool, at *time.Time) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed note repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const noteColumns = `id, note_number, tenant_id, worker_id, creator_type,
	client_name, destination, vehicle_type, note_date, note_time, observations, wait_time,
	pickup_origins, photo,
	origin_signature, origin_signature_document, origin_signed_at,
	destination_signature, destination_signature_document, destination_signed_at,
	signature, status, is_invoiced, invoiced_at,
	arrived_at, departed_at, deleted_at, deleted_by, created_at, signed_at`

// NextNoteNumber reserves the next sequential number for the tenant via an
// upsert on note_sequences, so concurrent creates never collide.
func (r *repository) NextNoteNumber(ctx context.Context, tenantID int64) (int64, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO note_sequences (tenant_id, seq)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET seq = note_sequences.seq + 1
		RETURNING seq
	`, tenantID).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *repository) Create(ctx context.Context, note DeliveryNote) (int64, error) {
	origins, err := json.Marshal(note.PickupOrigins)
	if err != nil {
		return 0, fmt.Errorf("encode pickup origins: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO delivery_notes (
			note_number, tenant_id, worker_id, creator_type,
			client_name, client_name_norm, destination, vehicle_type,
			note_date, note_time, observations, wait_time,
			pickup_origins, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`,
		note.NoteNumber, note.TenantID, note.WorkerID, note.Creator,
		note.ClientName, FoldSearchTerm(note.ClientName), note.Destination, note.VehicleType,
		note.Date, note.Time, note.Observations, note.WaitTime,
		origins, note.Status,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, tenantID, id int64) (*DeliveryNote, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM delivery_notes WHERE id = $1 AND tenant_id = $2`, noteColumns),
		id, tenantID)
	return scanNote(row)
}

func (r *repository) List(ctx context.Context, req ListNotesRequest) ([]DeliveryNote, int, error) {
	conditions := []string{"tenant_id = $1", "deleted_at IS NULL"}
	args := []any{req.TenantID}

	if req.WorkerID != nil {
		args = append(args, *req.WorkerID)
		conditions = append(conditions, fmt.Sprintf("worker_id = $%d", len(args)))
	}
	if req.Status != nil {
		args = append(args, *req.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.Search != nil {
		args = append(args, "%"+FoldSearchTerm(*req.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("client_name_norm LIKE $%d", len(args)))
	}
	if req.DateFrom != nil {
		args = append(args, *req.DateFrom)
		conditions = append(conditions, fmt.Sprintf("note_date >= $%d", len(args)))
	}
	if req.DateTo != nil {
		args = append(args, *req.DateTo)
		conditions = append(conditions, fmt.Sprintf("note_date <= $%d", len(args)))
	}
	if req.Invoiced != nil {
		args = append(args, *req.Invoiced)
		conditions = append(conditions, fmt.Sprintf("is_invoiced = $%d", len(args)))
	}

	where := "WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM delivery_notes "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM delivery_notes %s ORDER BY note_number DESC`, noteColumns, where)
	if req.Limit > 0 {
		args = append(args, req.Limit, req.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanNotes(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) ListDeleted(ctx context.Context, tenantID int64, limit, offset int) ([]DeliveryNote, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM delivery_notes WHERE tenant_id = $1 AND deleted_at IS NOT NULL`,
		tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM delivery_notes
		WHERE tenant_id = $1 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
		LIMIT $2 OFFSET $3
	`, noteColumns), tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanNotes(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// updatableColumns lists every column a PATCH may touch, in write order.
var updatableColumns = []string{
	"client_name", "destination", "vehicle_type", "observations", "wait_time",
	"photo",
	"origin_signature", "origin_signature_document", "origin_signed_at",
	"destination_signature", "destination_signature_document", "destination_signed_at",
	"signature", "status", "is_invoiced", "invoiced_at",
	"arrived_at", "departed_at", "signed_at", "pickup_origins",
}

// setOnceColumns are written with COALESCE so the first recorded timestamp
// wins over any later partial save.
var setOnceColumns = map[string]bool{
	"origin_signed_at":      true,
	"destination_signed_at": true,
}

func (r *repository) Update(ctx context.Context, tenantID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	query := "UPDATE delivery_notes SET"
	var args []any
	sep := " "
	for _, col := range updatableColumns {
		v, ok := updates[col]
		if !ok {
			continue
		}
		args = append(args, v)
		if setOnceColumns[col] {
			query += fmt.Sprintf("%s%s = COALESCE(%s, $%d)", sep, col, col, len(args))
		} else {
			query += fmt.Sprintf("%s%s = $%d", sep, col, len(args))
		}
		if col == "client_name" {
			if name, ok := v.(string); ok {
				args = append(args, FoldSearchTerm(name))
				query += fmt.Sprintf(", client_name_norm = $%d", len(args))
			}
		}
		sep = ", "
	}
	if len(args) == 0 {
		return nil
	}

	args = append(args, id, tenantID)
	query += fmt.Sprintf(" WHERE id = $%d AND tenant_id = $%d", len(args)-1, len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, tenantID, id, deletedBy int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE delivery_notes SET deleted_at = $1, deleted_by = $2
		WHERE id = $3 AND tenant_id = $4 AND deleted_at IS NULL
	`, at, deletedBy, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Restore(ctx context.Context, tenantID, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE delivery_notes SET deleted_at = NULL, deleted_by = NULL
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NOT NULL
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) HardDelete(ctx context.Context, tenantID, id int64) error {
	// Only trashed rows may be purged; the trash view is the sole entry point.
	tag, err := r.db.Exec(ctx, `
		DELETE FROM delivery_notes
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NOT NULL
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInvoiceCandidates returns active, not-yet-invoiced notes. Completion is
// decided by the shared predicate in the service layer, never re-encoded in
// SQL.
func (r *repository) ListInvoiceCandidates(ctx context.Context, tenantID int64) ([]DeliveryNote, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM delivery_notes
		WHERE tenant_id = $1 AND deleted_at IS NULL AND is_invoiced = FALSE
		ORDER BY note_number
	`, noteColumns), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

func (r *repository) SetInvoiced(ctx context.Context, tenantID, id int64, invoiced bool, at *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE delivery_notes SET is_invoiced = $1, invoiced_at = $2
		WHERE id = $3 AND tenant_id = $4 AND deleted_at IS NULL
	`, invoiced, at, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*DeliveryNote, error) {
	var n DeliveryNote
	var origins []byte
	err := row.Scan(
		&n.ID, &n.NoteNumber, &n.TenantID, &n.WorkerID, &n.Creator,
		&n.ClientName, &n.Destination, &n.VehicleType, &n.Date, &n.Time, &n.Observations, &n.WaitTime,
		&origins, &n.Photo,
		&n.OriginSignature, &n.OriginSignatureDocument, &n.OriginSignedAt,
		&n.DestinationSignature, &n.DestinationSignatureDocument, &n.DestinationSignedAt,
		&n.Signature, &n.Status, &n.IsInvoiced, &n.InvoicedAt,
		&n.ArrivedAt, &n.DepartedAt, &n.DeletedAt, &n.DeletedBy, &n.CreatedAt, &n.SignedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(origins) > 0 {
		if err := json.Unmarshal(origins, &n.PickupOrigins); err != nil {
			return nil, fmt.Errorf("decode pickup origins: %w", err)
		}
	}
	return &n, nil
}

func scanNotes(rows pgx.Rows) ([]DeliveryNote, error) {
	var out []DeliveryNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
