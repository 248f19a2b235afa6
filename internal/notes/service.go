package notes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// Events receives side effects of note state changes. The worker process
// implements it with asynq tasks; tests use a stub.
type Events interface {
	NoteFullySigned(ctx context.Context, tenantID, noteID int64)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) NoteFullySigned(context.Context, int64, int64) {}

// Metrics abstracts the observability counters the service increments.
type Metrics interface {
	NoteSigned()
}

type nopMetrics struct{}

func (nopMetrics) NoteSigned() {}

// Service implements the delivery note business rules on top of Repository.
type Service struct {
	repo    Repository
	audit   *shared.AuditLogger
	logger  *slog.Logger
	events  Events
	metrics Metrics
	mode    CaptureMode
	now     func() time.Time
}

// ServiceParams collects Service dependencies.
type ServiceParams struct {
	Repo    Repository
	Audit   *shared.AuditLogger
	Logger  *slog.Logger
	Events  Events
	Metrics Metrics
	Mode    CaptureMode
}

// NewService constructs the note service.
func NewService(p ServiceParams) *Service {
	if p.Events == nil {
		p.Events = NopEvents{}
	}
	if p.Metrics == nil {
		p.Metrics = nopMetrics{}
	}
	if p.Mode == "" {
		p.Mode = CaptureDocumentPlusDrawing
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Service{
		repo:    p.Repo,
		audit:   p.Audit,
		logger:  p.Logger,
		events:  p.Events,
		metrics: p.Metrics,
		mode:    p.Mode,
		now:     time.Now,
	}
}

// Create registers a new pending note and assigns its per-tenant number.
// Workers always create notes for themselves; only admins may assign another
// worker.
func (s *Service) Create(ctx context.Context, ident *shared.Identity, req CreateNoteRequest) (*DeliveryNote, error) {
	if err := shared.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	workerID := req.WorkerID
	creator := CreatorAdmin
	if !ident.IsAdmin() {
		workerID = ident.UserID
		creator = CreatorWorker
	}

	origins := make([]PickupOrigin, 0, len(req.PickupOrigins))
	for _, o := range req.PickupOrigins {
		origins = append(origins, PickupOrigin{Name: o.Name, Address: o.Address, Location: o.Location})
	}

	note := DeliveryNote{
		TenantID:      ident.TenantID,
		WorkerID:      workerID,
		Creator:       creator,
		ClientName:    req.ClientName,
		Destination:   req.Destination,
		VehicleType:   req.VehicleType,
		Date:          req.Date,
		Time:          req.Time,
		Observations:  req.Observations,
		WaitTime:      req.WaitTime,
		PickupOrigins: origins,
		Status:        StatusPending,
	}

	var created *DeliveryNote
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		number, err := tx.NextNoteNumber(ctx, ident.TenantID)
		if err != nil {
			return fmt.Errorf("assign note number: %w", err)
		}
		note.NoteNumber = number

		id, err := tx.Create(ctx, note)
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		created, err = tx.Get(ctx, ident.TenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		slog.Int64("tenant_id", created.TenantID),
		slog.Int64("note_id", created.ID),
		slog.Int64("note_number", created.NoteNumber))
	return created, nil
}

// Get fetches an active note. Workers only see their own notes.
func (s *Service) Get(ctx context.Context, ident *shared.Identity, id int64) (*DeliveryNote, error) {
	note, err := s.repo.Get(ctx, ident.TenantID, id)
	if err != nil {
		return nil, err
	}
	if note.Lifecycle() == LifecycleTrashed {
		return nil, ErrNotFound
	}
	if !ident.IsAdmin() && note.WorkerID != ident.UserID {
		return nil, ErrNotFound
	}
	return note, nil
}

// List returns active notes matching the filters. Workers are pinned to
// their own notes regardless of the worker_id filter.
//
// The fully-signed filter is evaluated in Go with the shared predicate, so
// it can never drift from the badge and gate logic. When it is set the full
// tenant result is fetched and paginated in memory.
func (s *Service) List(ctx context.Context, ident *shared.Identity, req ListNotesRequest) (*ListNotesResponse, error) {
	req.TenantID = ident.TenantID
	if !ident.IsAdmin() {
		req.WorkerID = &ident.UserID
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	if err := shared.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	if req.FullySigned != nil {
		return s.listByCompletion(ctx, req)
	}

	notes, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return buildListResponse(notes, total, req.Limit, req.Offset), nil
}

func (s *Service) listByCompletion(ctx context.Context, req ListNotesRequest) (*ListNotesResponse, error) {
	want := *req.FullySigned
	limit, offset := req.Limit, req.Offset

	all := req
	all.Limit, all.Offset = 0, 0
	notes, _, err := s.repo.List(ctx, all)
	if err != nil {
		return nil, err
	}

	matched := notes[:0:0]
	for _, n := range notes {
		if FullySignedInMode(&n, s.mode) == want {
			matched = append(matched, n)
		}
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return buildListResponse(matched[offset:end], total, limit, offset), nil
}

func buildListResponse(notes []DeliveryNote, total, limit, offset int) *ListNotesResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, NewNoteResponse(&notes[i]))
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return &ListNotesResponse{
		Notes:      out,
		Pagination: shared.NewPagination(page, limit, total),
	}
}

// Update applies a partial edit. Only fields present in the payload are
// written; signature document IDs are normalized, signature timestamps are
// recorded once, and when the edit completes the signature set the note
// flips to signed exactly once. An isInvoiced flag in the payload goes
// through the same completion gate as ToggleInvoiced.
func (s *Service) Update(ctx context.Context, ident *shared.Identity, id int64, req UpdateNoteRequest) (*DeliveryNote, error) {
	if err := shared.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if req.Empty() {
		return s.Get(ctx, ident, id)
	}

	updates, err := s.buildUpdates(req)
	if err != nil {
		return nil, err
	}

	var (
		updated    *DeliveryNote
		justSigned bool
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		current, err := tx.Get(ctx, ident.TenantID, id)
		if err != nil {
			return err
		}
		if current.Lifecycle() == LifecycleTrashed {
			return fmt.Errorf("%w: note is in the trash", httpx.ErrConflict)
		}
		if !ident.IsAdmin() && current.WorkerID != ident.UserID {
			return ErrNotFound
		}

		if err := tx.Update(ctx, ident.TenantID, id, updates); err != nil {
			return err
		}

		updated, err = tx.Get(ctx, ident.TenantID, id)
		if err != nil {
			return err
		}

		if updated.SignedAt == nil && FullySignedInMode(updated, s.mode) {
			now := s.now()
			err = tx.Update(ctx, ident.TenantID, id, map[string]any{
				"signed_at": now,
				"status":    StatusSigned,
			})
			if err != nil {
				return err
			}
			updated.SignedAt = &now
			updated.Status = StatusSigned
			justSigned = true
		}

		// isInvoiced rides along in the PATCH body but goes through the
		// same gate as the explicit toggle.
		if req.IsInvoiced != nil && *req.IsInvoiced != updated.IsInvoiced {
			if *req.IsInvoiced {
				if !FullySignedInMode(updated, s.mode) {
					return fmt.Errorf("%w: note is not fully signed", httpx.ErrConflict)
				}
				now := s.now()
				if err := tx.SetInvoiced(ctx, ident.TenantID, id, true, &now); err != nil {
					return err
				}
				updated.IsInvoiced = true
				updated.InvoicedAt = &now
			} else {
				if err := tx.SetInvoiced(ctx, ident.TenantID, id, false, nil); err != nil {
					return err
				}
				updated.IsInvoiced = false
				updated.InvoicedAt = nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if justSigned {
		s.metrics.NoteSigned()
		s.events.NoteFullySigned(ctx, updated.TenantID, updated.ID)
		s.logger.Info("note fully signed",
			slog.Int64("tenant_id", updated.TenantID),
			slog.Int64("note_id", updated.ID))
	}
	return updated, nil
}

// buildUpdates translates the PATCH payload into column writes.
func (s *Service) buildUpdates(req UpdateNoteRequest) (map[string]any, error) {
	updates := map[string]any{}

	if req.ClientName != nil {
		updates["client_name"] = *req.ClientName
	}
	if req.Destination != nil {
		updates["destination"] = *req.Destination
	}
	if req.VehicleType != nil {
		updates["vehicle_type"] = *req.VehicleType
	}
	if req.Observations != nil {
		updates["observations"] = *req.Observations
	}
	if req.WaitTime != nil {
		updates["wait_time"] = *req.WaitTime
	}
	if req.Photo != nil {
		if !PhotoValid(*req.Photo) {
			return nil, fmt.Errorf("%w: photo payload too short", httpx.ErrValidation)
		}
		updates["photo"] = *req.Photo
	}
	if req.Signature != nil {
		updates["signature"] = *req.Signature
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.ArrivedAt != nil {
		updates["arrived_at"] = *req.ArrivedAt
	}
	if req.DepartedAt != nil {
		updates["departed_at"] = *req.DepartedAt
	}

	// In document-only deployments no drawing is ever captured, so drawing
	// payloads are dropped rather than stored.
	acceptDrawings := s.mode != CaptureDocumentOnly

	if acceptDrawings && req.OriginSignature != nil {
		updates["origin_signature"] = *req.OriginSignature
	}
	if req.OriginSignatureDocument != nil {
		doc, err := NormalizeDocumentID(*req.OriginSignatureDocument)
		if err != nil {
			return nil, fmt.Errorf("%w: origin %s", httpx.ErrValidation, err)
		}
		updates["origin_signature_document"] = doc
	}
	if (acceptDrawings && req.OriginSignature != nil) || req.OriginSignatureDocument != nil {
		updates["origin_signed_at"] = s.now()
	}

	if acceptDrawings && req.DestinationSignature != nil {
		updates["destination_signature"] = *req.DestinationSignature
	}
	if req.DestinationSignatureDocument != nil {
		doc, err := NormalizeDocumentID(*req.DestinationSignatureDocument)
		if err != nil {
			return nil, fmt.Errorf("%w: destination %s", httpx.ErrValidation, err)
		}
		updates["destination_signature_document"] = doc
	}
	if (acceptDrawings && req.DestinationSignature != nil) || req.DestinationSignatureDocument != nil {
		updates["destination_signed_at"] = s.now()
	}

	return updates, nil
}

// ToggleInvoiced flips the invoiced flag on an active note. Marking a note
// invoiced requires it to pass the completion predicate; clearing the flag
// has no precondition.
func (s *Service) ToggleInvoiced(ctx context.Context, ident *shared.Identity, id int64) (*DeliveryNote, error) {
	var updated *DeliveryNote
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		note, err := tx.Get(ctx, ident.TenantID, id)
		if err != nil {
			return err
		}
		if note.Lifecycle() == LifecycleTrashed {
			return fmt.Errorf("%w: note is in the trash", httpx.ErrConflict)
		}

		if note.IsInvoiced {
			if err := tx.SetInvoiced(ctx, ident.TenantID, id, false, nil); err != nil {
				return err
			}
		} else {
			if !FullySignedInMode(note, s.mode) {
				return fmt.Errorf("%w: note is not fully signed", httpx.ErrConflict)
			}
			now := s.now()
			if err := tx.SetInvoiced(ctx, ident.TenantID, id, true, &now); err != nil {
				return err
			}
		}
		updated, err = tx.Get(ctx, ident.TenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, ident, "note.toggle_invoiced", updated.ID, map[string]any{
		"is_invoiced": updated.IsInvoiced,
	})
	return updated, nil
}

// InvoiceCandidates returns the tenant's active notes that are fully signed
// and not yet invoiced, evaluated with the shared completion predicate.
func (s *Service) InvoiceCandidates(ctx context.Context, ident *shared.Identity) ([]NoteResponse, error) {
	notes, err := s.repo.ListInvoiceCandidates(ctx, ident.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		if FullySignedInMode(&notes[i], s.mode) {
			out = append(out, NewNoteResponse(&notes[i]))
		}
	}
	return out, nil
}

// Delete moves a note to the trash, preserving its number and content.
func (s *Service) Delete(ctx context.Context, ident *shared.Identity, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		note, err := tx.Get(ctx, ident.TenantID, id)
		if err != nil {
			return err
		}
		if !ident.IsAdmin() && note.WorkerID != ident.UserID {
			return ErrNotFound
		}
		if err := note.Trash(ident.UserID, s.now()); err != nil {
			return fmt.Errorf("%w: %s", httpx.ErrConflict, err)
		}
		return tx.SoftDelete(ctx, ident.TenantID, id, ident.UserID, *note.DeletedAt)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, ident, "note.trash", id, nil)
	return nil
}

// ListDeleted returns the tenant's trash. Admin only, enforced at the route.
func (s *Service) ListDeleted(ctx context.Context, ident *shared.Identity, limit, offset int) (*ListNotesResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	notes, total, err := s.repo.ListDeleted(ctx, ident.TenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	return buildListResponse(notes, total, limit, offset), nil
}

// Restore brings a trashed note back untouched: same number, same
// signatures, same invoicing state.
func (s *Service) Restore(ctx context.Context, ident *shared.Identity, id int64) (*DeliveryNote, error) {
	var restored *DeliveryNote
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		note, err := tx.Get(ctx, ident.TenantID, id)
		if err != nil {
			return err
		}
		if err := note.Untrash(); err != nil {
			return fmt.Errorf("%w: %s", httpx.ErrConflict, err)
		}
		if err := tx.Restore(ctx, ident.TenantID, id); err != nil {
			return err
		}
		restored, err = tx.Get(ctx, ident.TenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, ident, "note.restore", id, nil)
	return restored, nil
}

// Purge permanently removes a trashed note. Active notes cannot be purged.
func (s *Service) Purge(ctx context.Context, ident *shared.Identity, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		note, err := tx.Get(ctx, ident.TenantID, id)
		if err != nil {
			return err
		}
		if note.Lifecycle() != LifecycleTrashed {
			return fmt.Errorf("%w: only trashed notes can be purged", httpx.ErrConflict)
		}
		return tx.HardDelete(ctx, ident.TenantID, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, ident, "note.purge", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, ident *shared.Identity, action string, noteID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		TenantID: ident.TenantID,
		ActorID:  ident.UserID,
		Action:   action,
		Entity:   "delivery_note",
		EntityID: fmt.Sprintf("%d", noteID),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Error("audit record", slog.Any("error", err))
	}
}
