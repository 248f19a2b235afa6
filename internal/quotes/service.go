package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// NoteCreator creates the delivery note an accepted quote converts into.
// Implemented by the notes service.
type NoteCreator interface {
	Create(ctx context.Context, ident *shared.Identity, req notes.CreateNoteRequest) (*notes.DeliveryNote, error)
}

// Service implements the quote lifecycle.
type Service struct {
	repo   Repository
	notes  NoteCreator
	audit  *shared.AuditLogger
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the quote service.
func NewService(repo Repository, noteCreator NoteCreator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notes: noteCreator, audit: audit, logger: logger, now: time.Now}
}

// Create drafts a new quote.
func (s *Service) Create(ctx context.Context, ident *shared.Identity, req CreateQuoteRequest) (*Quote, error) {
	if err := shared.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	q := Quote{
		TenantID:    ident.TenantID,
		ClientName:  req.ClientName,
		Origin:      req.Origin,
		Destination: req.Destination,
		VehicleType: req.VehicleType,
		ServiceDate: req.ServiceDate,
		AmountCents: req.AmountCents,
		Notes:       req.Notes,
		Status:      StatusDraft,
	}
	if err := s.repo.Create(ctx, &q); err != nil {
		return nil, err
	}

	s.logger.Info("quote created",
		slog.Int64("tenant_id", q.TenantID),
		slog.Int64("quote_id", q.ID),
		slog.Int64("quote_number", q.QuoteNumber))
	return &q, nil
}

// Get fetches one quote.
func (s *Service) Get(ctx context.Context, ident *shared.Identity, id int64) (*Quote, error) {
	return s.repo.Get(ctx, ident.TenantID, id)
}

// List returns the tenant's quotes, newest first.
func (s *Service) List(ctx context.Context, ident *shared.Identity, req ListQuotesRequest) ([]Quote, int, error) {
	req.TenantID = ident.TenantID
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Update edits a quote. Only drafts are editable; sent and settled quotes
// are frozen.
func (s *Service) Update(ctx context.Context, ident *shared.Identity, id int64, req UpdateQuoteRequest) (*Quote, error) {
	if err := shared.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	q, err := s.repo.Get(ctx, ident.TenantID, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be edited", httpx.ErrConflict)
	}

	if req.ClientName != nil {
		q.ClientName = *req.ClientName
	}
	if req.Origin != nil {
		q.Origin = *req.Origin
	}
	if req.Destination != nil {
		q.Destination = *req.Destination
	}
	if req.VehicleType != nil {
		q.VehicleType = req.VehicleType
	}
	if req.ServiceDate != nil {
		q.ServiceDate = *req.ServiceDate
	}
	if req.AmountCents != nil {
		q.AmountCents = *req.AmountCents
	}
	if req.Notes != nil {
		q.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ChangeStatus applies a lifecycle transition (send, accept, reject).
func (s *Service) ChangeStatus(ctx context.Context, ident *shared.Identity, id int64, to Status) (*Quote, error) {
	q, err := s.repo.Get(ctx, ident.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := q.Transition(to); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrConflict, err)
	}
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, ident, "quote.status", q.ID, map[string]any{"status": q.Status})
	return q, nil
}

// Convert turns an accepted quote into a delivery note assigned to the given
// worker. A quote converts at most once.
func (s *Service) Convert(ctx context.Context, ident *shared.Identity, id int64, req ConvertQuoteRequest) (*Quote, *notes.DeliveryNote, error) {
	if err := shared.Validate(req); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	q, err := s.repo.Get(ctx, ident.TenantID, id)
	if err != nil {
		return nil, nil, err
	}
	if q.Status != StatusAccepted {
		return nil, nil, fmt.Errorf("%w: only accepted quotes can be converted", httpx.ErrConflict)
	}
	if q.ConvertedNoteID != nil {
		return nil, nil, fmt.Errorf("%w: quote already converted", httpx.ErrConflict)
	}

	note, err := s.notes.Create(ctx, ident, notes.CreateNoteRequest{
		WorkerID:     req.WorkerID,
		ClientName:   q.ClientName,
		Destination:  q.Destination,
		VehicleType:  q.VehicleType,
		Date:         q.ServiceDate,
		Observations: q.Notes,
		PickupOrigins: []notes.PickupOriginRequest{
			{Name: q.Origin, Address: q.Origin},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create note from quote: %w", err)
	}

	q.ConvertedNoteID = &note.ID
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, nil, err
	}

	s.recordAudit(ctx, ident, "quote.convert", q.ID, map[string]any{"note_id": note.ID})
	s.logger.Info("quote converted",
		slog.Int64("tenant_id", q.TenantID),
		slog.Int64("quote_id", q.ID),
		slog.Int64("note_id", note.ID))
	return q, note, nil
}

// Delete removes a quote. Draft and rejected quotes only.
func (s *Service) Delete(ctx context.Context, ident *shared.Identity, id int64) error {
	q, err := s.repo.Get(ctx, ident.TenantID, id)
	if err != nil {
		return err
	}
	if q.Status != StatusDraft && q.Status != StatusRejected {
		return fmt.Errorf("%w: only draft or rejected quotes can be deleted", httpx.ErrConflict)
	}
	if err := s.repo.Delete(ctx, ident.TenantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, ident, "quote.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, ident *shared.Identity, action string, quoteID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		TenantID: ident.TenantID,
		ActorID:  ident.UserID,
		Action:   action,
		Entity:   "quote",
		EntityID: fmt.Sprintf("%d", quoteID),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Error("audit record", slog.Any("error", err))
	}
}
