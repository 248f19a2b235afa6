package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// NoteReader is the slice of the note repository the invoicing gate needs.
type NoteReader interface {
	Get(ctx context.Context, tenantID, id int64) (*notes.DeliveryNote, error)
}

// Metrics abstracts the counters the service increments.
type Metrics interface {
	InvoiceCreated()
}

type nopMetrics struct{}

func (nopMetrics) InvoiceCreated() {}

// Events receives invoice state changes after commit.
type Events interface {
	InvoiceCreated(ctx context.Context, tenantID, invoiceID int64)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) InvoiceCreated(context.Context, int64, int64) {}

// Service implements invoice creation and listing.
type Service struct {
	repo    Repository
	notes   NoteReader
	audit   *shared.AuditLogger
	logger  *slog.Logger
	metrics Metrics
	events  Events
	mode    notes.CaptureMode
	now     func() time.Time
}

// ServiceParams collects Service dependencies.
type ServiceParams struct {
	Repo    Repository
	Notes   NoteReader
	Audit   *shared.AuditLogger
	Logger  *slog.Logger
	Metrics Metrics
	Events  Events
	Mode    notes.CaptureMode
}

// NewService constructs the invoice service.
func NewService(p ServiceParams) *Service {
	if p.Metrics == nil {
		p.Metrics = nopMetrics{}
	}
	if p.Events == nil {
		p.Events = NopEvents{}
	}
	if p.Mode == "" {
		p.Mode = notes.CaptureDocumentPlusDrawing
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Service{
		repo:    p.Repo,
		notes:   p.Notes,
		audit:   p.Audit,
		logger:  p.Logger,
		metrics: p.Metrics,
		events:  p.Events,
		mode:    p.Mode,
		now:     time.Now,
	}
}

// Create builds an invoice from the requested notes. Every note must be
// active, fully signed and not yet invoiced; the transactional insert
// re-checks the invoiced flag so a concurrent invoice cannot bill the same
// note twice.
func (s *Service) Create(ctx context.Context, ident *shared.Identity, req CreateInvoiceRequest) (*Invoice, error) {
	if err := shared.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	inv := Invoice{
		TenantID:   ident.TenantID,
		ClientName: req.ClientName,
		IssueDate:  req.IssueDate,
		TaxRate:    req.TaxRate,
	}

	seen := map[int64]bool{}
	for _, lr := range req.Lines {
		if seen[lr.NoteID] {
			return nil, fmt.Errorf("%w: note %d listed twice", httpx.ErrValidation, lr.NoteID)
		}
		seen[lr.NoteID] = true

		note, err := s.notes.Get(ctx, ident.TenantID, lr.NoteID)
		if err != nil {
			if errors.Is(err, notes.ErrNotFound) {
				return nil, fmt.Errorf("%w: note %d not found", httpx.ErrValidation, lr.NoteID)
			}
			return nil, err
		}
		if note.Lifecycle() == notes.LifecycleTrashed || note.IsInvoiced {
			return nil, fmt.Errorf("%w: note %d", ErrNoteNotBillable, lr.NoteID)
		}
		if !notes.FullySignedInMode(note, s.mode) {
			return nil, fmt.Errorf("%w: note %d is not fully signed", ErrNoteNotBillable, lr.NoteID)
		}

		desc := lr.Description
		if desc == "" {
			desc = fmt.Sprintf("Delivery note #%d - %s", note.NoteNumber, note.Destination)
		}
		inv.Lines = append(inv.Lines, Line{
			NoteID:      note.ID,
			NoteNumber:  note.NoteNumber,
			Description: desc,
			AmountCents: lr.AmountCents,
		})
	}
	inv.Totals()

	if err := s.repo.Create(ctx, &inv, s.now()); err != nil {
		return nil, err
	}

	s.metrics.InvoiceCreated()
	s.events.InvoiceCreated(ctx, inv.TenantID, inv.ID)
	s.recordAudit(ctx, ident, inv.ID, len(inv.Lines))
	s.logger.Info("invoice created",
		slog.Int64("tenant_id", inv.TenantID),
		slog.Int64("invoice_id", inv.ID),
		slog.Int64("invoice_number", inv.InvoiceNumber),
		slog.Int("lines", len(inv.Lines)))
	return &inv, nil
}

// Get fetches one invoice with its lines.
func (s *Service) Get(ctx context.Context, ident *shared.Identity, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, ident.TenantID, id)
}

// List returns the tenant's invoices, newest first.
func (s *Service) List(ctx context.Context, ident *shared.Identity, req ListInvoicesRequest) ([]Invoice, int, error) {
	req.TenantID = ident.TenantID
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) recordAudit(ctx context.Context, ident *shared.Identity, invoiceID int64, lines int) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		TenantID: ident.TenantID,
		ActorID:  ident.UserID,
		Action:   "invoice.create",
		Entity:   "invoice",
		EntityID: fmt.Sprintf("%d", invoiceID),
		Meta:     map[string]any{"lines": lines},
		At:       s.now(),
	})
	if err != nil {
		s.logger.Error("audit record", slog.Any("error", err))
	}
}
