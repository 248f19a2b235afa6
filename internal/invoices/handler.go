package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// PDFRenderer turns an invoice into a printable document.
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, inv *Invoice) ([]byte, error)
}

// Handler exposes the invoice endpoints. All of them are admin-only; the
// router enforces that.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     PDFRenderer
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Get("/{id}/pdf", h.renderPDF)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 50
	req := ListInvoicesRequest{Limit: limit, Offset: (page - 1) * limit}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid date_from")
			return
		}
		req.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid date_to")
			return
		}
		req.DateTo = &t
	}

	invoices, total, err := h.service.List(r.Context(), ident, req)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   invoices,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	inv, err := h.service.Create(r.Context(), ident, req)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) renderPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "document rendering is not configured")
		return
	}
	ident := shared.IdentityFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "render invoice pdf", err)
		return
	}

	doc, err := h.pdf.RenderInvoice(r.Context(), inv)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "document renderer unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`inline; filename="invoice-%d.pdf"`, inv.InvoiceNumber))
	_, _ = w.Write(doc)
}

func invoiceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, ErrNoteNotBillable):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
