package notes

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

// PDFRenderer turns a note into a printable document. Implemented by the
// report package; nil disables the endpoint.
type PDFRenderer interface {
	RenderNote(ctx context.Context, note *NoteResponse) ([]byte, error)
}

// Handler exposes the delivery note endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     PDFRenderer
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf}
}

// MountRoutes registers note routes on an authenticated router. adminOnly
// wraps the endpoints reserved for tenant admins.
func (h *Handler) MountRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Get("/{id}/pdf", h.renderPDF)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/deleted", h.listDeleted)
		r.Get("/export", h.exportXLSX)
		r.Get("/invoice-candidates", h.invoiceCandidates)
		r.Post("/{id}/restore", h.restore)
		r.Delete("/{id}/permanent", h.purge)
		r.Post("/{id}/toggle-invoiced", h.toggleInvoiced)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	req, err := parseListQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	resp, err := h.service.List(r.Context(), ident, req)
	if err != nil {
		h.respondError(w, "list notes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (ListNotesRequest, error) {
	q := r.URL.Query()
	var req ListNotesRequest

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return req, fmt.Errorf("invalid page %q", v)
		}
		page = p
	}
	req.Limit = 50
	if v := q.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return req, fmt.Errorf("invalid limit %q", v)
		}
		req.Limit = l
	}
	req.Offset = (page - 1) * req.Limit

	if v := q.Get("worker_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid worker_id %q", v)
		}
		req.WorkerID = &id
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, fmt.Errorf("invalid date_from %q", v)
		}
		req.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, fmt.Errorf("invalid date_to %q", v)
		}
		req.DateTo = &t
	}
	if v := q.Get("fully_signed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid fully_signed %q", v)
		}
		req.FullySigned = &b
	}
	if v := q.Get("invoiced"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid invoiced %q", v)
		}
		req.Invoiced = &b
	}
	return req, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	var req CreateNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	note, err := h.service.Create(r.Context(), ident, req)
	if err != nil {
		h.respondError(w, "create note", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewNoteResponse(note))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, err := h.service.Get(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "get note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewNoteResponse(note))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	note, err := h.service.Update(r.Context(), ident, id, req)
	if err != nil {
		h.respondError(w, "update note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewNoteResponse(note))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), ident, id); err != nil {
		h.respondError(w, "trash note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 50
	resp, err := h.service.ListDeleted(r.Context(), ident, limit, (page-1)*limit)
	if err != nil {
		h.respondError(w, "list deleted notes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, err := h.service.Restore(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "restore note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewNoteResponse(note))
}

func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	if err := h.service.Purge(r.Context(), ident, id); err != nil {
		h.respondError(w, "purge note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "purged": true})
}

func (h *Handler) toggleInvoiced(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, err := h.service.ToggleInvoiced(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "toggle invoiced", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewNoteResponse(note))
}

func (h *Handler) invoiceCandidates(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	candidates, err := h.service.InvoiceCandidates(r.Context(), ident)
	if err != nil {
		h.respondError(w, "list invoice candidates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notes": candidates})
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	req, err := parseListQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	req.Limit = 0
	req.Offset = 0

	resp, err := h.service.List(r.Context(), ident, req)
	if err != nil {
		h.respondError(w, "export notes", err)
		return
	}

	book, err := ExportXLSX(resp.Notes)
	if err != nil {
		h.logger.Error("build xlsx", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="delivery-notes-%s.xlsx"`, time.Now().Format("2006-01-02")))
	if err := book.Write(w); err != nil {
		h.logger.Error("write xlsx", slog.Any("error", err))
	}
}

func (h *Handler) renderPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "document rendering is not configured")
		return
	}
	ident := shared.IdentityFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, err := h.service.Get(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "render note pdf", err)
		return
	}

	resp := NewNoteResponse(note)
	doc, err := h.pdf.RenderNote(r.Context(), &resp)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "document renderer unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`inline; filename="delivery-note-%d.pdf"`, note.NoteNumber))
	_, _ = w.Write(doc)
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid note id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "delivery note not found")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
