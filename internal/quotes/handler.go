package quotes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// Handler exposes the quote endpoints. Admin-only, enforced by the router.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers quote routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/send", h.transitionTo(StatusSent))
	r.Post("/{id}/accept", h.transitionTo(StatusAccepted))
	r.Post("/{id}/reject", h.transitionTo(StatusRejected))
	r.Post("/{id}/convert", h.convert)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 50
	req := ListQuotesRequest{Limit: limit, Offset: (page - 1) * limit}
	if v := q.Get("status"); v != "" {
		st := Status(v)
		req.Status = &st
	}

	quotes, total, err := h.service.List(r.Context(), ident, req)
	if err != nil {
		h.logger.Error("list quotes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotes":     quotes,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	quote, err := h.service.Create(r.Context(), ident, req)
	if err != nil {
		h.respondError(w, "create quote", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	quote, err := h.service.Get(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, "get quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	var req UpdateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	quote, err := h.service.Update(r.Context(), ident, id, req)
	if err != nil {
		h.respondError(w, "update quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), ident, id); err != nil {
		h.respondError(w, "delete quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (h *Handler) transitionTo(to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := shared.IdentityFromContext(r.Context())

		id, ok := quoteID(w, r)
		if !ok {
			return
		}
		quote, err := h.service.ChangeStatus(r.Context(), ident, id, to)
		if err != nil {
			h.respondError(w, "change quote status", err)
			return
		}
		httpx.JSON(w, http.StatusOK, quote)
	}
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())

	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	var req ConvertQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	quote, note, err := h.service.Convert(r.Context(), ident, id, req)
	if err != nil {
		h.respondError(w, "convert quote", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"quote": quote,
		"note":  notes.NewNoteResponse(note),
	})
}

func quoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
