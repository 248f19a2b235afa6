package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/camino-saas/camino/internal/platform/httpx"
	"github.com/camino-saas/camino/internal/shared"
)

// Handler manages worker account endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers worker routes. All of them are admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/deactivate", h.deactivate)
	r.Post("/{id}/activate", h.activate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 50
	offset := (page - 1) * limit

	workers, total, err := h.service.ListWorkers(r.Context(), id.TenantID, limit, offset)
	if err != nil {
		h.logger.Error("list workers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"workers":    workers,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())

	var req CreateWorkerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	worker, err := h.service.CreateWorker(r.Context(), id.TenantID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, worker)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	identity := shared.IdentityFromContext(r.Context())

	workerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid worker id")
		return
	}

	var svcErr error
	if active {
		svcErr = h.service.Activate(r.Context(), identity.TenantID, workerID)
	} else {
		svcErr = h.service.Deactivate(r.Context(), identity.TenantID, workerID)
	}
	if svcErr != nil {
		if errors.Is(svcErr, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "worker not found")
			return
		}
		h.logger.Error("set worker active", slog.Any("error", svcErr))
		httpx.RespondError(w, svcErr)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"id": workerID, "active": active})
}
