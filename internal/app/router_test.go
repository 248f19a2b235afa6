package app

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camino-saas/camino/internal/auth"
	"github.com/camino-saas/camino/internal/invoices"
	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/quotes"
	"github.com/camino-saas/camino/internal/tenants"
	"github.com/camino-saas/camino/internal/users"
)

func TestRouterMountsDeliveryNoteRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	router := NewRouter(RouterParams{
		Logger:   logger,
		Config:   &Config{},
		AuthMW:   auth.Middleware{Logger: logger},
		Auth:     auth.NewHandler(logger, nil, auth.Middleware{Logger: logger}),
		Tenants:  tenants.NewHandler(logger, nil),
		Users:    users.NewHandler(logger, nil),
		Notes:    notes.NewHandler(logger, nil, nil),
		Invoices: invoices.NewHandler(logger, nil, nil),
		Quotes:   quotes.NewHandler(logger, nil),
	})

	routes := map[string]bool{}
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"POST /api/delivery-notes/",
		"GET /api/delivery-notes/",
		"GET /api/delivery-notes/{id}",
		"PATCH /api/delivery-notes/{id}",
		"DELETE /api/delivery-notes/{id}",
		"GET /api/delivery-notes/deleted",
		"POST /api/delivery-notes/{id}/restore",
		"DELETE /api/delivery-notes/{id}/permanent",
		"POST /api/delivery-notes/{id}/toggle-invoiced",
		"POST /api/invoices/",
		"POST /api/quotes/{id}/convert",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}

	for route := range routes {
		assert.False(t, strings.Contains(route, "/api/notes"), "unexpected route %s", route)
	}
}
