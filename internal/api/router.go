package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/skald/internal/pageservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *pageservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pages.
	r.Get("/pages", h.ListPages)
	r.Post("/pages", h.CreatePage)
	r.Get("/pages/slug/{slug}", h.GetPageBySlug)
	r.Get("/pages/{id}", h.GetPage)
	r.Put("/pages/{id}/draft", h.SaveDraft)
	r.Delete("/pages/{id}/draft", h.DiscardDraft)
	r.Post("/pages/{id}/publish", h.PublishPage)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
