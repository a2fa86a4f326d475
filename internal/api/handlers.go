package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/pageservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *pageservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pageservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps domain errors onto HTTP responses. op and id are for the
// log line only.
func writeError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrRemoteUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody("ledger unavailable"))
	default:
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListPages handles GET /api/pages.
//
//	@Summary		List pages, merging confirmed notes and local drafts
//	@Tags			pages
//	@Produce		json
//	@Success		200	{object}	PageListResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "list pages", "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": items,
		"total": len(items),
	})
}

// CreatePage handles POST /api/pages.
//
//	@Summary		Create a fresh local page
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreatePageRequest	true	"Page kind"
//	@Success		201		{object}	PageDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages [post]
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	view, err := h.svc.NewPage(r.Context(), req.Kind)
	if err != nil {
		writeError(w, "create page", "", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetPage handles GET /api/pages/{id}.
//
//	@Summary		Get the effective page: local draft reconciled with the ledger record
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Page id"
//	@Success		200	{object}	PageDetail
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.svc.Load(r.Context(), id)
	if err != nil {
		writeError(w, "get page", id, err)
		return
	}
	if view.Checksum != "" {
		w.Header().Set("ETag", `"`+view.Checksum+`"`)
	}
	writeJSON(w, http.StatusOK, view)
}

// GetPageBySlug handles GET /api/pages/slug/{slug}.
//
//	@Summary		Resolve a page through the ledger's slug index
//	@Tags			pages
//	@Produce		json
//	@Param			slug	path		string	true	"Page slug"
//	@Success		200		{object}	PageDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/slug/{slug} [get]
func (h *Handler) GetPageBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	view, err := h.svc.LoadBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, "get page by slug", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SaveDraft handles PUT /api/pages/{id}/draft.
//
//	@Summary		Save a draft with optional optimistic concurrency
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Page id"
//	@Param			If-Match	header		string				false	"Draft checksum for optimistic concurrency"
//	@Param			body		body		SaveDraftRequest	true	"Draft content"
//	@Success		200			{object}	PageDetail
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/draft [put]
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")

	var req SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	view, err := h.svc.SaveDraft(r.Context(), id, req.Kind, req.Fields, ifMatch)
	if err != nil {
		writeError(w, "save draft", id, err)
		return
	}
	w.Header().Set("ETag", `"`+view.Checksum+`"`)
	writeJSON(w, http.StatusOK, view)
}

// DiscardDraft handles DELETE /api/pages/{id}/draft.
//
//	@Summary		Discard the local draft, reverting to the confirmed record
//	@Tags			pages
//	@Param			id	path	string	true	"Page id"
//	@Success		204	"Draft discarded"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/draft [delete]
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DiscardDraft(r.Context(), id); err != nil {
		writeError(w, "discard draft", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishPage handles POST /api/pages/{id}/publish.
//
//	@Summary		Submit the effective page to the ledger and destroy the draft
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Page id"
//	@Success		200	{object}	PageDetail
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/publish [post]
func (h *Handler) PublishPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.svc.Publish(r.Context(), id)
	if err != nil {
		writeError(w, "publish page", id, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across local drafts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", q, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
