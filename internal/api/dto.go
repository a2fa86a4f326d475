package api

import (
	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/pageservice"
)

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	Kind models.PageKind `json:"kind" example:"post"`
}

// SaveDraftRequest is the request body for saving a draft.
type SaveDraftRequest struct {
	Kind   models.PageKind   `json:"kind" example:"post"`
	Fields models.PageFields `json:"fields" validate:"required"`
}

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = pageservice.PageView

// PageSummary is a lightweight item in a list response (aliased from the domain layer).
type PageSummary = pageservice.PageSummary

// PageListResponse wraps page listings.
type PageListResponse struct {
	Pages []PageSummary `json:"pages" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Key     string `json:"key" example:"draft-0xabc-42" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
