// Package remote abstracts the append-only ledger indexer that stores
// confirmed note records.
package remote

import (
	"context"

	"github.com/halvard/skald/internal/models"
)

// Source is the read/submit interface over the ledger indexer.
//
// Fetch methods return (nil, nil) for "not found". Transport-level failures
// are reported as errors wrapping apperr.ErrRemoteUnavailable, a distinct
// signal from "not found": callers degrade to local-draft-only operation
// instead of treating the page as missing.
type Source interface {
	// FetchByID returns the confirmed note with the given ledger identifier.
	FetchByID(ctx context.Context, owner, id string) (*models.RemoteNote, error)
	// FetchBySlug returns the confirmed note with the given slug.
	FetchBySlug(ctx context.Context, owner, slug string) (*models.RemoteNote, error)
	// List returns every confirmed note belonging to owner.
	List(ctx context.Context, owner string) ([]models.RemoteNote, error)
	// Submit writes a note to the ledger and returns the confirmed record.
	// An empty id requests a fresh ledger-assigned identifier.
	Submit(ctx context.Context, owner, id string, kind models.PageKind, fields models.PageFields) (*models.RemoteNote, error)
}
