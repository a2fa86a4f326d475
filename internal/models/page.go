// Package models defines the domain types for Skald.
package models

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PageKind distinguishes the two authorable content types.
type PageKind string

const (
	KindPost PageKind = "post"
	KindPage PageKind = "page"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PageFields is the semantic content of a page. The same shape is carried by
// local drafts and by ledger-confirmed notes, so reconciliation is a
// structural overlay rather than a translation. A cleared field and a
// never-set field are both represented by the zero value.
type PageFields struct {
	Title       string     `json:"title,omitempty" yaml:"title"`
	Body        string     `json:"body,omitempty" yaml:"-"`
	Excerpt     string     `json:"excerpt,omitempty" yaml:"excerpt"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags"`
	Slug        string     `json:"slug,omitempty" yaml:"slug"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at"`
	Cover       string     `json:"cover,omitempty" yaml:"cover"`
}

// Validate rejects structurally invalid field values. The slug, when present,
// must be lowercase kebab-case; tags must be non-empty strings.
func (f PageFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.RuneLength(0, 256)),
		validation.Field(&f.Slug, validation.RuneLength(0, 128),
			validation.Match(slugRe).Error("must be lowercase kebab-case")),
		validation.Field(&f.Tags, validation.Each(validation.Required, validation.RuneLength(1, 64))),
		validation.Field(&f.Excerpt, validation.RuneLength(0, 1024)),
	)
}

// SanitizeSlug strips everything a slug may not contain, for safe echoing of
// a rejected value in error messages and for seeding defaults.
func SanitizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true // swallow leading dashes
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// DraftRecord is a locally persisted, unconfirmed edit of a page. It is
// created on first edit of an unconfirmed page or on any edit after a
// confirmed page is modified locally, and destroyed when the edit is
// confirmed on the ledger or explicitly discarded.
type DraftRecord struct {
	SavedAt time.Time  `json:"saved_at"`
	Kind    PageKind   `json:"kind"`
	Fields  PageFields `json:"content"`
}

// RemoteNote is a ledger-confirmed page snapshot. It is immutable once
// fetched; a new fetch replaces it wholesale.
type RemoteNote struct {
	Owner     string     `json:"owner"`
	ID        string     `json:"id"`
	Kind      PageKind   `json:"kind"`
	Fields    PageFields `json:"fields"`
	UpdatedAt time.Time  `json:"updated_at"` // last confirmed-and-unedited marker
	Confirmed bool       `json:"confirmed"`
}

// EffectivePage is the computed overlay of a draft and a remote note, plus
// provenance. It is a view: recomputed on every read, never persisted.
type EffectivePage struct {
	Owner  string     `json:"owner"`
	ID     string     `json:"id"`
	Kind   PageKind   `json:"kind"`
	Fields PageFields `json:"fields"`

	HasRemote     bool `json:"has_remote"`
	HasLocalDraft bool `json:"has_local_draft"`
	LocalIsNewer  bool `json:"local_is_newer"`

	DraftSavedAt    time.Time `json:"draft_saved_at,omitempty"`
	RemoteUpdatedAt time.Time `json:"remote_updated_at,omitempty"`
}

// Visibility is the user-facing classification of a page's publication state.
type Visibility string

const (
	// VisibilityDraft: no remote identifier exists yet.
	VisibilityDraft Visibility = "draft"
	// VisibilityScheduled: confirmed on the ledger with a publication
	// timestamp strictly in the future.
	VisibilityScheduled Visibility = "scheduled"
	// VisibilityPublished: confirmed, publication due, no newer local draft.
	VisibilityPublished Visibility = "published"
	// VisibilityModified: confirmed and due, but a local draft newer than the
	// remote snapshot still exists.
	VisibilityModified Visibility = "modified"
)
