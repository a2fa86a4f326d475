// Package pageservice coordinates the local draft store, the remote note
// source, and the reconciliation engine into page-level operations.
package pageservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/draftkey"
	"github.com/halvard/skald/internal/draftstore"
	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/reconcile"
	"github.com/halvard/skald/internal/remote"
)

// Event kinds passed to the notify callback.
const (
	EventDraftSaved     = "draft.saved"
	EventDraftDiscarded = "draft.discarded"
	EventPagePublished  = "page.published"
)

// EventFunc is called after a successful state change.
type EventFunc func(kind, pageID string, vis models.Visibility)

// PageView is the service's read model: the effective page plus everything a
// caller needs to render and edit it.
type PageView struct {
	Key        string               `json:"key"`
	Page       models.EffectivePage `json:"page"`
	Visibility models.Visibility    `json:"visibility"`
	// Checksum is the draft content checksum for If-Match saves; empty when
	// no local draft exists.
	Checksum string `json:"checksum,omitempty"`
	// RemoteUnavailable is set when the ledger could not be reached and the
	// view was built from local data only.
	RemoteUnavailable bool `json:"remote_unavailable,omitempty"`
}

// PageSummary is a lightweight listing item merging remote notes and
// local-only drafts.
type PageSummary struct {
	ID         string            `json:"id"`
	Key        string            `json:"key"`
	Kind       models.PageKind   `json:"kind"`
	Title      string            `json:"title"`
	Visibility models.Visibility `json:"visibility"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Service implements page operations for a single owner account.
type Service struct {
	drafts *draftstore.Store
	remote remote.Source
	owner  string
	logger *slog.Logger

	now    func() time.Time
	notify EventFunc
}

// NewService creates a page service for owner.
func NewService(drafts *draftstore.Store, src remote.Source, owner string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		drafts: drafts,
		remote: src,
		owner:  owner,
		logger: logger,
		now:    time.Now,
		notify: func(string, string, models.Visibility) {},
	}
}

// SetNotify installs a callback invoked after successful state changes.
func (s *Service) SetNotify(fn EventFunc) {
	if fn != nil {
		s.notify = fn
	}
}

// Owner returns the account this service operates on.
func (s *Service) Owner() string {
	return s.owner
}

// Load returns the effective page for id, reconciling the local draft with
// the ledger record. A ledger transport failure degrades to a local-only
// view when a draft exists; it only fails the load when there is nothing
// local to fall back to.
func (s *Service) Load(ctx context.Context, id string) (*PageView, error) {
	key := draftkey.Derive(s.owner, id)
	draft := s.readDraft(key.Storage)
	note, degraded, err := s.fetchRemote(ctx, key)
	if err != nil && draft == nil {
		return nil, err
	}

	if note == nil && draft == nil {
		return nil, fmt.Errorf("pageservice: page %s: %w", id, apperr.ErrNotFound)
	}
	return s.buildView(key, note, draft, degraded), nil
}

// LoadBySlug resolves a page through the ledger's slug index. Local-only
// drafts are not addressable by slug.
func (s *Service) LoadBySlug(ctx context.Context, slug string) (*PageView, error) {
	note, err := s.remote.FetchBySlug(ctx, s.owner, slug)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("pageservice: slug %s: %w", slug, apperr.ErrNotFound)
	}
	key := draftkey.Derive(s.owner, note.ID)
	return s.buildView(key, note, s.readDraft(key.Storage), false), nil
}

// NewPage creates a fresh local page: generates a local identifier, persists
// an empty draft seeded with the default slug, and returns the view. The
// caller is expected to move its addressable location (URL) to the returned
// page id so reopening derives the same key.
func (s *Service) NewPage(_ context.Context, kind models.PageKind) (*PageView, error) {
	key := draftkey.NewLocal(s.owner)
	rec := models.DraftRecord{
		SavedAt: s.now(),
		Kind:    kind,
		Fields:  models.PageFields{Slug: key.DefaultSlug},
	}
	if err := s.drafts.Put(key.Storage, rec); err != nil {
		return nil, err
	}
	view := s.buildView(key, nil, &rec, false)
	s.notify(EventDraftSaved, key.PageID, view.Visibility)
	return view, nil
}

// SaveDraft validates and persists an edit, last-write-wins. A non-empty
// ifMatch checksum enables optimistic concurrency against the stored draft.
func (s *Service) SaveDraft(ctx context.Context, id string, kind models.PageKind, fields models.PageFields, ifMatch string) (*PageView, error) {
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("pageservice: save draft (slug %q): %w: %w",
			models.SanitizeSlug(fields.Slug), apperr.ErrValidation, err)
	}

	key := draftkey.Derive(s.owner, id)
	if ifMatch != "" {
		current, _ := s.drafts.Checksum(key.Storage)
		if current != ifMatch {
			return nil, fmt.Errorf("pageservice: save draft %s: %w", id, apperr.ErrConflict)
		}
	}

	rec := models.DraftRecord{SavedAt: s.now(), Kind: kind, Fields: fields}
	if err := s.drafts.Put(key.Storage, rec); err != nil {
		return nil, err
	}

	note, degraded, _ := s.fetchRemote(ctx, key)
	view := s.buildView(key, note, &rec, degraded)
	s.notify(EventDraftSaved, key.PageID, view.Visibility)
	return view, nil
}

// DiscardDraft removes the local draft, reverting the page to its confirmed
// remote state (or to nothing, for local-only pages).
func (s *Service) DiscardDraft(_ context.Context, id string) error {
	key := draftkey.Derive(s.owner, id)
	cs, _ := s.drafts.Checksum(key.Storage)
	if cs == "" {
		return fmt.Errorf("pageservice: discard %s: %w", id, apperr.ErrNotFound)
	}
	if err := s.drafts.Delete(key.Storage); err != nil {
		return err
	}
	s.notify(EventDraftDiscarded, key.PageID, models.VisibilityDraft)
	return nil
}

// Publish submits the page's effective fields to the ledger and, on
// confirmation, destroys the local draft. Publishing requires the ledger:
// transport failures abort with the submission untouched locally.
func (s *Service) Publish(ctx context.Context, id string) (*PageView, error) {
	key := draftkey.Derive(s.owner, id)
	draft := s.readDraft(key.Storage)

	var existing *models.RemoteNote
	if !key.IsLocal {
		var err error
		existing, err = s.remote.FetchByID(ctx, s.owner, key.PageID)
		if err != nil {
			return nil, err
		}
	}

	page := reconcile.Reconcile(existing, draft)
	if !page.HasRemote && !page.HasLocalDraft {
		return nil, fmt.Errorf("pageservice: publish %s: %w", id, apperr.ErrNotFound)
	}

	fields := page.Fields
	if fields.PublishedAt == nil {
		now := s.now()
		fields.PublishedAt = &now
	}
	if fields.Slug == "" {
		fields.Slug = key.DefaultSlug
	}
	kind := page.Kind
	if kind == "" {
		kind = models.KindPost
	}

	submitID := key.PageID
	if key.IsLocal {
		submitID = "" // ledger assigns the identifier
	}
	note, err := s.remote.Submit(ctx, s.owner, submitID, kind, fields)
	if err != nil {
		return nil, err
	}

	// The edit is confirmed: its draft record is destroyed. Pages that had a
	// local identifier are re-keyed under the ledger-assigned one.
	if err := s.drafts.Delete(key.Storage); err != nil {
		s.logger.Warn("publish: delete draft failed",
			slog.String("key", key.Storage), slog.String("error", err.Error()))
	}

	confirmed := draftkey.Derive(s.owner, note.ID)
	view := s.buildView(confirmed, note, nil, false)
	s.notify(EventPagePublished, note.ID, view.Visibility)
	return view, nil
}

// List merges the owner's confirmed notes with local-only drafts into one
// page listing, most recently touched first. A ledger transport failure
// degrades to the local drafts alone.
func (s *Service) List(ctx context.Context) ([]PageSummary, error) {
	notes, err := s.remote.List(ctx, s.owner)
	if err != nil {
		if !errors.Is(err, apperr.ErrRemoteUnavailable) {
			return nil, err
		}
		s.logger.Warn("list: remote unavailable, listing local drafts only",
			slog.String("error", err.Error()))
		notes = nil
	}

	byID := make(map[string]*models.RemoteNote, len(notes))
	for i := range notes {
		byID[notes[i].ID] = &notes[i]
	}

	entries, err := s.drafts.ListPrefix(draftkey.StoragePrefix(s.owner))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	var out []PageSummary
	for _, e := range entries {
		id := draftkey.PageIDFromStorage(s.owner, e.Key)
		if id == "" {
			continue
		}
		seen[id] = struct{}{}

		draft := s.readDraft(e.Key)
		page := reconcile.Reconcile(byID[id], draft)
		out = append(out, PageSummary{
			ID:         id,
			Key:        e.Key,
			Kind:       e.Kind,
			Title:      page.Fields.Title,
			Visibility: reconcile.Classify(page, s.now()),
			UpdatedAt:  e.SavedAt,
		})
	}

	for i := range notes {
		if _, ok := seen[notes[i].ID]; ok {
			continue
		}
		page := reconcile.Reconcile(&notes[i], nil)
		out = append(out, PageSummary{
			ID:         notes[i].ID,
			Key:        draftkey.Derive(s.owner, notes[i].ID).Storage,
			Kind:       notes[i].Kind,
			Title:      notes[i].Fields.Title,
			Visibility: reconcile.Classify(page, s.now()),
			UpdatedAt:  notes[i].UpdatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Search performs full-text search over local drafts.
func (s *Service) Search(_ context.Context, query string, limit int) ([]draftstore.SearchResult, error) {
	return s.drafts.Search(query, limit)
}

// readDraft reads a draft, treating storage failures as "no draft" so a
// broken local store never blocks editing.
func (s *Service) readDraft(storageKey string) *models.DraftRecord {
	draft, err := s.drafts.Get(storageKey)
	if err != nil {
		s.logger.Warn("read draft failed",
			slog.String("key", storageKey), slog.String("error", err.Error()))
		return nil
	}
	return draft
}

// fetchRemote fetches the confirmed note for key. Local-only pages have no
// remote. Transport failures are downgraded to a degraded flag; the error is
// still returned for callers with nothing local to show.
func (s *Service) fetchRemote(ctx context.Context, key draftkey.Key) (*models.RemoteNote, bool, error) {
	if key.IsLocal {
		return nil, false, nil
	}
	note, err := s.remote.FetchByID(ctx, s.owner, key.PageID)
	if err != nil {
		if errors.Is(err, apperr.ErrRemoteUnavailable) {
			s.logger.Warn("remote unavailable, using local draft only",
				slog.String("id", key.PageID), slog.String("error", err.Error()))
			return nil, true, err
		}
		return nil, false, err
	}
	return note, false, nil
}

// buildView assembles the caller-facing view from a reconciled page.
func (s *Service) buildView(key draftkey.Key, note *models.RemoteNote, draft *models.DraftRecord, degraded bool) *PageView {
	page := reconcile.Reconcile(note, draft)
	if page.Owner == "" {
		page.Owner = s.owner
	}
	if page.ID == "" {
		page.ID = key.PageID
	}

	cs, _ := s.drafts.Checksum(key.Storage)
	return &PageView{
		Key:               key.Storage,
		Page:              page,
		Visibility:        reconcile.Classify(page, s.now()),
		Checksum:          cs,
		RemoteUnavailable: degraded,
	}
}
