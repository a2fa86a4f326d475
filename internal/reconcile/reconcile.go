// Package reconcile merges locally-cached unpublished edits with
// ledger-confirmed note records into a single effective page, and classifies
// the result into a user-facing visibility state.
package reconcile

import (
	"time"

	"github.com/halvard/skald/internal/models"
)

// Reconcile overlays a draft record on a remote note and returns the
// effective page. Both inputs may be nil.
//
// The overlay is full-record: when the draft is newer every draft field wins,
// including empty ones. The remote's confirmed status is preserved as
// provenance only; none of its field values leak into a newer draft.
// Pure: identical inputs always produce identical output.
func Reconcile(remote *models.RemoteNote, draft *models.DraftRecord) models.EffectivePage {
	var p models.EffectivePage

	if remote != nil {
		p.Owner = remote.Owner
		p.ID = remote.ID
		p.Kind = remote.Kind
		p.Fields = remote.Fields
		p.HasRemote = true
		p.RemoteUpdatedAt = remote.UpdatedAt
	}

	if draft != nil {
		p.HasLocalDraft = true
		p.DraftSavedAt = draft.SavedAt
		if remote == nil || draft.SavedAt.After(remote.UpdatedAt) {
			p.Fields = draft.Fields
			p.Kind = draft.Kind
			p.LocalIsNewer = remote != nil
		}
	}

	return p
}

// Classify maps an effective page to its visibility. Deterministic and total:
// it is a pure function of the page and the supplied clock instant.
//
// A publication timestamp equal to now counts as due. A confirmed note
// without a publication timestamp is treated as published at confirmation
// time, i.e. due.
func Classify(p models.EffectivePage, now time.Time) models.Visibility {
	if !p.HasRemote {
		return models.VisibilityDraft
	}
	if pub := p.Fields.PublishedAt; pub != nil && pub.After(now) {
		return models.VisibilityScheduled
	}
	if p.HasLocalDraft && p.LocalIsNewer {
		return models.VisibilityModified
	}
	return models.VisibilityPublished
}
