package reconcile

import (
	"reflect"
	"testing"
	"time"

	"github.com/halvard/skald/internal/models"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func remoteNote(updated time.Time, pub *time.Time) *models.RemoteNote {
	return &models.RemoteNote{
		Owner:     "0xabc",
		ID:        "42",
		Kind:      models.KindPost,
		Fields:    models.PageFields{Title: "Remote title", Body: "remote body", Slug: "remote", PublishedAt: pub},
		UpdatedAt: updated,
		Confirmed: true,
	}
}

func draftRecord(saved time.Time) *models.DraftRecord {
	return &models.DraftRecord{
		SavedAt: saved,
		Kind:    models.KindPost,
		Fields:  models.PageFields{Title: "Draft title", Body: "draft body"},
	}
}

func TestReconcile_NeitherExists(t *testing.T) {
	p := Reconcile(nil, nil)
	if p.HasRemote || p.HasLocalDraft || p.LocalIsNewer {
		t.Errorf("empty page has provenance: %+v", p)
	}
	if !reflect.DeepEqual(p.Fields, models.PageFields{}) {
		t.Errorf("fields not empty: %+v", p.Fields)
	}
}

func TestReconcile_DraftOnly(t *testing.T) {
	d := draftRecord(now)
	p := Reconcile(nil, d)
	if p.HasRemote {
		t.Error("has_remote should be false")
	}
	if !p.HasLocalDraft {
		t.Error("has_local_draft should be true")
	}
	if p.LocalIsNewer {
		t.Error("local_is_newer is only meaningful when a remote exists")
	}
	if !reflect.DeepEqual(p.Fields, d.Fields) {
		t.Errorf("fields = %+v, want draft fields", p.Fields)
	}
}

func TestReconcile_RemoteOnly(t *testing.T) {
	r := remoteNote(now, nil)
	p := Reconcile(r, nil)
	if !p.HasRemote || p.HasLocalDraft {
		t.Errorf("provenance = %+v", p)
	}
	if !reflect.DeepEqual(p.Fields, r.Fields) {
		t.Errorf("fields = %+v, want remote fields", p.Fields)
	}
	if p.ID != "42" || p.Owner != "0xabc" {
		t.Errorf("identity not carried: %+v", p)
	}
}

// P1: when the draft is newer than the remote snapshot, draft fields win —
// all of them, including empty ones (full-record overlay).
func TestReconcile_RecencyWins(t *testing.T) {
	r := remoteNote(now.Add(-time.Hour), nil)
	d := draftRecord(now)
	d.Fields.Slug = "" // remote has a slug; the overlay must not resurrect it

	p := Reconcile(r, d)
	if !reflect.DeepEqual(p.Fields, d.Fields) {
		t.Errorf("fields = %+v, want draft fields", p.Fields)
	}
	if !p.LocalIsNewer {
		t.Error("local_is_newer should be true")
	}
	if !p.HasRemote {
		t.Error("remote provenance must be preserved")
	}
	if p.Fields.Slug != "" {
		t.Errorf("remote slug leaked into newer draft: %q", p.Fields.Slug)
	}
}

// P2: when the draft is not newer, remote fields win verbatim.
func TestReconcile_RemoteWinsOverOlderDraft(t *testing.T) {
	r := remoteNote(now, nil)
	for _, saved := range []time.Time{now.Add(-time.Minute), now} {
		p := Reconcile(r, draftRecord(saved))
		if !reflect.DeepEqual(p.Fields, r.Fields) {
			t.Errorf("saved=%v: fields = %+v, want remote fields", saved, p.Fields)
		}
		if p.LocalIsNewer {
			t.Errorf("saved=%v: local_is_newer should be false", saved)
		}
		if !p.HasLocalDraft {
			t.Errorf("saved=%v: draft provenance lost", saved)
		}
	}
}

// P4: reconciliation holds no hidden state.
func TestReconcile_Idempotent(t *testing.T) {
	r := remoteNote(now.Add(-time.Hour), nil)
	d := draftRecord(now)
	first := Reconcile(r, d)
	second := Reconcile(r, d)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated reconcile diverged:\n%+v\n%+v", first, second)
	}
}

func TestClassify_DraftWithoutRemote(t *testing.T) {
	// Scenario A: draft saved 5 minutes ago, no remote record.
	d := draftRecord(now.Add(-5 * time.Minute))
	d.Fields.Title = "Hello"
	p := Reconcile(nil, d)
	if v := Classify(p, now); v != models.VisibilityDraft {
		t.Errorf("visibility = %q, want draft", v)
	}
}

func TestClassify_Scheduled(t *testing.T) {
	// Scenario B: publication timestamp is tomorrow.
	tomorrow := now.Add(24 * time.Hour)
	p := Reconcile(remoteNote(now, &tomorrow), nil)
	if v := Classify(p, now); v != models.VisibilityScheduled {
		t.Errorf("visibility = %q, want scheduled", v)
	}
}

func TestClassify_Modified(t *testing.T) {
	// Scenario C: published yesterday, draft saved after confirmation.
	yesterday := now.Add(-24 * time.Hour)
	r := remoteNote(yesterday, &yesterday)
	d := draftRecord(now.Add(-time.Hour))
	p := Reconcile(r, d)
	if v := Classify(p, now); v != models.VisibilityModified {
		t.Errorf("visibility = %q, want modified", v)
	}
	if p.Fields.Title != "Draft title" {
		t.Errorf("title = %q, want the draft's", p.Fields.Title)
	}
}

func TestClassify_Published(t *testing.T) {
	yesterday := now.Add(-24 * time.Hour)
	p := Reconcile(remoteNote(yesterday, &yesterday), nil)
	if v := Classify(p, now); v != models.VisibilityPublished {
		t.Errorf("visibility = %q, want published", v)
	}
}

// Publication due in the same instant counts as due (<=, not <).
func TestClassify_PublicationDueNow(t *testing.T) {
	p := Reconcile(remoteNote(now.Add(-time.Hour), &now), nil)
	if v := Classify(p, now); v != models.VisibilityPublished {
		t.Errorf("visibility = %q, want published at the exact tick", v)
	}
}

// A confirmed note without a publication timestamp is due.
func TestClassify_ConfirmedWithoutTimestamp(t *testing.T) {
	p := Reconcile(remoteNote(now.Add(-time.Hour), nil), nil)
	if v := Classify(p, now); v != models.VisibilityPublished {
		t.Errorf("visibility = %q, want published", v)
	}
}

// An older-than-remote draft must not flip a published page to modified.
func TestClassify_StaleDraftStaysPublished(t *testing.T) {
	yesterday := now.Add(-24 * time.Hour)
	r := remoteNote(now, &yesterday)
	p := Reconcile(r, draftRecord(now.Add(-time.Hour)))
	if v := Classify(p, now); v != models.VisibilityPublished {
		t.Errorf("visibility = %q, want published", v)
	}
}

// P3: over a page's life (edit → confirm → edit again), visibility never
// transitions published → draft absent an explicit discard.
func TestClassify_LifecycleNeverRegressesToDraft(t *testing.T) {
	pub := now.Add(-time.Hour)

	steps := []struct {
		name   string
		remote *models.RemoteNote
		draft  *models.DraftRecord
	}{
		{"first edit", nil, draftRecord(now.Add(-3 * time.Hour))},
		{"confirmed", remoteNote(now.Add(-2*time.Hour), &pub), nil},
		{"edited after confirm", remoteNote(now.Add(-2*time.Hour), &pub), draftRecord(now.Add(-time.Minute))},
		{"re-confirmed", remoteNote(now, &pub), nil},
	}

	seenPublished := false
	for _, step := range steps {
		v := Classify(Reconcile(step.remote, step.draft), now)
		if v == models.VisibilityPublished || v == models.VisibilityModified {
			seenPublished = true
		}
		if seenPublished && v == models.VisibilityDraft {
			t.Fatalf("step %q regressed to draft", step.name)
		}
	}
}
