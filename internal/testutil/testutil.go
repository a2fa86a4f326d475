// Package testutil provides shared test helpers: temporary draft stores and
// an in-memory fake of the ledger indexer.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/draftstore"
	"github.com/halvard/skald/internal/models"
)

// TestStore creates a temporary SQLite draft store that is automatically
// cleaned up.
func TestStore(t *testing.T) *draftstore.Store {
	t.Helper()
	f, err := os.CreateTemp("", "skald-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := draftstore.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// FakeSource is an in-memory remote.Source. Setting Unavailable simulates a
// ledger transport failure on every call.
type FakeSource struct {
	mu          sync.Mutex
	notes       map[string]models.RemoteNote // by id
	nextID      int
	Unavailable bool
	Clock       func() time.Time
}

// NewFakeSource creates an empty fake indexer.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		notes:  make(map[string]models.RemoteNote),
		nextID: 100,
		Clock:  time.Now,
	}
}

// Seed stores a confirmed note directly, bypassing Submit.
func (f *FakeSource) Seed(n models.RemoteNote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[n.ID] = n
}

func (f *FakeSource) fail() error {
	return fmt.Errorf("fakesource: %w: connection refused", apperr.ErrRemoteUnavailable)
}

// FetchByID implements remote.Source.
func (f *FakeSource) FetchByID(_ context.Context, _, id string) (*models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return nil, f.fail()
	}
	n, ok := f.notes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// FetchBySlug implements remote.Source.
func (f *FakeSource) FetchBySlug(_ context.Context, _, slug string) (*models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return nil, f.fail()
	}
	for _, n := range f.notes {
		if n.Fields.Slug == slug {
			n := n
			return &n, nil
		}
	}
	return nil, nil
}

// List implements remote.Source.
func (f *FakeSource) List(_ context.Context, owner string) ([]models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return nil, f.fail()
	}
	var out []models.RemoteNote
	for _, n := range f.notes {
		if n.Owner == owner {
			out = append(out, n)
		}
	}
	return out, nil
}

// Submit implements remote.Source: confirms the note immediately.
func (f *FakeSource) Submit(_ context.Context, owner, id string, kind models.PageKind, fields models.PageFields) (*models.RemoteNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unavailable {
		return nil, f.fail()
	}
	if id == "" {
		id = strconv.Itoa(f.nextID)
		f.nextID++
	}
	n := models.RemoteNote{
		Owner:     owner,
		ID:        id,
		Kind:      kind,
		Fields:    fields,
		UpdatedAt: f.Clock(),
		Confirmed: true,
	}
	f.notes[id] = n
	return &n, nil
}
