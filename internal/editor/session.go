package editor

import (
	"sync"

	"github.com/halvard/skald/internal/draftkey"
)

// RenderSnapshot is what the rendering pipeline hands back for one source
// text: the parsed block list (already matched to rendered elements), the
// rendered elements' top offsets, and the source buffer's line count.
type RenderSnapshot struct {
	Blocks      []Block
	ElementTops []float64
	LineCount   int
}

// Renderer produces a render snapshot for a source text. The session only
// consumes its output; rendering itself happens elsewhere.
type Renderer func(source string) RenderSnapshot

// Session is the per-page editor state: the page's draft key, the current
// source text, the position mapping table, and the scroll synchronizer.
//
// Content changes schedule a debounced table rebuild, so the synchronizer may
// briefly run against a table that lags the newest edit. Navigating to
// another page must go through Reset, which cancels pending rebuilds and
// discards every piece of the previous page's state — a stale rebuild
// closure must never touch the next page's session.
type Session struct {
	renderer Renderer
	geo      Geometry
	debounce *Debouncer

	mu     sync.Mutex
	key    draftkey.Key
	source string
	sync   *Synchronizer
	gen    uint64 // incremented on Reset; stale rebuilds check it
}

// NewSession creates a session for the page addressed by key.
func NewSession(key draftkey.Key, renderer Renderer, geo Geometry, debounce *Debouncer) *Session {
	return &Session{
		renderer: renderer,
		geo:      geo,
		debounce: debounce,
		key:      key,
		sync:     NewSynchronizer(),
	}
}

// Key returns the draft key of the page this session edits.
func (s *Session) Key() draftkey.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// SetContent records a new source text and schedules a debounced rebuild of
// the mapping table.
func (s *Session) SetContent(text string) {
	s.mu.Lock()
	s.source = text
	gen := s.gen
	s.mu.Unlock()

	s.debounce.Schedule(func() { s.rebuild(gen) })
}

// Rebuild forces an immediate table rebuild, flushing any pending debounced
// one first.
func (s *Session) Rebuild() {
	s.debounce.Flush()
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.rebuild(gen)
}

func (s *Session) rebuild(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return // session was reset while this rebuild was pending
	}
	source := s.source
	s.mu.Unlock()

	snap := s.renderer(source)
	table := BuildTable(snap.Blocks, snap.ElementTops, s.geo, snap.LineCount)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.sync.SetTable(table)
}

// Table returns the current mapping table.
func (s *Session) Table() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.table
}

// SetActivePane records the pane the user is interacting with.
func (s *Session) SetActivePane(p Pane) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync.SetActive(p)
}

// Scroll computes the opposite pane's scroll target for a scroll event.
func (s *Session) Scroll(origin Pane, scrollTop float64, originM, targetM Metrics) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Target(origin, scrollTop, originM, targetM)
}

// Reset switches the session to a different page: cancels pending rebuilds,
// invalidates in-flight ones, and returns to a pristine state under the new
// key.
func (s *Session) Reset(key draftkey.Key) {
	s.debounce.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.key = key
	s.source = ""
	s.sync = NewSynchronizer()
}
