// Package editor implements the source/preview position mapping and scroll
// synchronization for the authoring view, plus the per-page editor session
// that owns them.
//
// The scheduling model is single-threaded and event-driven: UI callbacks,
// debounce timers, and network completions interleave on one logical thread.
// Only the Session type, whose debounce callback fires on a timer goroutine,
// carries a lock.
package editor

// Block links a source-document block to its rendered element.
type Block struct {
	// Line is the block's starting line in the source view (0-based).
	Line int
	// Element indexes the rendered element list; negative means the block
	// has no visual representation (e.g. a style-only node).
	Element int
}

// Geometry resolves a source line number to its vertical pixel offset within
// the source view. ok is false for lines the editor cannot place.
type Geometry interface {
	LineTop(line int) (top float64, ok bool)
}

// Pair is one correspondence between a source offset and a rendered offset,
// both in pixels.
type Pair struct {
	Source   float64
	Rendered float64
}

// Table is the ordered position mapping table. Both coordinate sequences are
// strictly increasing. It is ephemeral: rebuilt whenever content changes and
// never persisted.
type Table struct {
	pairs []Pair
}

// BuildTable walks blocks in document order and pairs each block's source
// offset with its rendered element's top offset.
//
// Blocks with no rendered element are skipped, as is any block whose source
// line falls beyond lineCount (a transient desync between the parse and the
// editor buffer — skipping keeps table construction alive). Pairs that would
// break strict monotonicity in either coordinate are dropped.
func BuildTable(blocks []Block, elementTops []float64, geo Geometry, lineCount int) Table {
	var pairs []Pair
	for _, b := range blocks {
		if b.Element < 0 || b.Element >= len(elementTops) {
			continue
		}
		if b.Line < 0 || b.Line >= lineCount {
			continue // desync guard
		}
		top, ok := geo.LineTop(b.Line)
		if !ok {
			continue
		}
		p := Pair{Source: top, Rendered: elementTops[b.Element]}
		if n := len(pairs); n > 0 && (p.Source <= pairs[n-1].Source || p.Rendered <= pairs[n-1].Rendered) {
			continue
		}
		pairs = append(pairs, p)
	}
	return Table{pairs: pairs}
}

// NewTable builds a table directly from pairs, keeping only those that
// preserve strict monotonicity. Intended for consumers that already hold
// resolved offsets.
func NewTable(pairs []Pair) Table {
	t := Table{}
	for _, p := range pairs {
		if n := len(t.pairs); n > 0 && (p.Source <= t.pairs[n-1].Source || p.Rendered <= t.pairs[n-1].Rendered) {
			continue
		}
		t.pairs = append(t.pairs, p)
	}
	return t
}

// Usable reports whether the table can drive synchronization. Fewer than two
// pairs means scrolling stays independent in both panes until content
// changes again.
func (t Table) Usable() bool {
	return len(t.pairs) >= 2
}

// Len returns the number of pairs.
func (t Table) Len() int {
	return len(t.pairs)
}

// Pairs returns a copy of the mapping pairs in order.
func (t Table) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}
