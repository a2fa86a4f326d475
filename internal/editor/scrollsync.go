package editor

// Pane identifies one of the two editor views.
type Pane string

const (
	PaneSource   Pane = "source"
	PaneRendered Pane = "rendered"
)

// Metrics carries the scroll geometry of a pane.
type Metrics struct {
	ScrollHeight float64
	ClientHeight float64
}

// maxScroll is the largest reachable scrollTop for the pane.
func (m Metrics) maxScroll() float64 {
	max := m.ScrollHeight - m.ClientHeight
	if max < 0 {
		return 0
	}
	return max
}

// Synchronizer computes scroll targets for the passive pane from scroll
// events on the active one. The active-pane flag breaks the feedback loop
// where programmatically scrolling the passive pane would re-trigger a sync
// in the other direction.
type Synchronizer struct {
	table  Table
	active Pane
}

// NewSynchronizer creates a synchronizer with no table and the source pane
// active.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{active: PaneSource}
}

// SetTable replaces the mapping table (after a debounced re-render).
func (s *Synchronizer) SetTable(t Table) {
	s.table = t
}

// SetActive records which pane the user is currently interacting with.
func (s *Synchronizer) SetActive(p Pane) {
	s.active = p
}

// Active returns the currently active pane.
func (s *Synchronizer) Active() Pane {
	return s.active
}

// Target computes the scroll position for the pane opposite origin.
//
// Returns ok=false — leave the target pane where it is — when the event does
// not come from the active pane, the table is unusable, or scrollTop lies
// before the first table entry. At the origin pane's bottom the target is
// clamped to its own bottom, bypassing interpolation: block density is
// highest at the document tail and proportional mapping loses precision
// there.
func (s *Synchronizer) Target(origin Pane, scrollTop float64, originM, targetM Metrics) (float64, bool) {
	if origin != s.active {
		return 0, false
	}
	if !s.table.Usable() {
		return 0, false
	}

	if scrollTop >= originM.maxScroll() {
		return targetM.maxScroll(), true
	}

	pairs := s.table.pairs
	from := func(p Pair) float64 { return p.Source }
	to := func(p Pair) float64 { return p.Rendered }
	if origin == PaneRendered {
		from, to = to, from
	}

	if scrollTop < from(pairs[0]) {
		return 0, false // before the first entry: no wraparound
	}

	// Locate the bracketing pair: from(pairs[i]) <= scrollTop < from(pairs[i+1]).
	i := len(pairs) - 2
	for j := 0; j+1 < len(pairs); j++ {
		if scrollTop < from(pairs[j+1]) {
			i = j
			break
		}
	}

	span := from(pairs[i+1]) - from(pairs[i])
	frac := (scrollTop - from(pairs[i])) / span
	target := to(pairs[i]) + frac*(to(pairs[i+1])-to(pairs[i]))

	if limit := targetM.maxScroll(); target > limit {
		target = limit
	}
	if target < 0 {
		target = 0
	}
	return target, true
}
