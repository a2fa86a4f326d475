package editor

import (
	"math"
	"testing"
)

func syncWithTable(pairs []Pair) *Synchronizer {
	s := NewSynchronizer()
	s.SetTable(NewTable(pairs))
	return s
}

var (
	tallSource   = Metrics{ScrollHeight: 1000, ClientHeight: 200}
	tallRendered = Metrics{ScrollHeight: 800, ClientHeight: 200}
)

// Scenario E: table [(0,0),(100,50),(200,150)], source scrolled to 150
// interpolates to 50 + (150-100)/(200-100)*(150-50) = 100.
func TestTarget_Interpolation(t *testing.T) {
	s := syncWithTable([]Pair{{0, 0}, {100, 50}, {200, 150}})

	got, ok := s.Target(PaneSource, 150, tallSource, tallRendered)
	if !ok {
		t.Fatal("expected a target")
	}
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("target = %v, want 100", got)
	}
}

func TestTarget_ExactEntry(t *testing.T) {
	s := syncWithTable([]Pair{{0, 0}, {100, 50}, {200, 150}})
	got, ok := s.Target(PaneSource, 100, tallSource, tallRendered)
	if !ok || got != 50 {
		t.Errorf("target = %v, ok = %v, want 50", got, ok)
	}
}

func TestTarget_RenderedOrigin(t *testing.T) {
	s := syncWithTable([]Pair{{0, 0}, {100, 50}, {200, 150}})
	s.SetActive(PaneRendered)

	got, ok := s.Target(PaneRendered, 100, tallRendered, tallSource)
	if !ok {
		t.Fatal("expected a target")
	}
	if math.Abs(got-150) > 1e-9 {
		t.Errorf("target = %v, want 150 (inverse of scenario)", got)
	}
}

func TestTarget_InactivePaneIgnored(t *testing.T) {
	s := syncWithTable([]Pair{{0, 0}, {100, 50}})
	// Source is active; a rendered-pane event is the echo of our own sync.
	if _, ok := s.Target(PaneRendered, 50, tallRendered, tallSource); ok {
		t.Error("passive pane event must not produce a target")
	}
}

func TestTarget_BottomClamp(t *testing.T) {
	s := syncWithTable([]Pair{{0, 0}, {100, 50}, {200, 150}})
	// 800 == scrollHeight - clientHeight: origin is at its bottom.
	got, ok := s.Target(PaneSource, 800, tallSource, tallRendered)
	if !ok {
		t.Fatal("expected a target")
	}
	if want := tallRendered.ScrollHeight - tallRendered.ClientHeight; got != want {
		t.Errorf("target = %v, want bottom %v", got, want)
	}
}

func TestTarget_BeforeFirstEntryNoOp(t *testing.T) {
	s := syncWithTable([]Pair{{100, 80}, {200, 150}})
	if _, ok := s.Target(PaneSource, 50, tallSource, tallRendered); ok {
		t.Error("scroll before the first entry must leave the target unscrolled")
	}
}

func TestTarget_UnusableTableNoOp(t *testing.T) {
	for _, pairs := range [][]Pair{nil, {{0, 0}}} {
		s := syncWithTable(pairs)
		if _, ok := s.Target(PaneSource, 100, tallSource, tallRendered); ok {
			t.Errorf("table %v must be a no-op", pairs)
		}
	}
}

func TestTarget_ClampedToTargetRange(t *testing.T) {
	s := syncWithTable([]Pair{{0, 0}, {100, 700}})
	shortRendered := Metrics{ScrollHeight: 500, ClientHeight: 200}
	got, ok := s.Target(PaneSource, 90, tallSource, shortRendered)
	if !ok {
		t.Fatal("expected a target")
	}
	if got > shortRendered.ScrollHeight-shortRendered.ClientHeight {
		t.Errorf("target %v exceeds the pane's max scroll", got)
	}
}

// P6: source → rendered → source round trip stays within one bracket width.
func TestTarget_RoundTripStability(t *testing.T) {
	pairs := []Pair{{0, 0}, {100, 50}, {200, 150}, {350, 420}, {500, 600}}
	forward := syncWithTable(pairs)
	backward := syncWithTable(pairs)
	backward.SetActive(PaneRendered)

	for _, x := range []float64{10, 100, 150, 260, 349, 470} {
		rendered, ok := forward.Target(PaneSource, x, tallSource, tallRendered)
		if !ok {
			t.Fatalf("forward sync failed at %v", x)
		}
		back, ok := backward.Target(PaneRendered, rendered, tallRendered, tallSource)
		if !ok {
			t.Fatalf("backward sync failed at %v", rendered)
		}

		// Find the bracket width around x.
		width := pairs[len(pairs)-1].Source - pairs[0].Source
		for i := 0; i+1 < len(pairs); i++ {
			if x >= pairs[i].Source && x < pairs[i+1].Source {
				width = pairs[i+1].Source - pairs[i].Source
				break
			}
		}
		if math.Abs(back-x) > width {
			t.Errorf("round trip drifted: %v → %v → %v (bracket width %v)", x, rendered, back, width)
		}
	}
}
