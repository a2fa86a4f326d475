package editor

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs atomic.Int32

	for i := 0; i < 10; i++ {
		d.Schedule(func() { runs.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 (burst coalesced)", got)
	}
}

func TestDebouncer_LastScheduledWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var got atomic.Int32

	d.Schedule(func() { got.Store(1) })
	d.Schedule(func() { got.Store(2) })

	time.Sleep(80 * time.Millisecond)
	if got.Load() != 2 {
		t.Errorf("got = %d, want the superseding function", got.Load())
	}
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var runs atomic.Int32

	d.Schedule(func() { runs.Add(1) })
	d.Flush()
	if runs.Load() != 1 {
		t.Fatal("flush should run the pending function synchronously")
	}

	// Flushing again is a no-op.
	d.Flush()
	if runs.Load() != 1 {
		t.Error("second flush re-ran the function")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs atomic.Int32

	d.Schedule(func() { runs.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if runs.Load() != 0 {
		t.Error("stopped function still ran")
	}
}
