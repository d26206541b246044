package component

import "testing"

func TestBounceReactionIsCapped(t *testing.T) {
	b := Bounce{Coefficient: 1.5, MaxVelocity: 12}
	for _, impact := range []float64{0, 1, 4, 7.9, 8, 20, -50, 1e9} {
		got := b.Reaction(impact)
		if got > b.MaxVelocity {
			t.Fatalf("impact %v gave %v above max %v", impact, got, b.MaxVelocity)
		}
	}
	if got := b.Reaction(-4); got != 6 {
		t.Fatalf("reaction(-4) = %v, want 6", got)
	}
}

func TestBreakableBreaksOnce(t *testing.T) {
	b := Breakable{BreakMinVelocity: 3}
	if b.Strike(2.9) {
		t.Fatalf("soft strike should not arm")
	}
	transitions := 0
	for i := 0; i < 5; i++ {
		b.Strike(10)
		if b.Triggered && b.Break() {
			transitions++
		}
	}
	if transitions != 1 || !b.Broken {
		t.Fatalf("expected exactly one transition, got %d", transitions)
	}
	if b.Strike(100) || b.Break() {
		t.Fatalf("broken platform must ignore further strikes")
	}
}

func TestPassThroughModes(t *testing.T) {
	var p PassThrough
	if p.Close() {
		t.Fatalf("solid platform cannot close")
	}
	if !p.Open() || !p.PassThrough || !p.Dirty {
		t.Fatalf("open should switch to pass-through and mark dirty")
	}
	if p.Open() {
		t.Fatalf("second open should be a no-op")
	}
	p.Dirty = false
	k := ContactKey{Entity: 3}
	p.Body.Begin(k)
	if p.Clear() {
		t.Fatalf("body overlap should block clear")
	}
	p.Body.End(k)
	if !p.Clear() || !p.Close() || p.PassThrough || !p.Dirty {
		t.Fatalf("close should revert to solid and mark dirty")
	}
}

func TestLevelStateTerminalOnce(t *testing.T) {
	s := LevelState{MinX: -10, MinY: -5, MaxX: 10, MaxY: 5}
	if !s.MarkComplete() || s.MarkComplete() {
		t.Fatalf("complete must fire exactly once")
	}
	if s.MarkFailed("fell") || s.Failed {
		t.Fatalf("a completed level cannot fail")
	}
	if !s.InBounds(0, 0) || s.InBounds(0, -6) {
		t.Fatalf("bounds check wrong")
	}
}
