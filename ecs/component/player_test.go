package component

import (
	"math"
	"math/rand"
	"testing"
)

func newTestPlayer() *Player {
	p := &Player{
		Force:             10,
		MaxSpeed:          5,
		JumpVelocity:      9,
		JumpCooldownTicks: 10,
		BaseDensity:       1,
		FrozenDensity:     4,
		FallMultiplier:    2.5,
		LowJumpMultiplier: 2,
	}
	p.Init()
	return p
}

func TestGroundedTracksOpenContacts(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	keys := []ContactKey{{Entity: 1, Fixture: 0}, {Entity: 2, Fixture: 0}, {Entity: 2, Fixture: 1}}

	for run := 0; run < 50; run++ {
		p := newTestPlayer()
		open := map[ContactKey]int{}
		total := 0
		for step := 0; step < 200; step++ {
			k := keys[rng.Intn(len(keys))]
			if rng.Intn(2) == 0 {
				p.BeginGround(k)
				open[k]++
				total++
			} else {
				_, ok := p.EndGround(k)
				if ok != (open[k] > 0) {
					t.Fatalf("run %d step %d: end ok=%v with %d open", run, step, ok, open[k])
				}
				if open[k] > 0 {
					open[k]--
					total--
				}
			}
			if p.Grounded != (total > 0) {
				t.Fatalf("run %d step %d: grounded=%v with %d open contacts", run, step, p.Grounded, total)
			}
		}
	}
}

func TestTwoOverlappingPlatforms(t *testing.T) {
	p := newTestPlayer()
	a := ContactKey{Entity: 10}
	b := ContactKey{Entity: 11}

	if !p.BeginGround(a) {
		t.Fatalf("first contact should report a transition")
	}
	if p.BeginGround(b) {
		t.Fatalf("second contact should not report a transition")
	}
	if left, _ := p.EndGround(a); left || !p.Grounded {
		t.Fatalf("player must stay grounded while b is open")
	}
	if left, _ := p.EndGround(b); !left || p.Grounded {
		t.Fatalf("player must leave the ground when the last contact ends")
	}
}

func TestCanJump(t *testing.T) {
	tests := []struct {
		name     string
		held     bool
		grounded bool
		frozen   bool
		cooldown int
		want     bool
	}{
		{"all_clear", true, true, false, 0, true},
		{"not_held", false, true, false, 0, false},
		{"airborne", true, false, false, 0, false},
		{"cooling_down", true, true, false, 3, false},
		{"frozen", true, true, true, 0, false},
		{"frozen_everything_else_clear", true, true, true, -1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPlayer()
			p.JumpHeld = tc.held
			if tc.grounded {
				p.BeginGround(ContactKey{Entity: 1})
			}
			p.SetFrozen(tc.frozen)
			p.JumpCooldown = tc.cooldown
			if got := p.CanJump(); got != tc.want {
				t.Fatalf("CanJump() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSetFrozenKeepsDensityInSync(t *testing.T) {
	p := newTestPlayer()
	for i, v := range []bool{true, true, false, true, false, false} {
		p.SetFrozen(v)
		want := p.BaseDensity
		if p.Frozen {
			want = p.FrozenDensity
		}
		if p.Density != want {
			t.Fatalf("step %d: frozen=%v density=%v", i, p.Frozen, p.Density)
		}
	}
	if p.SetFrozen(false) {
		t.Fatalf("no-op SetFrozen should report no change")
	}
}

func TestSetMovement(t *testing.T) {
	p := newTestPlayer()
	p.SetMovement(-1)
	if p.Movement != -1 || p.Facing != FacingLeft {
		t.Fatalf("movement=%v facing=%v", p.Movement, p.Facing)
	}
	p.SetMovement(0)
	if p.Movement != 0 || p.Facing != FacingLeft {
		t.Fatalf("zero axis must keep facing, got %v", p.Facing)
	}
	p.SetFrozen(true)
	p.SetMovement(1)
	if p.Movement != 0 {
		t.Fatalf("frozen player must not move, got %v", p.Movement)
	}

	p = newTestPlayer()
	p.Force = 2
	p.SetMovement(1)
	if math.Abs(p.Movement-0.2) > 1e-12 {
		t.Fatalf("movement = %v, want 0.2", p.Movement)
	}
}

func TestAccelerationRate(t *testing.T) {
	tests := []struct {
		name     string
		movement float64
		vx       float64
		want     float64
	}{
		{"accelerating", 1, 0, DefaultAccelerationRate},
		{"past_target_right", 1, 5.5, 0},
		{"past_target_left", -1, -6, 0},
		{"reversing", 1, -3, DefaultAccelerationRate},
		{"stopping", 0, 4, FastStopRate},
		{"tiny_target", 0.001, 4, FastStopRate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPlayer()
			p.Movement = tc.movement
			if got := p.AccelerationRate(tc.vx); got != tc.want {
				t.Fatalf("rate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHorizontalForceHoldsAtTarget(t *testing.T) {
	p := newTestPlayer()
	p.Movement = 1
	if f := p.HorizontalForce(5); f != 0 {
		t.Fatalf("force at target = %v", f)
	}
	if f := p.HorizontalForce(7); f != 0 {
		t.Fatalf("force above target = %v, want 0", f)
	}
	if f := p.HorizontalForce(4); f <= 0 {
		t.Fatalf("force below target = %v, want > 0", f)
	}
}

func TestGravityScaleFor(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		held     bool
		frozen   bool
		vy       float64
		want     float64
	}{
		{"grounded", true, false, false, -3, 1},
		{"falling", false, true, false, -3, 2.5},
		{"rising_held", false, true, false, 3, 1},
		{"rising_released", false, false, false, 3, 2},
		{"rising_frozen", false, true, true, 3, 2},
		{"apex", false, true, false, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPlayer()
			if tc.grounded {
				p.BeginGround(ContactKey{Entity: 1})
			}
			p.JumpHeld = tc.held
			p.SetFrozen(tc.frozen)
			if got := p.GravityScaleFor(tc.vy); got != tc.want {
				t.Fatalf("scale = %v, want %v", got, tc.want)
			}
		})
	}
}
