package component

import "math"

// phaseEpsilon absorbs the rounding of accumulated step times so that a
// boundary landing on a tick switches on that tick.
const phaseEpsilon = 1e-9

// Fan drives the duty cycle of the WindField on the same entity.
type Fan struct {
	Period        float64
	PeriodOnRatio float64
	// Ticks counts fixed steps; CurrentTime is derived from it.
	Ticks       uint64
	CurrentTime float64
	Active      bool
}

var FanComponent = NewComponent[Fan]()

// OnPhase reports whether the cycle is in its blowing part. A zero period
// means always on.
func (f *Fan) OnPhase() bool {
	if f.Period <= 0 {
		return true
	}
	t := math.Mod(f.CurrentTime, f.Period)
	if f.Period-t < phaseEpsilon {
		t = 0
	}
	return t < f.PeriodOnRatio*f.Period-phaseEpsilon
}

func (f *Fan) FieldActive() bool {
	return f.Active && f.OnPhase()
}

// Advance moves the cycle forward one fixed step of dt seconds.
func (f *Fan) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	f.Ticks++
	f.CurrentTime = float64(f.Ticks) * dt
}
