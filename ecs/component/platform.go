package component

import "math"

type Bounce struct {
	Coefficient float64
	MaxVelocity float64
}

var BounceComponent = NewComponent[Bounce]()

// Reaction is the vertical velocity handed back for an impact, capped at
// MaxVelocity.
func (b *Bounce) Reaction(impactSpeed float64) float64 {
	return math.Min(b.Coefficient*math.Abs(impactSpeed), b.MaxVelocity)
}

type Breakable struct {
	BreakMinVelocity float64
	Triggered        bool
	Broken           bool
}

var BreakableComponent = NewComponent[Breakable]()

// Strike arms the platform when the impact is hard enough.
func (b *Breakable) Strike(normalSpeed float64) bool {
	if b.Broken || b.Triggered {
		return false
	}
	if math.Abs(normalSpeed) < b.BreakMinVelocity {
		return false
	}
	b.Triggered = true
	return true
}

// Break performs the one-way unbroken to broken transition.
func (b *Breakable) Break() bool {
	if b.Broken {
		return false
	}
	b.Broken = true
	b.Triggered = false
	return true
}

// PassThrough tracks the solid/pass-through mode of a one-way platform.
// Dirty is set whenever the fixtures need to be switched to match.
type PassThrough struct {
	PassThrough bool
	Dirty       bool
	Body        ContactSet
	Bottom      ContactSet
}

var PassThroughComponent = NewComponent[PassThrough]()

func (p *PassThrough) Open() bool {
	if p.PassThrough {
		return false
	}
	p.PassThrough = true
	p.Dirty = true
	return true
}

func (p *PassThrough) Close() bool {
	if !p.PassThrough {
		return false
	}
	p.PassThrough = false
	p.Dirty = true
	return true
}

// Clear reports whether nothing overlaps either sensor any more.
func (p *PassThrough) Clear() bool {
	return p.Body.Len() == 0 && p.Bottom.Len() == 0
}

type Goal struct{}

var GoalComponent = NewComponent[Goal]()
