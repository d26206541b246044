package component

import "math"

type Facing int8

const (
	FacingRight Facing = 1
	FacingLeft  Facing = -1
)

const (
	DefaultAccelerationRate = 1.2
	FastStopRate            = 1.8
	stopThreshold           = 0.01
)

// Player holds the tuning and the orthogonal state flags of the player.
// Grounded and HeadBlocked are derived from reference-counted contact sets
// and are only written through the Begin/End methods.
type Player struct {
	Force             float64
	Damping           float64
	MaxSpeed          float64
	JumpVelocity      float64
	JumpCooldownTicks int
	BaseDensity       float64
	FrozenDensity     float64
	FallMultiplier    float64
	LowJumpMultiplier float64

	Movement     float64
	Facing       Facing
	Grounded     bool
	HeadBlocked  bool
	JumpHeld     bool
	Frozen       bool
	Density      float64
	JumpCooldown int
	GravityScale float64

	BouncePending  bool
	BounceVelocity float64

	Ground ContactSet
	Head   ContactSet
}

var PlayerComponent = NewComponent[Player]()

// Init puts the runtime state in its spawn configuration.
func (p *Player) Init() {
	p.Movement = 0
	p.Facing = FacingRight
	p.Grounded = false
	p.HeadBlocked = false
	p.JumpHeld = false
	p.Frozen = false
	p.Density = p.BaseDensity
	p.JumpCooldown = 0
	p.GravityScale = 1
	p.BouncePending = false
	p.BounceVelocity = 0
	p.Ground.Clear()
	p.Head.Clear()
}

func (p *Player) SetMovement(axis float64) {
	if p.Frozen {
		p.Movement = 0
		return
	}
	p.Movement = axis * p.Force / 10
	switch {
	case axis > 0:
		p.Facing = FacingRight
	case axis < 0:
		p.Facing = FacingLeft
	}
}

func (p *Player) CanJump() bool {
	return p.JumpHeld && p.JumpCooldown <= 0 && p.Grounded && !p.Frozen
}

// SetFrozen flips the frozen flag and the density together. It reports
// whether anything changed so callers can push the new density to the body.
func (p *Player) SetFrozen(v bool) bool {
	if p.Frozen == v {
		return false
	}
	p.Frozen = v
	if v {
		p.Density = p.FrozenDensity
		p.Movement = 0
	} else {
		p.Density = p.BaseDensity
	}
	return true
}

func (p *Player) TargetSpeed() float64 {
	return p.MaxSpeed * p.Movement
}

// AccelerationRate picks the horizontal gain for the current velocity.
func (p *Player) AccelerationRate(vx float64) float64 {
	target := p.TargetSpeed()
	switch {
	case math.Abs(target) < stopThreshold:
		return FastStopRate
	case target > 0 && vx > target, target < 0 && vx < target:
		return 0
	}
	return DefaultAccelerationRate
}

func (p *Player) HorizontalForce(vx float64) float64 {
	return (p.TargetSpeed() - vx) * p.AccelerationRate(vx)
}

// GravityScaleFor shapes the jump arc: heavier while falling, and a
// shorter hop when the jump is released early or the player is frozen.
func (p *Player) GravityScaleFor(vy float64) float64 {
	if p.Grounded {
		return 1
	}
	switch {
	case vy < 0 && p.FallMultiplier > 0:
		return p.FallMultiplier
	case vy > 0 && (!p.JumpHeld || p.Frozen) && p.LowJumpMultiplier > 0:
		return p.LowJumpMultiplier
	}
	return 1
}

func (p *Player) TickCooldown() {
	if p.JumpCooldown > 0 {
		p.JumpCooldown--
	}
}

// BeginGround reports whether the player just became grounded.
func (p *Player) BeginGround(k ContactKey) bool {
	first := p.Ground.Begin(k)
	p.Grounded = p.Ground.Len() > 0
	return first
}

// EndGround reports whether the player just left the ground. ok is false
// for an end with no matching begin.
func (p *Player) EndGround(k ContactKey) (left bool, ok bool) {
	left, ok = p.Ground.End(k)
	p.Grounded = p.Ground.Len() > 0
	return left, ok
}

func (p *Player) BeginHead(k ContactKey) bool {
	first := p.Head.Begin(k)
	p.HeadBlocked = p.Head.Len() > 0
	return first
}

func (p *Player) EndHead(k ContactKey) (cleared bool, ok bool) {
	cleared, ok = p.Head.End(k)
	p.HeadBlocked = p.Head.Len() > 0
	return cleared, ok
}

func (p *Player) RequestBounce(vy float64) {
	p.BouncePending = true
	p.BounceVelocity = vy
}
