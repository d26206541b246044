package system

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

var ErrMalformedContact = errors.New("system: malformed contact")

// FixtureRef is the user data attached to every chipmunk shape.
type FixtureRef struct {
	Entity ecs.Entity
	Tag    component.SensorKind
	Index  int
}

func (r FixtureRef) key() component.ContactKey {
	return component.ContactKey{Entity: uint64(r.Entity), Fixture: r.Index}
}

func (r FixtureRef) solid() bool {
	return r.Tag == component.SensorNone
}

// Contact is one begin or end notification as the engine reports it.
// A and B hold the raw fixture user data.
type Contact struct {
	A                any
	B                any
	Normal           cp.Vector
	RelativeVelocity cp.Vector
}

// NormalSpeed is the closing speed along the contact normal.
func (c Contact) NormalSpeed() float64 {
	return math.Abs(c.RelativeVelocity.Dot(c.Normal))
}

type ContactPolicy uint8

const (
	// ContactSkip logs malformed contacts and keeps stepping.
	ContactSkip ContactPolicy = iota
	// ContactStrict also reports the first malformed contact of a tick as
	// an error once the step has finished.
	ContactStrict
)

func (p ContactPolicy) String() string {
	if p == ContactStrict {
		return "strict"
	}
	return "skip"
}

func ParseContactPolicy(s string) (ContactPolicy, error) {
	switch s {
	case "", "skip":
		return ContactSkip, nil
	case "strict":
		return ContactStrict, nil
	}
	return ContactSkip, fmt.Errorf("unknown contact policy %q", s)
}

// ContactDispatcher turns engine contact notifications into gameplay
// flags. It only writes component state; structural changes are left to
// the post-step systems.
type ContactDispatcher struct {
	policy    ContactPolicy
	sensors   map[component.SensorKind]sensorHandler
	log       *log.Logger
	anomalies int
	err       error
}

func NewContactDispatcher(policy ContactPolicy, logger *log.Logger) *ContactDispatcher {
	if logger == nil {
		logger = common.Logger("contacts")
	}
	return &ContactDispatcher{
		policy:  policy,
		sensors: newSensorHandlers(logger),
		log:     logger,
	}
}

func (d *ContactDispatcher) Policy() ContactPolicy {
	return d.policy
}

func (d *ContactDispatcher) SetPolicy(p ContactPolicy) {
	d.policy = p
}

// Anomalies counts malformed contacts seen since creation.
func (d *ContactDispatcher) Anomalies() int {
	return d.anomalies
}

// TakeErr returns the pending strict-mode error and clears it.
func (d *ContactDispatcher) TakeErr() error {
	err := d.err
	d.err = nil
	return err
}

func (d *ContactDispatcher) BeginContact(w *ecs.World, c Contact) {
	d.dispatch(w, c, true)
}

func (d *ContactDispatcher) EndContact(w *ecs.World, c Contact) {
	d.dispatch(w, c, false)
}

func (d *ContactDispatcher) dispatch(w *ecs.World, c Contact, begin bool) {
	if d == nil {
		return
	}
	a, err := resolveFixture(w, c.A)
	if err != nil {
		d.anomaly(w, err, begin)
		return
	}
	b, err := resolveFixture(w, c.B)
	if err != nil {
		d.anomaly(w, err, begin)
		return
	}
	if a.Entity == b.Entity {
		return
	}

	for _, pair := range [2][2]FixtureRef{{a, b}, {b, a}} {
		self, other := pair[0], pair[1]
		h, ok := d.sensors[self.Tag]
		if !ok {
			continue
		}
		if begin {
			err = h.OnEnter(w, self, other, c)
		} else {
			err = h.OnExit(w, self, other)
		}
		if err != nil {
			d.anomaly(w, err, begin)
		}
	}

	if !begin {
		return
	}
	d.bounce(w, a, b, c)
	d.bounce(w, b, a, c)
	d.strike(w, a, b, c)
	d.strike(w, b, a, c)
}

func resolveFixture(w *ecs.World, data any) (FixtureRef, error) {
	if data == nil {
		return FixtureRef{}, fmt.Errorf("%w: fixture has no user data", ErrMalformedContact)
	}
	ref, ok := data.(FixtureRef)
	if !ok {
		return FixtureRef{}, fmt.Errorf("%w: unexpected fixture user data %T", ErrMalformedContact, data)
	}
	if !ref.Tag.Known() {
		return FixtureRef{}, fmt.Errorf("%w: unknown fixture tag %v", ErrMalformedContact, ref.Tag)
	}
	if !ecs.IsAlive(w, ref.Entity) {
		return FixtureRef{}, fmt.Errorf("%w: fixture owner %v is not alive", ErrMalformedContact, ref.Entity)
	}
	return ref, nil
}

func (d *ContactDispatcher) anomaly(w *ecs.World, err error, begin bool) {
	d.anomalies++
	phase := "end"
	if begin {
		phase = "begin"
	}
	d.log.Warn("skipping contact", "phase", phase, "err", err)
	w.Events().Push(ecs.Event{Kind: ecs.EventContactAnomaly, Data: err.Error()})
	if d.policy == ContactStrict && d.err == nil {
		d.err = err
	}
}

// bounce hands the player a capped rebound when it lands on a bounce
// platform from above. It applies on every qualifying contact.
func (d *ContactDispatcher) bounce(w *ecs.World, platform, other FixtureRef, c Contact) {
	if !platform.solid() || !other.solid() {
		return
	}
	b, ok := ecs.Get(w, platform.Entity, component.BounceComponent.Kind())
	if !ok {
		return
	}
	p, ok := ecs.Get(w, other.Entity, component.PlayerComponent.Kind())
	if !ok {
		return
	}
	platformPos, ok := positionOf(w, platform.Entity)
	if !ok {
		return
	}
	playerPos, ok := positionOf(w, other.Entity)
	if !ok || playerPos.Y <= platformPos.Y {
		return
	}
	v := b.Reaction(c.NormalSpeed())
	p.RequestBounce(v)
	d.log.Debug("bounce", "platform", platform.Entity, "impact", c.NormalSpeed(), "vy", v)
}

// strike arms a breakable platform hit hard enough by any dynamic body.
func (d *ContactDispatcher) strike(w *ecs.World, platform, other FixtureRef, c Contact) {
	if !platform.solid() || !other.solid() {
		return
	}
	br, ok := ecs.Get(w, platform.Entity, component.BreakableComponent.Kind())
	if !ok {
		return
	}
	pb, ok := ecs.Get(w, other.Entity, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Kind != component.BodyDynamic {
		return
	}
	if br.Strike(c.NormalSpeed()) {
		d.log.Debug("breakable armed", "platform", platform.Entity, "speed", c.NormalSpeed())
	}
}

func positionOf(w *ecs.World, e ecs.Entity) (cp.Vector, bool) {
	if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		return pb.Body.Position(), true
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		return cp.Vector{X: t.X, Y: t.Y}, true
	}
	return cp.Vector{}, false
}
