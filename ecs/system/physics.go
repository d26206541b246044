package system

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

// Every gameplay fixture shares one collision type so a single handler
// sees every begin and separate.
const collisionTypeFixture cp.CollisionType = 1

type PhysicsConfig struct {
	Dt                 float64
	VelocityIterations int
	PositionIterations int
	Gravity            float64
	CollisionSlop      float64
	Logger             *log.Logger
}

func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Dt:                 common.Dt,
		VelocityIterations: common.DefaultVelocityIterations,
		PositionIterations: common.DefaultPositionIterations,
		Gravity:            common.DefaultGravity,
		CollisionSlop:      0.01,
	}
}

type PhysicsSystem struct {
	space         *cp.Space
	dt            float64
	handlersReady bool

	dispatcher *ContactDispatcher
	world      *ecs.World
	entities   map[ecs.Entity]*bodyInfo
	log        *log.Logger
}

type bodyInfo struct {
	body    *cp.Body
	shapes  []*cp.Shape
	removed bool
}

func NewPhysicsSystem(cfg PhysicsConfig, dispatcher *ContactDispatcher) *PhysicsSystem {
	if cfg.Dt <= 0 {
		cfg.Dt = common.Dt
	}
	iterations := cfg.VelocityIterations + cfg.PositionIterations
	if iterations <= 0 {
		iterations = common.DefaultVelocityIterations + common.DefaultPositionIterations
	}
	logger := cfg.Logger
	if logger == nil {
		logger = common.Logger("physics")
	}
	if dispatcher == nil {
		dispatcher = NewContactDispatcher(ContactSkip, nil)
	}

	space := cp.NewSpace()
	space.Iterations = uint(iterations)
	space.SetGravity(cp.Vector{X: 0, Y: cfg.Gravity})
	if cfg.CollisionSlop > 0 {
		space.SetCollisionSlop(cfg.CollisionSlop)
	}
	return &PhysicsSystem{
		space:      space,
		dt:         cfg.Dt,
		dispatcher: dispatcher,
		entities:   make(map[ecs.Entity]*bodyInfo),
		log:        logger,
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Dispatcher() *ContactDispatcher {
	if ps == nil {
		return nil
	}
	return ps.dispatcher
}

func (ps *PhysicsSystem) SetGravity(g float64) {
	if ps == nil {
		return
	}
	ps.space.SetGravity(cp.Vector{X: 0, Y: g})
}

// Sync creates chipmunk bodies for new physics entities and drops the
// ones whose entity is gone. It is safe to call outside of Update.
func (ps *PhysicsSystem) Sync(w *ecs.World) error {
	if ps == nil || w == nil {
		return nil
	}
	ps.world = w
	ps.ensureHandlers()
	return ps.syncEntities(w)
}

// Update advances the simulation one fixed tick. Contact callbacks fire
// synchronously inside Step.
func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if err := ps.Sync(w); err != nil {
		ps.log.Error("sync bodies", "err", err)
	}
	ps.space.Step(ps.dt)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady {
		return
	}
	handler := ps.space.NewCollisionHandler(collisionTypeFixture, collisionTypeFixture)
	handler.UserData = ps
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		sys.dispatcher.BeginContact(sys.world, contactFromArbiter(arb))
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return
		}
		sys.dispatcher.EndContact(sys.world, contactFromArbiter(arb))
	}
	ps.handlersReady = true
}

func contactFromArbiter(arb *cp.Arbiter) Contact {
	c := Contact{Normal: arb.Normal()}
	a, b := arb.Shapes()
	if a != nil {
		c.A = a.UserData
	}
	if b != nil {
		c.B = b.UserData
	}
	ba, bb := arb.Bodies()
	if ba != nil && bb != nil {
		c.RelativeVelocity = bb.Velocity().Sub(ba.Velocity())
	}
	return c
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) error {
	ps.cleanupEntities(w)

	var firstErr error
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, t *component.Transform, pb *component.PhysicsBody) {
		if _, ok := ps.entities[e]; ok || pb.Body != nil || !pb.Active {
			return
		}
		sensors, _ := ecs.Get(w, e, component.SensorsComponent.Kind())
		player, _ := ecs.Get(w, e, component.PlayerComponent.Kind())
		info, err := ps.createBodyInfo(e, t, pb, sensors, player)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("physics: create body for %v: %w", e, err)
			}
			return
		}
		ps.entities[e] = info
	})
	return firstErr
}

func (ps *PhysicsSystem) createBodyInfo(e ecs.Entity, t *component.Transform, pb *component.PhysicsBody, sensors *component.Sensors, player *component.Player) (*bodyInfo, error) {
	var body *cp.Body
	if pb.Kind == component.BodyDynamic {
		body = cp.NewBody(0, 0)
	} else {
		body = cp.NewStaticBody()
	}
	body.SetPosition(cp.Vector{X: t.X, Y: t.Y})
	body.SetAngle(t.Rotation)
	body.UserData = e

	solid, err := newSolidShape(body, pb.Shape)
	if err != nil {
		return nil, err
	}
	solid.SetFriction(pb.Friction)
	solid.SetElasticity(pb.Restitution)
	solid.SetCollisionType(collisionTypeFixture)
	solid.UserData = FixtureRef{Entity: e, Tag: pb.Tag, Index: 0}
	if pb.Tag != component.SensorNone {
		solid.SetSensor(true)
	}

	ps.space.AddBody(body)
	ps.space.AddShape(solid)
	info := &bodyInfo{body: body, shapes: []*cp.Shape{solid}}

	if sensors != nil {
		for i, spec := range sensors.Specs {
			bb := cp.BB{
				L: spec.OffsetX - spec.HalfW,
				B: spec.OffsetY - spec.HalfH,
				R: spec.OffsetX + spec.HalfW,
				T: spec.OffsetY + spec.HalfH,
			}
			sensor := cp.NewBox2(body, bb, 0)
			sensor.SetSensor(true)
			sensor.SetCollisionType(collisionTypeFixture)
			sensor.UserData = FixtureRef{Entity: e, Tag: spec.Kind, Index: i + 1}
			ps.space.AddShape(sensor)
			info.shapes = append(info.shapes, sensor)
		}
	}

	pb.Body = body
	pb.Fixtures = info.shapes

	if pb.Kind == component.BodyDynamic {
		density := pb.Density
		if player != nil {
			density = player.Density
		}
		applyDensity(pb, density)
		body.SetVelocity(pb.VelocityX, pb.VelocityY)
		if player != nil {
			body.SetVelocityUpdateFunc(playerVelocityFunc(player))
		}
	}
	return info, nil
}

func newSolidShape(body *cp.Body, desc component.ShapeDesc) (*cp.Shape, error) {
	switch desc.Kind {
	case component.ShapeBox:
		if desc.HalfW <= 0 || desc.HalfH <= 0 {
			return nil, fmt.Errorf("box needs positive half extents, got %vx%v", desc.HalfW, desc.HalfH)
		}
		return cp.NewBox(body, desc.HalfW*2, desc.HalfH*2, 0), nil
	case component.ShapeCircle:
		if desc.Radius <= 0 {
			return nil, fmt.Errorf("circle needs a positive radius, got %v", desc.Radius)
		}
		return cp.NewCircle(body, desc.Radius, cp.Vector{}), nil
	case component.ShapePolygon:
		if len(desc.Points) < 3 {
			return nil, fmt.Errorf("polygon needs at least 3 points, got %d", len(desc.Points))
		}
		return cp.NewPolyShape(body, len(desc.Points), desc.Points, cp.NewTransformIdentity(), 0), nil
	}
	return nil, fmt.Errorf("unknown shape kind %d", desc.Kind)
}

// applyDensity pushes a density to the solid fixture and keeps fixed
// rotation bodies from picking up a finite moment.
func applyDensity(pb *component.PhysicsBody, density float64) {
	solid := pb.Solid()
	if solid == nil || pb.Body == nil || pb.Kind != component.BodyDynamic {
		return
	}
	solid.SetDensity(density)
	if pb.FixedRotation {
		pb.Body.SetMoment(math.Inf(1))
	}
}

// RefreshMass pushes the current density of e to its solid fixture. The
// player's density wins over the configured body density.
func (ps *PhysicsSystem) RefreshMass(w *ecs.World, e ecs.Entity) bool {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil || !pb.Active || pb.Kind != component.BodyDynamic {
		return false
	}
	density := pb.Density
	if p, ok := ecs.Get(w, e, component.PlayerComponent.Kind()); ok {
		density = p.Density
	}
	applyDensity(pb, density)
	return true
}

// playerVelocityFunc scales gravity by the player's current gravity scale
// and applies linear damping on top of the space damping.
func playerVelocityFunc(p *component.Player) cp.BodyVelocityFunc {
	return func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, gravity.Mult(p.GravityScale), damping, dt)
		if p.Damping > 0 {
			body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*p.Damping)))
		}
	}
}

// Deactivate takes an entity's body and fixtures out of the space. It must
// only run between steps.
func (ps *PhysicsSystem) Deactivate(w *ecs.World, e ecs.Entity) bool {
	if ps == nil {
		return false
	}
	info := ps.entities[e]
	if info == nil || info.removed {
		return false
	}
	ps.world = w
	ps.removeInfo(info)
	if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		pb.Active = false
		pb.Fixtures = nil
	}
	return true
}

// SetSolidSensor switches the solid fixtures of e between colliding and
// sensor mode.
func (ps *PhysicsSystem) SetSolidSensor(e ecs.Entity, sensor bool) bool {
	if ps == nil {
		return false
	}
	info := ps.entities[e]
	if info == nil || info.removed {
		return false
	}
	for _, shape := range info.shapes {
		ref, ok := shape.UserData.(FixtureRef)
		if ok && ref.Tag == component.SensorNone {
			shape.SetSensor(sensor)
		}
	}
	return true
}

func (ps *PhysicsSystem) removeInfo(info *bodyInfo) {
	for _, shape := range info.shapes {
		if shape != nil && ps.space.ContainsShape(shape) {
			ps.space.RemoveShape(shape)
		}
	}
	if info.body != nil && ps.space.ContainsBody(info.body) {
		ps.space.RemoveBody(info.body)
	}
	info.removed = true
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, t *component.Transform, pb *component.PhysicsBody) {
		if pb.Body == nil || !pb.Active || pb.Kind != component.BodyDynamic {
			return
		}
		pos := pb.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
		t.Rotation = pb.Body.Angle()
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		if !info.removed {
			ps.removeInfo(info)
		}
		delete(ps.entities, e)
	}
}
