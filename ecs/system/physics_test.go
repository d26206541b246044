package system

import (
	"math"
	"testing"

	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

type rig struct {
	t       *testing.T
	w       *ecs.World
	physics *PhysicsSystem
	sched   *ecs.Scheduler
	events  []ecs.Event
}

func newRig(t *testing.T, gravity float64) *rig {
	t.Helper()
	cfg := DefaultPhysicsConfig()
	cfg.Gravity = gravity
	ps := NewPhysicsSystem(cfg, NewContactDispatcher(ContactSkip, nil))
	return &rig{
		t:       t,
		w:       ecs.NewWorld(),
		physics: ps,
		sched: ecs.NewScheduler(
			NewPlayerControllerSystem(nil),
			NewWindSystem(ps, nil),
			ps,
			NewPlatformSystem(ps, nil),
			NewFanSystem(cfg.Dt, nil),
			NewLevelSystem(cfg.Dt, false, nil),
		),
	}
}

func (r *rig) addPlayer(x, y float64, withInput bool) ecs.Entity {
	r.t.Helper()
	e := ecs.CreateEntity(r.w)
	p := &component.Player{
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
	mustAdd(r.t, r.w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	mustAdd(r.t, r.w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Kind:          component.BodyDynamic,
		Shape:         component.ShapeDesc{Kind: component.ShapeBox, HalfW: 0.5, HalfH: 0.5},
		Density:       1,
		FixedRotation: true,
		Active:        true,
	})
	mustAdd(r.t, r.w, e, component.SensorsComponent.Kind(), &component.Sensors{Specs: []component.SensorSpec{
		{Kind: component.SensorGround, OffsetY: -0.5, HalfW: 0.4, HalfH: 0.05},
		{Kind: component.SensorHead, OffsetY: 0.5, HalfW: 0.4, HalfH: 0.05},
	}})
	mustAdd(r.t, r.w, e, component.PlayerComponent.Kind(), p)
	if withInput {
		mustAdd(r.t, r.w, e, component.InputComponent.Kind(), &component.Input{})
	}
	return e
}

func (r *rig) addPlatform(x, y, hw, hh float64) ecs.Entity {
	r.t.Helper()
	e := ecs.CreateEntity(r.w)
	mustAdd(r.t, r.w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	mustAdd(r.t, r.w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Kind:     component.BodyStatic,
		Shape:    component.ShapeDesc{Kind: component.ShapeBox, HalfW: hw, HalfH: hh},
		Friction: 0.8,
		Active:   true,
	})
	return e
}

func (r *rig) addCrate(x, y float64) ecs.Entity {
	r.t.Helper()
	e := ecs.CreateEntity(r.w)
	mustAdd(r.t, r.w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	mustAdd(r.t, r.w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Kind:          component.BodyDynamic,
		Shape:         component.ShapeDesc{Kind: component.ShapeBox, HalfW: 0.25, HalfH: 0.25},
		Density:       1,
		FixedRotation: true,
		Active:        true,
	})
	return e
}

func (r *rig) setInput(player ecs.Entity, in component.Input) {
	r.t.Helper()
	cur, ok := ecs.Get(r.w, player, component.InputComponent.Kind())
	if !ok {
		r.t.Fatalf("player has no input")
	}
	*cur = in
}

func (r *rig) step(n int) {
	r.t.Helper()
	if err := r.physics.Sync(r.w); err != nil {
		r.t.Fatalf("sync: %v", err)
	}
	for i := 0; i < n; i++ {
		r.sched.Update(r.w)
		r.events = append(r.events, r.w.Events().Drain()...)
	}
}

func (r *rig) count(kind ecs.EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *rig) player(e ecs.Entity) (*component.Player, *component.PhysicsBody) {
	p, _ := ecs.Get(r.w, e, component.PlayerComponent.Kind())
	pb, _ := ecs.Get(r.w, e, component.PhysicsBodyComponent.Kind())
	return p, pb
}

func TestPlayerLandsAndJumps(t *testing.T) {
	r := newRig(t, -20)
	r.addPlatform(0, 0, 5, 0.5)
	e := r.addPlayer(0, 2, true)

	r.step(90)
	p, pb := r.player(e)
	if !p.Grounded {
		t.Fatalf("player should be grounded after landing, y=%v", pb.Body.Position().Y)
	}
	if y := pb.Body.Position().Y; math.Abs(y-1) > 0.05 {
		t.Fatalf("player should rest on the platform, y=%v", y)
	}

	r.setInput(e, component.Input{Jump: true})
	r.step(1)
	if r.count(ecs.EventJump) != 1 {
		t.Fatalf("expected one jump, got %d", r.count(ecs.EventJump))
	}
	r.step(10)
	if p.Grounded {
		t.Fatalf("player should be airborne after jumping")
	}
	if y := pb.Body.Position().Y; y < 1.8 {
		t.Fatalf("player should have risen, y=%v", y)
	}
	if r.count(ecs.EventJump) != 1 {
		t.Fatalf("no second jump while airborne, got %d", r.count(ecs.EventJump))
	}
}

func TestFrozenPlayerCannotJumpAndIsHeavier(t *testing.T) {
	r := newRig(t, -20)
	r.addPlatform(0, 0, 5, 0.5)
	e := r.addPlayer(0, 1.2, true)
	r.step(60)

	p, pb := r.player(e)
	base := pb.Body.Mass()

	r.setInput(e, component.Input{Jump: true, Freeze: true})
	r.step(5)
	if !p.Frozen || p.Density != p.FrozenDensity {
		t.Fatalf("frozen=%v density=%v", p.Frozen, p.Density)
	}
	if got := pb.Body.Mass(); math.Abs(got-base*4) > 1e-9 {
		t.Fatalf("frozen mass = %v, want %v", got, base*4)
	}
	if !math.IsInf(pb.Body.Moment(), 1) {
		t.Fatalf("fixed rotation lost after density change")
	}
	if r.count(ecs.EventJump) != 0 {
		t.Fatalf("frozen player must not jump")
	}

	r.setInput(e, component.Input{})
	r.step(1)
	if p.Frozen || math.Abs(pb.Body.Mass()-base) > 1e-9 {
		t.Fatalf("unfreeze should restore base mass, got %v", pb.Body.Mass())
	}
}

func TestPlayerReachesMaxSpeedWithoutOvershoot(t *testing.T) {
	r := newRig(t, 0)
	e := r.addPlayer(0, 0, true)
	r.setInput(e, component.Input{MoveX: 1})
	_, pb := r.player(e)

	r.step(1)
	prev := pb.Body.Velocity().X
	for i := 0; i < 600; i++ {
		r.step(1)
		vx := pb.Body.Velocity().X
		if vx < prev-1e-9 {
			t.Fatalf("tick %d: vx dropped from %v to %v", i, prev, vx)
		}
		if vx > 5+1e-9 {
			t.Fatalf("tick %d: vx %v overshot max speed", i, vx)
		}
		prev = vx
	}
	if math.Abs(prev-5) > 0.01 {
		t.Fatalf("vx = %v, want about 5", prev)
	}
}

func TestBreakablePlatformBreaksOnce(t *testing.T) {
	r := newRig(t, -20)
	platform := r.addPlatform(0, 0, 1, 0.25)
	br := &component.Breakable{BreakMinVelocity: 3}
	mustAdd(t, r.w, platform, component.BreakableComponent.Kind(), br)
	e := r.addPlayer(0, 3, true)

	r.step(120)
	if !br.Broken {
		t.Fatalf("hard landing should break the platform")
	}
	if r.count(ecs.EventPlatformBroken) != 1 {
		t.Fatalf("expected one break event, got %d", r.count(ecs.EventPlatformBroken))
	}
	pb, _ := ecs.Get(r.w, platform, component.PhysicsBodyComponent.Kind())
	if pb.Active || r.physics.Space().ContainsBody(pb.Body) {
		t.Fatalf("broken platform should be out of the space")
	}
	p, playerBody := r.player(e)
	if p.Grounded {
		t.Fatalf("player cannot stand on a broken platform")
	}
	if y := playerBody.Body.Position().Y; y > 0 {
		t.Fatalf("player should fall through, y=%v", y)
	}
}

func TestSoftLandingKeepsBreakable(t *testing.T) {
	r := newRig(t, -20)
	platform := r.addPlatform(0, 0, 1, 0.25)
	br := &component.Breakable{BreakMinVelocity: 100}
	mustAdd(t, r.w, platform, component.BreakableComponent.Kind(), br)
	e := r.addPlayer(0, 1.5, true)

	r.step(90)
	p, _ := r.player(e)
	if br.Broken || br.Triggered || !p.Grounded {
		t.Fatalf("broken=%v triggered=%v grounded=%v", br.Broken, br.Triggered, p.Grounded)
	}
}

func TestBounceNeverExceedsMaxVelocity(t *testing.T) {
	r := newRig(t, -20)
	platform := r.addPlatform(0, 0, 2, 0.25)
	b := &component.Bounce{Coefficient: 1, MaxVelocity: 8}
	mustAdd(t, r.w, platform, component.BounceComponent.Kind(), b)
	e := r.addPlayer(0, 4, true)
	_, pb := r.player(e)

	bounced := false
	for i := 0; i < 240; i++ {
		before := len(r.events)
		r.step(1)
		for _, ev := range r.events[before:] {
			if ev.Kind != ecs.EventBounce {
				continue
			}
			bounced = true
			vy := ev.Data.(float64)
			if vy > b.MaxVelocity || vy < 0 {
				t.Fatalf("bounce velocity %v outside [0, %v]", vy, b.MaxVelocity)
			}
			if got := pb.Body.Velocity().Y; got != vy {
				t.Fatalf("body vy = %v, want %v", got, vy)
			}
		}
	}
	if !bounced {
		t.Fatalf("expected at least one bounce")
	}
}

func TestPassThroughTraversal(t *testing.T) {
	r := newRig(t, 0)
	platform := r.addPlatform(0, 0, 2, 0.25)
	pt := &component.PassThrough{}
	mustAdd(t, r.w, platform, component.PassThroughComponent.Kind(), pt)
	mustAdd(t, r.w, platform, component.SensorsComponent.Kind(), &component.Sensors{Specs: []component.SensorSpec{
		{Kind: component.SensorBody, HalfW: 2.05, HalfH: 0.3},
		{Kind: component.SensorBottom, OffsetY: -0.35, HalfW: 2, HalfH: 0.1},
	}})
	e := r.addPlayer(0, -2, false)
	_, playerBody := r.player(e)
	playerBody.VelocityY = 6

	r.step(60)
	if r.count(ecs.EventPassThroughOpen) != 1 || r.count(ecs.EventPassThroughClose) != 1 {
		t.Fatalf("expected one open and one close, got %d/%d",
			r.count(ecs.EventPassThroughOpen), r.count(ecs.EventPassThroughClose))
	}
	if pt.PassThrough {
		t.Fatalf("platform should be solid again")
	}
	pb, _ := ecs.Get(r.w, platform, component.PhysicsBodyComponent.Kind())
	if pb.Solid().Sensor() {
		t.Fatalf("solid fixture should collide again")
	}
	if y := playerBody.Body.Position().Y; y < 3.5 {
		t.Fatalf("player should have passed through, y=%v", y)
	}

	// With gravity back on the player lands on top of the now solid platform.
	r.physics.SetGravity(-20)
	r.step(240)
	if y := playerBody.Body.Position().Y; math.Abs(y-0.75) > 0.05 {
		t.Fatalf("player should rest on the platform, y=%v", y)
	}
}

func TestWindPushesBodiesWhileFanBlows(t *testing.T) {
	r := newRig(t, 0)
	crate := r.addCrate(2, 0)
	fan := ecs.CreateEntity(r.w)
	field := &component.WindField{
		Breadth:      2,
		Length:       6,
		Strength:     5,
		Type:         component.WindConstant,
		BreadthGrids: 1,
		LengthGrids:  3,
	}
	field.BuildCells()
	mustAdd(t, r.w, fan, component.WindFieldComponent.Kind(), field)
	mustAdd(t, r.w, fan, component.FanComponent.Kind(), &component.Fan{Period: 1, PeriodOnRatio: 0.5, Active: true})
	NewFanSystem(0, nil).Sync(r.w)
	if !field.Active {
		t.Fatalf("fan should start blowing")
	}

	pb, _ := ecs.Get(r.w, crate, component.PhysicsBodyComponent.Kind())
	r.step(20)
	if !field.Active {
		t.Fatalf("fan should still blow at t=1/3")
	}
	if vx := pb.Body.Velocity().X; vx <= 0 {
		t.Fatalf("wind should push the crate, vx=%v", vx)
	}
	if vy := pb.Body.Velocity().Y; math.Abs(vy) > 1e-9 {
		t.Fatalf("wind blows along x only, vy=%v", vy)
	}

	r.step(20)
	if field.Active {
		t.Fatalf("fan should be off at t=2/3")
	}
	vx := pb.Body.Velocity().X
	r.step(10)
	if got := pb.Body.Velocity().X; got != vx {
		t.Fatalf("no push while the fan is off, vx %v -> %v", vx, got)
	}
}

func TestGoalCompletesLevel(t *testing.T) {
	r := newRig(t, -20)
	r.addPlatform(0, 0, 5, 0.5)
	state := &component.LevelState{Name: "goal", MinX: -50, MinY: -50, MaxX: 50, MaxY: 50}
	level := ecs.CreateEntity(r.w)
	mustAdd(t, r.w, level, component.LevelStateComponent.Kind(), state)

	goal := ecs.CreateEntity(r.w)
	mustAdd(t, r.w, goal, component.TransformComponent.Kind(), &component.Transform{X: 0, Y: 1.5})
	mustAdd(t, r.w, goal, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Kind:   component.BodyStatic,
		Shape:  component.ShapeDesc{Kind: component.ShapeBox, HalfW: 0.5, HalfH: 1},
		Tag:    component.SensorGoal,
		Active: true,
	})
	mustAdd(t, r.w, goal, component.GoalComponent.Kind(), &component.Goal{})
	r.addPlayer(0, 3, true)

	r.step(90)
	if !state.Complete || state.Failed {
		t.Fatalf("complete=%v failed=%v", state.Complete, state.Failed)
	}
	if r.count(ecs.EventLevelComplete) != 1 {
		t.Fatalf("expected one completion, got %d", r.count(ecs.EventLevelComplete))
	}
}

func TestFallingOutOfBoundsFailsLevel(t *testing.T) {
	r := newRig(t, -20)
	state := &component.LevelState{Name: "pit", MinX: -10, MinY: -5, MaxX: 10, MaxY: 10}
	level := ecs.CreateEntity(r.w)
	mustAdd(t, r.w, level, component.LevelStateComponent.Kind(), state)
	r.addPlayer(0, 0, true)

	r.step(120)
	if !state.Failed || state.FailReason != FailOutOfBounds {
		t.Fatalf("failed=%v reason=%q", state.Failed, state.FailReason)
	}
	if r.count(ecs.EventLevelFailed) != 1 {
		t.Fatalf("expected one failure event, got %d", r.count(ecs.EventLevelFailed))
	}
	if state.Ticks != 120 {
		t.Fatalf("ticks = %d, want 120", state.Ticks)
	}
}
