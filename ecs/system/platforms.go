package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

// PlatformSystem applies the reactions the dispatcher flagged during the
// step. It runs after Space.Step has returned, so it may add and remove
// shapes freely.
type PlatformSystem struct {
	physics *PhysicsSystem
	log     *log.Logger
}

func NewPlatformSystem(physics *PhysicsSystem, logger *log.Logger) *PlatformSystem {
	if logger == nil {
		logger = common.Logger("platforms")
	}
	return &PlatformSystem{physics: physics, log: logger}
}

func (s *PlatformSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.PlayerComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, p *component.Player, pb *component.PhysicsBody) {
		if !p.BouncePending {
			return
		}
		p.BouncePending = false
		if pb.Body == nil || !pb.Active {
			return
		}
		v := pb.Body.Velocity()
		pb.Body.SetVelocity(v.X, p.BounceVelocity)
		w.Events().Push(ecs.Event{Kind: ecs.EventBounce, Entity: e, Data: p.BounceVelocity})
	})

	ecs.ForEach2(w, component.BreakableComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, br *component.Breakable, pb *component.PhysicsBody) {
		if !br.Triggered || !br.Break() {
			return
		}
		s.physics.Deactivate(w, e)
		s.log.Debug("platform broken", "platform", e)
		w.Events().Push(ecs.Event{Kind: ecs.EventPlatformBroken, Entity: e})
	})

	ecs.ForEach2(w, component.PassThroughComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, pt *component.PassThrough, pb *component.PhysicsBody) {
		if !pt.Dirty {
			return
		}
		pt.Dirty = false
		s.physics.SetSolidSensor(e, pt.PassThrough)
		kind := ecs.EventPassThroughClose
		if pt.PassThrough {
			kind = ecs.EventPassThroughOpen
		}
		s.log.Debug("pass-through mode", "platform", e, "open", pt.PassThrough)
		w.Events().Push(ecs.Event{Kind: kind, Entity: e})
	})
}
