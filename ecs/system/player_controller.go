package system

import (
	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

// PlayerControllerSystem turns the input snapshot and the contact flags
// into forces and velocity changes before the physics step.
type PlayerControllerSystem struct {
	log *log.Logger
}

func NewPlayerControllerSystem(logger *log.Logger) *PlayerControllerSystem {
	if logger == nil {
		logger = common.Logger("player")
	}
	return &PlayerControllerSystem{log: logger}
}

func (s *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach3(w, component.InputComponent.Kind(), component.PlayerComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, in *component.Input, p *component.Player, pb *component.PhysicsBody) {
		if pb.Body == nil || !pb.Active {
			return
		}
		p.TickCooldown()

		if p.SetFrozen(in.Freeze) {
			applyDensity(pb, p.Density)
			s.log.Debug("freeze", "player", e, "frozen", p.Frozen, "density", p.Density)
			w.Events().Push(ecs.Event{Kind: ecs.EventFreeze, Entity: e, Data: p.Frozen})
		}
		p.JumpHeld = in.Jump
		p.SetMovement(in.MoveX)

		body := pb.Body
		vel := body.Velocity()
		if f := p.HorizontalForce(vel.X); f != 0 {
			body.ApplyForceAtWorldPoint(cp.Vector{X: f}, body.Position())
		}

		switch {
		case p.CanJump():
			vel.Y = p.JumpVelocity
			body.SetVelocity(vel.X, vel.Y)
			p.JumpCooldown = p.JumpCooldownTicks
			w.Events().Push(ecs.Event{Kind: ecs.EventJump, Entity: e})
		case p.HeadBlocked && vel.Y > 0:
			vel.Y = 0
			body.SetVelocity(vel.X, 0)
		}

		p.GravityScale = p.GravityScaleFor(vel.Y)
	})
}
