package entity

import (
	"fmt"

	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/prefabs"
)

// NewPlayerAt spawns the player described by spec centered on (x, y). The
// jump-feel multipliers are per level.
func NewPlayerAt(w *ecs.World, spec prefabs.PlayerSpec, fallMultiplier, lowJumpMultiplier, x, y float64) (ecs.Entity, error) {
	player := component.Player{
		FallMultiplier:    fallMultiplier,
		LowJumpMultiplier: lowJumpMultiplier,
	}
	ApplyPlayerSpec(&player, spec)
	player.Init()

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("player: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Kind:          component.BodyDynamic,
		Shape:         component.ShapeDesc{Kind: component.ShapeBox, HalfW: spec.Size.Width / 2, HalfH: spec.Size.Height / 2},
		Density:       spec.BaseDensity,
		Friction:      spec.Friction,
		FixedRotation: true,
		Active:        true,
	}); err != nil {
		return 0, fmt.Errorf("player: add physics body: %w", err)
	}
	if err := ecs.Add(w, e, component.SensorsComponent.Kind(), &component.Sensors{Specs: []component.SensorSpec{
		sensorFromSpec(component.SensorGround, spec.GroundSensor),
		sensorFromSpec(component.SensorHead, spec.HeadSensor),
	}}); err != nil {
		return 0, fmt.Errorf("player: add sensors: %w", err)
	}
	if err := ecs.Add(w, e, component.PlayerComponent.Kind(), &player); err != nil {
		return 0, fmt.Errorf("player: add player: %w", err)
	}
	if err := ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return 0, fmt.Errorf("player: add input: %w", err)
	}
	if err := ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Color: spec.Color}); err != nil {
		return 0, fmt.Errorf("player: add appearance: %w", err)
	}
	if err := ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Name: spec.Name, Type: "player"}); err != nil {
		return 0, fmt.Errorf("player: add label: %w", err)
	}
	return e, nil
}

// ApplyPlayerSpec copies tuning onto p and leaves its runtime state alone,
// which is what a live reload wants. Density follows the frozen flag.
func ApplyPlayerSpec(p *component.Player, spec prefabs.PlayerSpec) {
	p.Force = spec.Force
	p.Damping = spec.Damping
	p.MaxSpeed = spec.MaxSpeed
	p.JumpVelocity = spec.JumpVelocity
	p.JumpCooldownTicks = spec.JumpCooldownTicks
	p.BaseDensity = spec.BaseDensity
	p.FrozenDensity = spec.FrozenDensity
	if p.Frozen {
		p.Density = p.FrozenDensity
	} else {
		p.Density = p.BaseDensity
	}
}

func sensorFromSpec(kind component.SensorKind, s prefabs.SensorSpec) component.SensorSpec {
	return component.SensorSpec{
		Kind:    kind,
		OffsetX: s.OffsetX,
		OffsetY: s.OffsetY,
		HalfW:   s.Width / 2,
		HalfH:   s.Height / 2,
	}
}
