package entity

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/prefabs"
)

const (
	defaultFriction = 0.8
	defaultDensity  = 1
)

// newBody creates an entity with a transform, a physics body and an
// appearance from a level entry.
func newBody(w *ecs.World, ent levels.Entity) (ecs.Entity, *component.PhysicsBody, error) {
	kind, err := component.ParseBodyKind(ent.Body)
	if err != nil {
		return 0, nil, err
	}
	pb := &component.PhysicsBody{
		Kind:     kind,
		Shape:    shapeFromLevel(ent),
		Density:  valueOr(ent.Density, defaultDensity),
		Friction: valueOr(ent.Friction, defaultFriction),
		Active:   true,
	}
	if ent.Restitution != nil {
		pb.Restitution = *ent.Restitution
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: ent.X, Y: ent.Y, Rotation: ent.Rotation}); err != nil {
		return 0, nil, err
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), pb); err != nil {
		return 0, nil, err
	}
	if err := ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Color: ent.Color, Texture: ent.Texture}); err != nil {
		return 0, nil, err
	}
	if err := ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Name: ent.Name, Type: ent.Type}); err != nil {
		return 0, nil, err
	}
	return e, pb, nil
}

func shapeFromLevel(ent levels.Entity) component.ShapeDesc {
	switch {
	case len(ent.Points) > 0:
		points := make([]cp.Vector, len(ent.Points))
		for i, p := range ent.Points {
			points[i] = cp.Vector{X: p.X, Y: p.Y}
		}
		return component.ShapeDesc{Kind: component.ShapePolygon, Points: points}
	case ent.Radius > 0:
		return component.ShapeDesc{Kind: component.ShapeCircle, Radius: ent.Radius}
	}
	return component.ShapeDesc{Kind: component.ShapeBox, HalfW: ent.Width / 2, HalfH: ent.Height / 2}
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// NewPlatform builds a plain static platform, or a dynamic box when the
// level asks for one.
func NewPlatform(w *ecs.World, ent levels.Entity) (ecs.Entity, error) {
	e, _, err := newBody(w, ent)
	if err != nil {
		return 0, fmt.Errorf("platform %s: %w", ent.Name, err)
	}
	return e, nil
}

func NewBouncePlatform(w *ecs.World, ent levels.Entity) (ecs.Entity, error) {
	if ent.Bounce == nil {
		return 0, fmt.Errorf("bounce platform %s: missing bounce properties", ent.Name)
	}
	e, _, err := newBody(w, ent)
	if err != nil {
		return 0, fmt.Errorf("bounce platform %s: %w", ent.Name, err)
	}
	if err := ecs.Add(w, e, component.BounceComponent.Kind(), &component.Bounce{
		Coefficient: ent.Bounce.Coefficient,
		MaxVelocity: ent.Bounce.MaxVelocity,
	}); err != nil {
		return 0, fmt.Errorf("bounce platform %s: %w", ent.Name, err)
	}
	return e, nil
}

func NewBreakablePlatform(w *ecs.World, ent levels.Entity) (ecs.Entity, error) {
	if ent.Breakable == nil {
		return 0, fmt.Errorf("breakable platform %s: missing breakable properties", ent.Name)
	}
	e, _, err := newBody(w, ent)
	if err != nil {
		return 0, fmt.Errorf("breakable platform %s: %w", ent.Name, err)
	}
	if err := ecs.Add(w, e, component.BreakableComponent.Kind(), &component.Breakable{
		BreakMinVelocity: ent.Breakable.BreakMinVelocity,
	}); err != nil {
		return 0, fmt.Errorf("breakable platform %s: %w", ent.Name, err)
	}
	return e, nil
}

// NewPassThroughPlatform adds a body sensor slightly larger than the
// platform and a bottom strip sensor just below it.
func NewPassThroughPlatform(w *ecs.World, ent levels.Entity, spec prefabs.PassThroughSpec) (ecs.Entity, error) {
	e, _, err := newBody(w, ent)
	if err != nil {
		return 0, fmt.Errorf("pass-through platform %s: %w", ent.Name, err)
	}
	hw, hh := ent.Width/2, ent.Height/2
	bottom := spec.BottomSensorHeight / 2
	sensors := &component.Sensors{Specs: []component.SensorSpec{
		{Kind: component.SensorBody, HalfW: hw + spec.BodySensorMargin, HalfH: hh + spec.BodySensorMargin},
		{Kind: component.SensorBottom, OffsetY: -hh - bottom, HalfW: hw, HalfH: bottom},
	}}
	if err := ecs.Add(w, e, component.SensorsComponent.Kind(), sensors); err != nil {
		return 0, fmt.Errorf("pass-through platform %s: %w", ent.Name, err)
	}
	if err := ecs.Add(w, e, component.PassThroughComponent.Kind(), &component.PassThrough{}); err != nil {
		return 0, fmt.Errorf("pass-through platform %s: %w", ent.Name, err)
	}
	return e, nil
}

// NewGoal builds a static sensor that completes the level when the player
// touches it.
func NewGoal(w *ecs.World, ent levels.Entity) (ecs.Entity, error) {
	e, pb, err := newBody(w, ent)
	if err != nil {
		return 0, fmt.Errorf("goal %s: %w", ent.Name, err)
	}
	pb.Kind = component.BodyStatic
	pb.Tag = component.SensorGoal
	if err := ecs.Add(w, e, component.GoalComponent.Kind(), &component.Goal{}); err != nil {
		return 0, fmt.Errorf("goal %s: %w", ent.Name, err)
	}
	return e, nil
}
