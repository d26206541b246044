package entity

import (
	"fmt"

	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/levels"
)

// NewFan builds a static fan housing that owns a wind field. The field
// starts at the housing center and blows along the entity rotation.
func NewFan(w *ecs.World, ent levels.Entity, decayRate float64) (ecs.Entity, error) {
	props := ent.Fan
	if props == nil {
		return 0, fmt.Errorf("fan %s: missing fan properties", ent.Name)
	}
	windType, err := component.ParseWindType(props.WindType)
	if err != nil {
		return 0, fmt.Errorf("fan %s: %w", ent.Name, err)
	}
	e, _, err := newBody(w, ent)
	if err != nil {
		return 0, fmt.Errorf("fan %s: %w", ent.Name, err)
	}

	field := &component.WindField{
		SourceX:      ent.X,
		SourceY:      ent.Y,
		Breadth:      props.Breadth,
		Length:       props.Length,
		Rotation:     ent.Rotation,
		Strength:     props.Strength,
		Type:         windType,
		DecayRate:    decayRate,
		BreadthGrids: props.BreadthGrids,
		LengthGrids:  props.LengthGrids,
	}
	if field.BreadthGrids <= 0 || field.LengthGrids <= 0 {
		field.BreadthGrids, field.LengthGrids = component.GridSize(props.Particles)
	}
	field.BuildCells()

	fan := &component.Fan{
		Period:        props.Period,
		PeriodOnRatio: props.PeriodOnRatio,
		Active:        true,
	}
	if props.Active != nil {
		fan.Active = *props.Active
	}
	field.Active = fan.FieldActive()

	if err := ecs.Add(w, e, component.WindFieldComponent.Kind(), field); err != nil {
		return 0, fmt.Errorf("fan %s: %w", ent.Name, err)
	}
	if err := ecs.Add(w, e, component.FanComponent.Kind(), fan); err != nil {
		return 0, fmt.Errorf("fan %s: %w", ent.Name, err)
	}
	return e, nil
}
