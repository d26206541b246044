package entity

import (
	"fmt"

	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/prefabs"
)

// LoadLevelToWorld creates the level state and every entity of lvl in w
// and returns the player. lvl must already be validated.
func LoadLevelToWorld(w *ecs.World, lvl *levels.Level, tuning prefabs.Tuning) (ecs.Entity, error) {
	stateEntity := ecs.CreateEntity(w)
	if err := ecs.Add(w, stateEntity, component.LevelStateComponent.Kind(), &component.LevelState{
		Name:      lvl.Name,
		TimeLimit: lvl.TimeLimit,
		MinX:      lvl.Bounds.MinX,
		MinY:      lvl.Bounds.MinY,
		MaxX:      lvl.Bounds.MaxX,
		MaxY:      lvl.Bounds.MaxY,
	}); err != nil {
		return 0, fmt.Errorf("level %s: add state: %w", lvl.Name, err)
	}

	var player ecs.Entity
	for i, ent := range lvl.Entities {
		var err error
		switch ent.Type {
		case levels.TypePlayer:
			player, err = NewPlayerAt(w, tuning.Player, lvl.FallMultiplier, lvl.LowJumpMultiplier, ent.X, ent.Y)
		case levels.TypePlatform, levels.TypeBox:
			_, err = NewPlatform(w, ent)
		case levels.TypeBounce:
			_, err = NewBouncePlatform(w, ent)
		case levels.TypeBreakable:
			_, err = NewBreakablePlatform(w, ent)
		case levels.TypePassThrough:
			_, err = NewPassThroughPlatform(w, ent, tuning.Physics.PassThrough)
		case levels.TypeFan:
			_, err = NewFan(w, ent, tuning.Physics.WindDecayRate)
		case levels.TypeGoal:
			_, err = NewGoal(w, ent)
		default:
			err = fmt.Errorf("unknown entity type %q", ent.Type)
		}
		if err != nil {
			return 0, fmt.Errorf("level %s: entities[%d]: %w", lvl.Name, i, err)
		}
	}
	if !player.Valid() {
		return 0, fmt.Errorf("level %s: no player", lvl.Name)
	}
	return player, nil
}
