package entity

import (
	"math"
	"testing"

	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/prefabs"
)

func loadTuning(t *testing.T) prefabs.Tuning {
	t.Helper()
	tuning, err := prefabs.LoadTuning()
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	return tuning
}

func loadLevel(t *testing.T, name string) (*ecs.World, ecs.Entity, *levels.Level) {
	t.Helper()
	lvl, err := levels.LoadLevelFromFS(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	w := ecs.NewWorld()
	player, err := LoadLevelToWorld(w, lvl, loadTuning(t))
	if err != nil {
		t.Fatalf("populate %s: %v", name, err)
	}
	return w, player, lvl
}

func TestLoadLevelToWorldCreatesEveryEntity(t *testing.T) {
	for _, name := range []string{"tutorial.json", "bounce_break.json", "gusts.json"} {
		t.Run(name, func(t *testing.T) {
			w, player, lvl := loadLevel(t, name)

			if got := ecs.Count(w, component.LabelComponent.Kind()); got != len(lvl.Entities) {
				t.Fatalf("labels = %d, want %d", got, len(lvl.Entities))
			}
			if got := ecs.Count(w, component.LevelStateComponent.Kind()); got != 1 {
				t.Fatalf("level states = %d, want 1", got)
			}
			if !ecs.Has(w, player, component.InputComponent.Kind()) {
				t.Fatalf("player has no input")
			}
			_, state, _ := ecs.First(w, component.LevelStateComponent.Kind())
			if state.Name != lvl.Name || state.MaxX != lvl.Bounds.MaxX || state.TimeLimit != lvl.TimeLimit {
				t.Fatalf("state = %+v", state)
			}
		})
	}
}

func TestPlayerFromTuning(t *testing.T) {
	tuning := loadTuning(t)
	w, player, lvl := loadLevel(t, "tutorial.json")

	p, ok := ecs.Get(w, player, component.PlayerComponent.Kind())
	if !ok {
		t.Fatalf("player component missing")
	}
	if p.Density != tuning.Player.BaseDensity || p.Frozen {
		t.Fatalf("density = %v frozen = %v", p.Density, p.Frozen)
	}
	if p.FallMultiplier != lvl.FallMultiplier || p.LowJumpMultiplier != lvl.LowJumpMultiplier {
		t.Fatalf("multipliers = %v/%v", p.FallMultiplier, p.LowJumpMultiplier)
	}
	sensors, _ := ecs.Get(w, player, component.SensorsComponent.Kind())
	if len(sensors.Specs) != 2 || sensors.Specs[0].Kind != component.SensorGround || sensors.Specs[1].Kind != component.SensorHead {
		t.Fatalf("sensors = %+v", sensors.Specs)
	}
	if got := sensors.Specs[0].HalfW * 2; got != tuning.Player.GroundSensor.Width {
		t.Fatalf("ground sensor width = %v", got)
	}
	pb, _ := ecs.Get(w, player, component.PhysicsBodyComponent.Kind())
	if pb.Kind != component.BodyDynamic || !pb.FixedRotation || pb.Shape.HalfH*2 != tuning.Player.Size.Height {
		t.Fatalf("body = %+v", pb)
	}
}

func TestApplyPlayerSpecKeepsRuntimeState(t *testing.T) {
	spec := loadTuning(t).Player
	p := component.Player{}
	ApplyPlayerSpec(&p, spec)
	p.Init()
	p.SetFrozen(true)
	p.Grounded = true

	spec.FrozenDensity = spec.FrozenDensity * 2
	spec.MaxSpeed = 99
	ApplyPlayerSpec(&p, spec)

	if !p.Frozen || !p.Grounded {
		t.Fatalf("reload reset runtime flags")
	}
	if p.Density != spec.FrozenDensity || p.MaxSpeed != 99 {
		t.Fatalf("density = %v max speed = %v", p.Density, p.MaxSpeed)
	}
}

func TestVariantEntities(t *testing.T) {
	tuning := loadTuning(t)
	w, _, _ := loadLevel(t, "gusts.json")

	byName := map[string]ecs.Entity{}
	ecs.ForEach(w, component.LabelComponent.Kind(), func(e ecs.Entity, l *component.Label) {
		byName[l.Name] = e
	})

	shelf := byName["shelf"]
	if !ecs.Has(w, shelf, component.PassThroughComponent.Kind()) {
		t.Fatalf("shelf is not a pass-through platform")
	}
	sensors, _ := ecs.Get(w, shelf, component.SensorsComponent.Kind())
	body, bottom := sensors.Specs[0], sensors.Specs[1]
	margin := tuning.Physics.PassThrough.BodySensorMargin
	if body.Kind != component.SensorBody || body.HalfW != 2+margin || body.HalfH != 0.25+margin {
		t.Fatalf("body sensor = %+v", body)
	}
	if bottom.Kind != component.SensorBottom || math.Abs(bottom.OffsetY+bottom.HalfH+0.25) > 1e-9 {
		t.Fatalf("bottom sensor must sit flush below the platform: %+v", bottom)
	}

	updraft := byName["updraft"]
	field, ok := ecs.Get(w, updraft, component.WindFieldComponent.Kind())
	if !ok {
		t.Fatalf("updraft has no wind field")
	}
	if field.BreadthGrids != 2 || field.LengthGrids != 3 || len(field.Cells) != 6 {
		t.Fatalf("grid = %dx%d cells=%d", field.BreadthGrids, field.LengthGrids, len(field.Cells))
	}
	if field.Type != component.WindExponential || field.DecayRate != tuning.Physics.WindDecayRate || !field.Active {
		t.Fatalf("field = %+v", field)
	}

	crosswind := byName["crosswind"]
	field, _ = ecs.Get(w, crosswind, component.WindFieldComponent.Kind())
	fan, _ := ecs.Get(w, crosswind, component.FanComponent.Kind())
	if field.BreadthGrids != 1 || field.LengthGrids != 4 || fan.Period != 0 || !fan.OnPhase() {
		t.Fatalf("crosswind grid %dx%d fan %+v", field.BreadthGrids, field.LengthGrids, fan)
	}

	goal := byName["exit"]
	pb, _ := ecs.Get(w, goal, component.PhysicsBodyComponent.Kind())
	if pb.Tag != component.SensorGoal || !ecs.Has(w, goal, component.GoalComponent.Kind()) {
		t.Fatalf("exit is not a goal sensor: %+v", pb)
	}
}

func TestLoadLevelToWorldRejectsMissingPlayer(t *testing.T) {
	lvl := &levels.Level{Name: "empty", Bounds: levels.Bounds{MaxX: 1, MaxY: 1}}
	if _, err := LoadLevelToWorld(ecs.NewWorld(), lvl, loadTuning(t)); err == nil {
		t.Fatalf("expected an error for a level without a player")
	}
}
