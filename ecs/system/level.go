package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

const (
	FailOutOfBounds = "out of bounds"
	FailTimeLimit   = "time limit"
)

// LevelSystem keeps the level clock and decides when a level is lost.
// In debug mode it also reports non-player bodies leaving the level.
type LevelSystem struct {
	dt      float64
	debug   bool
	strayed map[ecs.Entity]struct{}
	log     *log.Logger
}

func NewLevelSystem(dt float64, debug bool, logger *log.Logger) *LevelSystem {
	if logger == nil {
		logger = common.Logger("level")
	}
	return &LevelSystem{dt: dt, debug: debug, strayed: make(map[ecs.Entity]struct{}), log: logger}
}

func (s *LevelSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	_, state, ok := ecs.First(w, component.LevelStateComponent.Kind())
	if !ok {
		return
	}
	state.Ticks++
	state.Elapsed += s.dt

	if !state.Over() {
		ecs.ForEach2(w, component.PlayerComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.Player, t *component.Transform) {
			if state.InBounds(t.X, t.Y) {
				return
			}
			s.fail(w, state, e, FailOutOfBounds)
		})
	}
	if !state.Over() && state.TimeLimit > 0 && state.Elapsed >= state.TimeLimit {
		s.fail(w, state, 0, FailTimeLimit)
	}

	if s.debug {
		s.checkStrays(w, state)
	}
}

func (s *LevelSystem) fail(w *ecs.World, state *component.LevelState, e ecs.Entity, reason string) {
	if !state.MarkFailed(reason) {
		return
	}
	s.log.Info("level failed", "level", state.Name, "reason", reason, "ticks", state.Ticks)
	w.Events().Push(ecs.Event{Kind: ecs.EventLevelFailed, Entity: e, Data: reason})
}

func (s *LevelSystem) checkStrays(w *ecs.World, state *component.LevelState) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Kind != component.BodyDynamic || !pb.Active || ecs.Has(w, e, component.PlayerComponent.Kind()) {
			return
		}
		if _, seen := s.strayed[e]; seen || state.InBounds(t.X, t.Y) {
			return
		}
		s.strayed[e] = struct{}{}
		s.log.Error("body left the level bounds", "entity", e, "x", t.X, "y", t.Y)
	})
}
