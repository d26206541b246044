package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

// FanSystem advances fan duty cycles after the step and switches their
// wind fields on and off.
type FanSystem struct {
	dt  float64
	log *log.Logger
}

func NewFanSystem(dt float64, logger *log.Logger) *FanSystem {
	if logger == nil {
		logger = common.Logger("fans")
	}
	return &FanSystem{dt: dt, log: logger}
}

func (s *FanSystem) Update(w *ecs.World) {
	s.apply(w, s.dt)
}

// Sync recomputes field activity without advancing time.
func (s *FanSystem) Sync(w *ecs.World) {
	s.apply(w, 0)
}

func (s *FanSystem) apply(w *ecs.World, dt float64) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.FanComponent.Kind(), component.WindFieldComponent.Kind(), func(e ecs.Entity, fan *component.Fan, field *component.WindField) {
		fan.Advance(dt)
		active := fan.FieldActive()
		if active != field.Active {
			s.log.Debug("fan", "entity", e, "blowing", active, "time", fan.CurrentTime)
		}
		field.Active = active
	})
}
