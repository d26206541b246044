package system

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

// WindSystem pushes every dynamic body whose center sits inside an active
// wind field. Each body is pushed at most once per field per tick.
type WindSystem struct {
	physics *PhysicsSystem
	log     *log.Logger
}

func NewWindSystem(physics *PhysicsSystem, logger *log.Logger) *WindSystem {
	if logger == nil {
		logger = common.Logger("wind")
	}
	return &WindSystem{physics: physics, log: logger}
}

func (s *WindSystem) Update(w *ecs.World) {
	if w == nil || s.physics == nil {
		return
	}
	space := s.physics.Space()

	ecs.ForEach(w, component.WindFieldComponent.Kind(), func(e ecs.Entity, f *component.WindField) {
		if f.Type == component.WindDefault && !f.DefaultWarned {
			f.DefaultWarned = true
			s.log.Warn("wind type has no model yet, blowing as constant", "field", e, "type", f.Type)
		}
		if !f.Active {
			return
		}

		pushed := make(map[*cp.Body]struct{})
		for i := range f.Cells {
			lo, hi := f.CellBounds(i)
			bb := cp.BB{L: lo[0], B: lo[1], R: hi[0], T: hi[1]}
			space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
				body := shape.Body()
				if body == nil || body.GetType() != cp.BODY_DYNAMIC {
					return
				}
				if _, done := pushed[body]; done {
					return
				}
				pos := body.Position()
				force := f.ForceAt(pos.X, pos.Y)
				if force == (mgl64.Vec2{}) {
					return
				}
				pushed[body] = struct{}{}
				body.ApplyForceAtWorldPoint(cp.Vector{X: force[0], Y: force[1]}, pos)
			}, nil)
		}
	})
}
