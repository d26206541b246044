package system

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

// sensorHandler is the reaction attached to one sensor kind. self is
// always the sensor fixture, other the fixture it touched.
type sensorHandler interface {
	OnEnter(w *ecs.World, self, other FixtureRef, c Contact) error
	OnExit(w *ecs.World, self, other FixtureRef) error
}

func newSensorHandlers(logger *log.Logger) map[component.SensorKind]sensorHandler {
	return map[component.SensorKind]sensorHandler{
		component.SensorGround: groundSensor{log: logger},
		component.SensorHead:   headSensor{log: logger},
		component.SensorBody:   bodySensor{log: logger},
		component.SensorBottom: bottomSensor{log: logger},
		component.SensorGoal:   goalSensor{log: logger},
	}
}

func playerOf(w *ecs.World, self FixtureRef) (*component.Player, error) {
	p, ok := ecs.Get(w, self.Entity, component.PlayerComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: %v sensor on %v without a player", ErrMalformedContact, self.Tag, self.Entity)
	}
	return p, nil
}

func passThroughOf(w *ecs.World, self FixtureRef) (*component.PassThrough, error) {
	pt, ok := ecs.Get(w, self.Entity, component.PassThroughComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: %v sensor on %v without a pass-through platform", ErrMalformedContact, self.Tag, self.Entity)
	}
	return pt, nil
}

// isPlayerBody reports whether ref is the solid fixture of a player.
func isPlayerBody(w *ecs.World, ref FixtureRef) bool {
	return ref.solid() && ecs.Has(w, ref.Entity, component.PlayerComponent.Kind())
}

// groundSensor counts the solid surfaces under the player's feet. A
// surface switched to sensor mode still counts since its tag stays solid.
type groundSensor struct {
	log *log.Logger
}

func (g groundSensor) OnEnter(w *ecs.World, self, other FixtureRef, _ Contact) error {
	if !other.solid() {
		return nil
	}
	p, err := playerOf(w, self)
	if err != nil {
		return err
	}
	if p.BeginGround(other.key()) {
		g.log.Debug("grounded", "player", self.Entity, "surface", other.Entity)
	}
	return nil
}

func (g groundSensor) OnExit(w *ecs.World, self, other FixtureRef) error {
	if !other.solid() {
		return nil
	}
	p, err := playerOf(w, self)
	if err != nil {
		return err
	}
	left, ok := p.EndGround(other.key())
	if !ok {
		g.log.Debug("ignoring unmatched ground end", "player", self.Entity, "surface", other.Entity)
		return nil
	}
	if left {
		g.log.Debug("airborne", "player", self.Entity)
	}
	return nil
}

type headSensor struct {
	log *log.Logger
}

func (h headSensor) OnEnter(w *ecs.World, self, other FixtureRef, _ Contact) error {
	if !other.solid() {
		return nil
	}
	p, err := playerOf(w, self)
	if err != nil {
		return err
	}
	if p.BeginHead(other.key()) {
		h.log.Debug("head blocked", "player", self.Entity, "ceiling", other.Entity)
	}
	return nil
}

func (h headSensor) OnExit(w *ecs.World, self, other FixtureRef) error {
	if !other.solid() {
		return nil
	}
	p, err := playerOf(w, self)
	if err != nil {
		return err
	}
	p.EndHead(other.key())
	return nil
}

// bodySensor tracks the player overlapping a pass-through platform. When
// the last overlap ends the platform is asked to turn solid again.
type bodySensor struct {
	log *log.Logger
}

func (b bodySensor) OnEnter(w *ecs.World, self, other FixtureRef, _ Contact) error {
	if !isPlayerBody(w, other) {
		return nil
	}
	pt, err := passThroughOf(w, self)
	if err != nil {
		return err
	}
	pt.Body.Begin(other.key())
	return nil
}

func (b bodySensor) OnExit(w *ecs.World, self, other FixtureRef) error {
	if !isPlayerBody(w, other) {
		return nil
	}
	pt, err := passThroughOf(w, self)
	if err != nil {
		return err
	}
	pt.Body.End(other.key())
	if pt.Clear() && pt.Close() {
		b.log.Debug("pass-through closing", "platform", self.Entity)
	}
	return nil
}

// bottomSensor opens a pass-through platform when the player comes at it
// from below.
type bottomSensor struct {
	log *log.Logger
}

func (b bottomSensor) OnEnter(w *ecs.World, self, other FixtureRef, _ Contact) error {
	if !isPlayerBody(w, other) {
		return nil
	}
	pt, err := passThroughOf(w, self)
	if err != nil {
		return err
	}
	pt.Bottom.Begin(other.key())
	if pt.Open() {
		b.log.Debug("pass-through opening", "platform", self.Entity)
	}
	return nil
}

func (b bottomSensor) OnExit(w *ecs.World, self, other FixtureRef) error {
	if !isPlayerBody(w, other) {
		return nil
	}
	pt, err := passThroughOf(w, self)
	if err != nil {
		return err
	}
	pt.Bottom.End(other.key())
	if pt.Clear() && pt.Close() {
		b.log.Debug("pass-through closing", "platform", self.Entity)
	}
	return nil
}

// goalSensor completes the level the first time the player reaches it.
type goalSensor struct {
	log *log.Logger
}

func (g goalSensor) OnEnter(w *ecs.World, self, other FixtureRef, _ Contact) error {
	if !isPlayerBody(w, other) {
		return nil
	}
	_, state, ok := ecs.First(w, component.LevelStateComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: goal %v reached without a level state", ErrMalformedContact, self.Entity)
	}
	if state.MarkComplete() {
		g.log.Info("level complete", "level", state.Name, "ticks", state.Ticks)
		w.Events().Push(ecs.Event{Kind: ecs.EventLevelComplete, Entity: other.Entity})
	}
	return nil
}

func (g goalSensor) OnExit(*ecs.World, FixtureRef, FixtureRef) error {
	return nil
}
