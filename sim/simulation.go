// Package sim runs one level headlessly at a fixed step. The ebiten game
// and the platformsim CLI both drive it.
package sim

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/ecs/entity"
	"github.com/milk9111/gustpath/ecs/system"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/prefabs"
)

type Options struct {
	// Strict turns malformed contacts into Tick errors even when
	// physics.yaml asks for skip.
	Strict bool
	// Debug enables out-of-bounds reports for non-player bodies.
	Debug  bool
	Logger *log.Logger
}

// PlayerState is a read-only snapshot of the player.
type PlayerState struct {
	X, Y        float64
	VX, VY      float64
	Grounded    bool
	HeadBlocked bool
	JumpHeld    bool
	Frozen      bool
	CanJump     bool
	Facing      component.Facing
	Density     float64
	Mass        float64
}

type Status struct {
	Name       string
	Complete   bool
	Failed     bool
	FailReason string
	Ticks      uint64
	Elapsed    float64
}

func (s Status) Over() bool {
	return s.Complete || s.Failed
}

type Simulation struct {
	level  *levels.Level
	tuning prefabs.Tuning
	opts   Options
	log    *log.Logger

	world      *ecs.World
	physics    *system.PhysicsSystem
	dispatcher *system.ContactDispatcher
	fans       *system.FanSystem
	scheduler  *ecs.Scheduler
	player     ecs.Entity
	pending    []ecs.Event
}

// New validates the level and tuning and builds the world. Nothing is
// constructed when validation fails.
func New(lvl *levels.Level, tuning prefabs.Tuning, opts Options) (*Simulation, error) {
	if lvl == nil {
		return nil, errors.New("sim: nil level")
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	if err := tuning.Player.Validate(); err != nil {
		return nil, fmt.Errorf("sim: player tuning: %w", err)
	}
	if err := tuning.Physics.Validate(); err != nil {
		return nil, fmt.Errorf("sim: physics tuning: %w", err)
	}

	s := &Simulation{
		level:  lvl,
		tuning: tuning,
		opts:   opts,
		log:    subLogger(opts.Logger, "sim"),
		world:  ecs.NewWorld(),
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func subLogger(base *log.Logger, prefix string) *log.Logger {
	if base == nil {
		return common.Logger(prefix)
	}
	return base.WithPrefix(prefix)
}

func (s *Simulation) build() error {
	phys := s.tuning.Physics
	dt := phys.Dt()
	gravity := phys.Gravity
	if s.level.Gravity != nil {
		gravity = *s.level.Gravity
	}

	policy, err := system.ParseContactPolicy(phys.ContactPolicy)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	if s.opts.Strict {
		policy = system.ContactStrict
	}

	s.dispatcher = system.NewContactDispatcher(policy, subLogger(s.opts.Logger, "contacts"))
	s.physics = system.NewPhysicsSystem(system.PhysicsConfig{
		Dt:                 dt,
		VelocityIterations: phys.VelocityIterations,
		PositionIterations: phys.PositionIterations,
		Gravity:            gravity,
		CollisionSlop:      phys.CollisionSlop,
		Logger:             subLogger(s.opts.Logger, "physics"),
	}, s.dispatcher)
	s.fans = system.NewFanSystem(dt, subLogger(s.opts.Logger, "fans"))
	s.scheduler = ecs.NewScheduler(
		system.NewPlayerControllerSystem(subLogger(s.opts.Logger, "player")),
		system.NewWindSystem(s.physics, subLogger(s.opts.Logger, "wind")),
		s.physics,
		system.NewPlatformSystem(s.physics, subLogger(s.opts.Logger, "platforms")),
		s.fans,
		system.NewLevelSystem(dt, s.opts.Debug, subLogger(s.opts.Logger, "level")),
	)

	player, err := entity.LoadLevelToWorld(s.world, s.level, s.tuning)
	if err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	s.player = player
	if err := s.physics.Sync(s.world); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	s.fans.Sync(s.world)
	s.log.Debug("level built", "level", s.level.Name, "gravity", gravity, "policy", policy)
	return nil
}

// Tick advances one fixed step with the given input snapshot. Under the
// strict contact policy the step always completes before the first
// malformed contact is returned.
func (s *Simulation) Tick(in component.Input) error {
	if input, ok := ecs.Get(s.world, s.player, component.InputComponent.Kind()); ok {
		*input = in
	}
	s.scheduler.Update(s.world)
	s.pending = append(s.pending, s.world.Events().Drain()...)
	if err := s.dispatcher.TakeErr(); err != nil {
		return fmt.Errorf("sim: tick %d: %w", s.Status().Ticks, err)
	}
	return nil
}

// Events returns the events raised since the last call.
func (s *Simulation) Events() []ecs.Event {
	out := s.pending
	s.pending = nil
	return out
}

// Reset destroys every entity and rebuilds the level from its document.
func (s *Simulation) Reset() error {
	ecs.Reset(s.world)
	s.pending = nil
	s.player = 0
	s.log.Info("level reset", "level", s.level.Name)
	return s.build()
}

// SetFanActive switches the fans named name, or every fan when name is
// empty. It reports how many fans matched.
func (s *Simulation) SetFanActive(name string, active bool) int {
	n := 0
	ecs.ForEach2(s.world, component.FanComponent.Kind(), component.LabelComponent.Kind(), func(e ecs.Entity, fan *component.Fan, label *component.Label) {
		if name != "" && label.Name != name {
			return
		}
		fan.Active = active
		n++
	})
	if n > 0 {
		s.fans.Sync(s.world)
	}
	return n
}

// ApplyPlayerTuning swaps the player tuning without touching the level.
func (s *Simulation) ApplyPlayerTuning(spec prefabs.PlayerSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("sim: player tuning: %w", err)
	}
	s.tuning.Player = spec
	p, ok := ecs.Get(s.world, s.player, component.PlayerComponent.Kind())
	if !ok {
		return nil
	}
	entity.ApplyPlayerSpec(p, spec)
	s.physics.RefreshMass(s.world, s.player)
	s.log.Info("player tuning applied", "max_speed", spec.MaxSpeed, "jump_velocity", spec.JumpVelocity)
	return nil
}

func (s *Simulation) Player() PlayerState {
	var st PlayerState
	p, ok := ecs.Get(s.world, s.player, component.PlayerComponent.Kind())
	if !ok {
		return st
	}
	st.Grounded = p.Grounded
	st.HeadBlocked = p.HeadBlocked
	st.JumpHeld = p.JumpHeld
	st.Frozen = p.Frozen
	st.CanJump = p.CanJump()
	st.Facing = p.Facing
	st.Density = p.Density

	if pb, ok := ecs.Get(s.world, s.player, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		pos, vel := pb.Body.Position(), pb.Body.Velocity()
		st.X, st.Y = pos.X, pos.Y
		st.VX, st.VY = vel.X, vel.Y
		st.Mass = pb.Body.Mass()
	}
	return st
}

func (s *Simulation) Status() Status {
	_, state, ok := ecs.First(s.world, component.LevelStateComponent.Kind())
	if !ok {
		return Status{}
	}
	return Status{
		Name:       state.Name,
		Complete:   state.Complete,
		Failed:     state.Failed,
		FailReason: state.FailReason,
		Ticks:      state.Ticks,
		Elapsed:    state.Elapsed,
	}
}

// Space exposes the physics space for drawing.
func (s *Simulation) Space() *cp.Space {
	return s.physics.Space()
}

// World exposes the entity store for drawing. Callers must not mutate it.
func (s *Simulation) World() *ecs.World {
	return s.world
}

func (s *Simulation) Level() *levels.Level {
	return s.level
}

func (s *Simulation) Tuning() prefabs.Tuning {
	return s.tuning
}

// Anomalies counts malformed contacts since the last build.
func (s *Simulation) Anomalies() int {
	return s.dispatcher.Anomalies()
}
