package sim

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/gustpath/ecs/component"
)

var ErrBadController = errors.New("sim: bad controller script")

// Controller computes the player input for every tick from a tengo script.
//
// Before each run the script sees the globals tick (int), player (a map of
// x, y, vx, vy, grounded, head_blocked, frozen, can_jump) and state, a map
// kept between ticks. It answers by defining move (-1..1), jump and freeze.
//
//	move := 1
//	jump := player.grounded && tick % 90 == 0
type Controller struct {
	compiled *tengo.Compiled
	state    *tengo.Map
}

// CompileController compiles src once. The math and text modules are
// importable.
func CompileController(src []byte) (*Controller, error) {
	script := tengo.NewScript(src)
	_ = script.Add("tick", 0)
	_ = script.Add("player", map[string]interface{}{})
	_ = script.Add("state", map[string]interface{}{})
	script.SetImports(stdlib.GetModuleMap("math", "text"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadController, err)
	}
	return &Controller{
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

// Next runs the script for one tick.
func (c *Controller) Next(tick uint64, p PlayerState) (component.Input, error) {
	var in component.Input
	if c == nil || c.compiled == nil {
		return in, fmt.Errorf("%w: not compiled", ErrBadController)
	}

	player := map[string]interface{}{
		"x":            p.X,
		"y":            p.Y,
		"vx":           p.VX,
		"vy":           p.VY,
		"grounded":     p.Grounded,
		"head_blocked": p.HeadBlocked,
		"frozen":       p.Frozen,
		"can_jump":     p.CanJump,
	}
	if err := c.compiled.Set("tick", int64(tick)); err != nil {
		return in, err
	}
	if err := c.compiled.Set("player", player); err != nil {
		return in, err
	}
	if err := c.compiled.Set("state", c.state); err != nil {
		return in, err
	}
	if err := c.compiled.Run(); err != nil {
		return in, fmt.Errorf("%w: tick %d: %w", ErrBadController, tick, err)
	}

	if c.compiled.IsDefined("move") {
		v := c.compiled.Get("move")
		switch v.ValueType() {
		case "int", "float":
			in.MoveX = clampMove(v.Float())
		default:
			return in, fmt.Errorf("%w: move must be a number, got %s", ErrBadController, v.ValueType())
		}
	}
	if c.compiled.IsDefined("jump") {
		in.Jump = c.compiled.Get("jump").Bool()
	}
	if c.compiled.IsDefined("freeze") {
		in.Freeze = c.compiled.Get("freeze").Bool()
	}
	return in, nil
}

func clampMove(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// RunController drives the player from c for up to ticks ticks, stopping
// early once the level is over.
func (s *Simulation) RunController(c *Controller, ticks int) (Summary, error) {
	sum := newSummary()
	for i := 0; i < ticks; i++ {
		if s.Status().Over() {
			break
		}
		in, err := c.Next(s.Status().Ticks, s.Player())
		if err != nil {
			sum.Status = s.Status()
			return sum, err
		}
		if err := s.record(&sum, in); err != nil {
			return sum, err
		}
	}
	sum.Status = s.Status()
	return sum, nil
}
