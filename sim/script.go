package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
)

var ErrBadScript = errors.New("sim: bad input script")

// ScriptStep holds one input snapshot for Ticks consecutive ticks.
type ScriptStep struct {
	Input component.Input
	Ticks int
}

// ParseInputScript reads scripts such as "right*60,jump+right*10,idle*30".
// Each comma separated step joins actions with '+' and may repeat with
// '*n'. Actions are left, right, jump, freeze and idle.
func ParseInputScript(script string) ([]ScriptStep, error) {
	var steps []ScriptStep
	for i, raw := range strings.Split(script, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		step, err := parseStep(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d %q: %w", ErrBadScript, i+1, raw, err)
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrBadScript)
	}
	return steps, nil
}

func parseStep(raw string) (ScriptStep, error) {
	step := ScriptStep{Ticks: 1}
	actions := raw
	if before, after, ok := strings.Cut(raw, "*"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(after))
		if err != nil || n <= 0 {
			return step, fmt.Errorf("repeat must be a positive integer, got %q", after)
		}
		step.Ticks = n
		actions = before
	}
	for _, action := range strings.Split(actions, "+") {
		switch strings.ToLower(strings.TrimSpace(action)) {
		case "left":
			step.Input.MoveX--
		case "right":
			step.Input.MoveX++
		case "jump":
			step.Input.Jump = true
		case "freeze":
			step.Input.Freeze = true
		case "idle":
		default:
			return step, fmt.Errorf("unknown action %q", action)
		}
	}
	return step, nil
}

// TotalTicks is the length of a script in ticks.
func TotalTicks(steps []ScriptStep) int {
	n := 0
	for _, st := range steps {
		n += st.Ticks
	}
	return n
}

// Sample is the player state recorded after a tick.
type Sample struct {
	Tick   uint64
	Player PlayerState
}

type Summary struct {
	Status  Status
	Ticks   int
	Events  map[ecs.EventKind]int
	Samples []Sample
}

func newSummary() Summary {
	return Summary{Events: make(map[ecs.EventKind]int)}
}

// record ticks once with in and adds the outcome to sum.
func (s *Simulation) record(sum *Summary, in component.Input) error {
	err := s.Tick(in)
	for _, ev := range s.Events() {
		sum.Events[ev.Kind]++
	}
	sum.Ticks++
	sum.Samples = append(sum.Samples, Sample{Tick: s.Status().Ticks, Player: s.Player()})
	if err != nil {
		sum.Status = s.Status()
	}
	return err
}

// RunScript plays steps until they run out or the level is over. Every
// tick is recorded in the summary.
func (s *Simulation) RunScript(steps []ScriptStep) (Summary, error) {
	sum := newSummary()
	for _, step := range steps {
		for i := 0; i < step.Ticks; i++ {
			if s.Status().Over() {
				sum.Status = s.Status()
				return sum, nil
			}
			if err := s.record(&sum, step.Input); err != nil {
				return sum, err
			}
		}
	}
	sum.Status = s.Status()
	return sum, nil
}
