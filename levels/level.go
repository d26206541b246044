package levels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/colornames"
)

var ErrInvalidLevel = errors.New("levels: invalid level")

// Entity types understood by the level loader.
const (
	TypePlayer      = "player"
	TypePlatform    = "platform"
	TypeBox         = "box"
	TypeBounce      = "bounce"
	TypeBreakable   = "breakable"
	TypePassThrough = "pass_through"
	TypeFan         = "fan"
	TypeGoal        = "goal"
)

var knownTypes = map[string]bool{
	TypePlayer:      true,
	TypePlatform:    true,
	TypeBox:         true,
	TypeBounce:      true,
	TypeBreakable:   true,
	TypePassThrough: true,
	TypeFan:         true,
	TypeGoal:        true,
}

// Level is a level document. All lengths are in meters with y pointing up.
type Level struct {
	Name              string   `json:"name"`
	Bounds            Bounds   `json:"bounds"`
	Gravity           *float64 `json:"gravity,omitempty"`
	FallMultiplier    float64  `json:"fall_multiplier"`
	LowJumpMultiplier float64  `json:"low_jump_multiplier"`
	TimeLimit         float64  `json:"time_limit,omitempty"`
	Entities          []Entity `json:"entities"`
}

type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Entity struct {
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation,omitempty"`

	// Shape: a box from Width/Height, a circle from Radius, or a convex
	// polygon from Points relative to (X, Y).
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Points []Point `json:"points,omitempty"`

	Body        string   `json:"body,omitempty"`
	Density     *float64 `json:"density,omitempty"`
	Friction    *float64 `json:"friction,omitempty"`
	Restitution *float64 `json:"restitution,omitempty"`
	Color       string   `json:"color,omitempty"`
	Texture     string   `json:"texture,omitempty"`

	Bounce    *BounceProps    `json:"bounce,omitempty"`
	Breakable *BreakableProps `json:"breakable,omitempty"`
	Fan       *FanProps       `json:"fan,omitempty"`
}

type BounceProps struct {
	Coefficient float64 `json:"coefficient"`
	MaxVelocity float64 `json:"max_velocity"`
}

type BreakableProps struct {
	BreakMinVelocity float64 `json:"break_min_velocity"`
}

type FanProps struct {
	Period        float64 `json:"period"`
	PeriodOnRatio float64 `json:"period_on_ratio"`
	Strength      float64 `json:"strength"`
	Breadth       float64 `json:"breadth"`
	Length        float64 `json:"length"`
	WindType      string  `json:"wind_type,omitempty"`
	Particles     int     `json:"particles,omitempty"`
	BreadthGrids  int     `json:"breadth_grids,omitempty"`
	LengthGrids   int     `json:"length_grids,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// Parse decodes a level and validates it. Unknown fields are rejected.
func Parse(data []byte) (*Level, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var lvl Level
	if err := dec.Decode(&lvl); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidLevel, err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Validate reports every problem in the document at once.
func (l *Level) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(l.Name) == "" {
		add("name is required")
	}
	if l.Bounds.MaxX <= l.Bounds.MinX || l.Bounds.MaxY <= l.Bounds.MinY {
		add("bounds must have positive area, got %+v", l.Bounds)
	}
	if l.FallMultiplier < 0 {
		add("fall_multiplier must not be negative")
	}
	if l.LowJumpMultiplier < 0 {
		add("low_jump_multiplier must not be negative")
	}
	if l.TimeLimit < 0 {
		add("time_limit must not be negative")
	}
	if l.Gravity != nil && !finite(*l.Gravity) {
		add("gravity must be finite")
	}

	players := 0
	for i := range l.Entities {
		ent := &l.Entities[i]
		if ent.Type == TypePlayer {
			players++
		}
		for _, err := range ent.validate() {
			errs = append(errs, fmt.Errorf("entities[%d] (%s): %w", i, ent.label(), err))
		}
	}
	if players != 1 {
		add("level needs exactly one player, found %d", players)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidLevel, l.Name, errors.Join(errs...))
}

func (e *Entity) label() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Type != "" {
		return e.Type
	}
	return "?"
}

func (e *Entity) validate() []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !knownTypes[e.Type] {
		add("unknown type %q", e.Type)
		return errs
	}
	if !finite(e.X) || !finite(e.Y) || !finite(e.Rotation) {
		add("position and rotation must be finite")
	}

	// The player's shape and mass come from player.yaml.
	if e.Type != TypePlayer {
		errs = append(errs, e.validateShape()...)
	}

	switch e.Body {
	case "", "static", "dynamic":
	default:
		add("body must be static or dynamic, got %q", e.Body)
	}
	if e.Body == "dynamic" && e.Type != TypeBox {
		add("only boxes may be dynamic")
	}
	if e.Density != nil && *e.Density <= 0 {
		add("density must be positive")
	}
	if e.Friction != nil && *e.Friction < 0 {
		add("friction must not be negative")
	}
	if e.Restitution != nil && *e.Restitution < 0 {
		add("restitution must not be negative")
	}
	if e.Color != "" {
		if _, ok := colornames.Map[strings.ToLower(e.Color)]; !ok {
			add("unknown color %q", e.Color)
		}
	}

	switch e.Type {
	case TypeBounce:
		if e.Bounce == nil {
			add("bounce properties are required")
		} else {
			if e.Bounce.Coefficient <= 0 {
				add("bounce.coefficient must be positive")
			}
			if e.Bounce.MaxVelocity <= 0 {
				add("bounce.max_velocity must be positive")
			}
		}
	case TypeBreakable:
		if e.Breakable == nil {
			add("breakable properties are required")
		} else if e.Breakable.BreakMinVelocity <= 0 {
			add("breakable.break_min_velocity must be positive")
		}
	case TypePassThrough:
		if e.Width <= 0 || e.Height <= 0 {
			add("pass-through platforms must be boxes")
		}
	case TypeFan:
		if e.Fan == nil {
			add("fan properties are required")
		} else {
			errs = append(errs, e.Fan.validate()...)
		}
	}
	return errs
}

func (e *Entity) validateShape() []error {
	var errs []error
	shapes := 0
	if e.Width != 0 || e.Height != 0 {
		shapes++
		if e.Width <= 0 || e.Height <= 0 {
			errs = append(errs, fmt.Errorf("width and height must be positive, got %vx%v", e.Width, e.Height))
		}
	}
	if e.Radius != 0 {
		shapes++
		if e.Radius < 0 {
			errs = append(errs, fmt.Errorf("radius must be positive, got %v", e.Radius))
		}
	}
	if len(e.Points) > 0 {
		shapes++
		if len(e.Points) < 3 {
			errs = append(errs, fmt.Errorf("polygon needs at least 3 points, got %d", len(e.Points)))
		}
	}
	switch shapes {
	case 0:
		errs = append(errs, errors.New("a shape is required (width/height, radius or points)"))
	case 1:
	default:
		errs = append(errs, errors.New("only one of width/height, radius or points may be set"))
	}
	return errs
}

func (f *FanProps) validate() []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if f.Period < 0 {
		add("fan.period must not be negative")
	}
	if f.PeriodOnRatio < 0 || f.PeriodOnRatio > 1 {
		add("fan.period_on_ratio must be within [0, 1], got %v", f.PeriodOnRatio)
	}
	if f.Period == 0 && f.PeriodOnRatio != 1 {
		add("fan.period 0 requires period_on_ratio 1")
	}
	if f.Breadth <= 0 || f.Length <= 0 {
		add("fan.breadth and fan.length must be positive")
	}
	if !finite(f.Strength) {
		add("fan.strength must be finite")
	}
	switch f.WindType {
	case "", "constant", "exponential", "default":
	default:
		add("fan.wind_type must be constant, exponential or default, got %q", f.WindType)
	}
	explicit := f.BreadthGrids > 0 || f.LengthGrids > 0
	if explicit && (f.BreadthGrids <= 0 || f.LengthGrids <= 0) {
		add("fan.breadth_grids and fan.length_grids must be set together")
	}
	if !explicit && f.Particles <= 0 {
		add("fan.particles or an explicit grid is required")
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
