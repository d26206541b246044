package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

const (
	PlayerFile  = "player.yaml"
	PhysicsFile = "physics.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type SizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SensorSpec struct {
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
}

type PlayerSpec struct {
	Name              string     `yaml:"name"`
	Force             float64    `yaml:"force"`
	Damping           float64    `yaml:"damping"`
	MaxSpeed          float64    `yaml:"max_speed"`
	JumpVelocity      float64    `yaml:"jump_velocity"`
	JumpCooldownTicks int        `yaml:"jump_cooldown_ticks"`
	BaseDensity       float64    `yaml:"base_density"`
	FrozenDensity     float64    `yaml:"frozen_density"`
	Friction          float64    `yaml:"friction"`
	Size              SizeSpec   `yaml:"size"`
	GroundSensor      SensorSpec `yaml:"ground_sensor"`
	HeadSensor        SensorSpec `yaml:"head_sensor"`
	Color             string     `yaml:"color"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec](PlayerFile)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", PlayerFile, err)
	}
	return &spec, nil
}

func (s PlayerSpec) Validate() error {
	var errs []error
	if s.Force <= 0 {
		errs = append(errs, errors.New("force must be positive"))
	}
	if s.Damping < 0 {
		errs = append(errs, errors.New("damping must not be negative"))
	}
	if s.MaxSpeed <= 0 {
		errs = append(errs, errors.New("max_speed must be positive"))
	}
	if s.JumpVelocity <= 0 {
		errs = append(errs, errors.New("jump_velocity must be positive"))
	}
	if s.JumpCooldownTicks < 0 {
		errs = append(errs, errors.New("jump_cooldown_ticks must not be negative"))
	}
	if s.BaseDensity <= 0 {
		errs = append(errs, errors.New("base_density must be positive"))
	}
	if s.FrozenDensity <= s.BaseDensity {
		errs = append(errs, fmt.Errorf("frozen_density %v must exceed base_density %v", s.FrozenDensity, s.BaseDensity))
	}
	if s.Size.Width <= 0 || s.Size.Height <= 0 {
		errs = append(errs, errors.New("size must be positive"))
	}
	if s.GroundSensor.Width <= 0 || s.GroundSensor.Height <= 0 {
		errs = append(errs, errors.New("ground_sensor size must be positive"))
	}
	if s.HeadSensor.Width <= 0 || s.HeadSensor.Height <= 0 {
		errs = append(errs, errors.New("head_sensor size must be positive"))
	}
	if s.Color != "" {
		if _, ok := colornames.Map[strings.ToLower(s.Color)]; !ok {
			errs = append(errs, fmt.Errorf("unknown color %q", s.Color))
		}
	}
	return errors.Join(errs...)
}

type PassThroughSpec struct {
	BottomSensorHeight float64 `yaml:"bottom_sensor_height"`
	BodySensorMargin   float64 `yaml:"body_sensor_margin"`
}

type PhysicsSpec struct {
	TPS                int             `yaml:"tps"`
	VelocityIterations int             `yaml:"velocity_iterations"`
	PositionIterations int             `yaml:"position_iterations"`
	Gravity            float64         `yaml:"gravity"`
	CollisionSlop      float64         `yaml:"collision_slop"`
	ContactPolicy      string          `yaml:"contact_policy"`
	PixelsPerMeter     float64         `yaml:"pixels_per_meter"`
	WindDecayRate      float64         `yaml:"wind_decay_rate"`
	PassThrough        PassThroughSpec `yaml:"pass_through"`
}

func LoadPhysicsSpec() (*PhysicsSpec, error) {
	spec, err := LoadSpec[PhysicsSpec](PhysicsFile)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", PhysicsFile, err)
	}
	return &spec, nil
}

func (s PhysicsSpec) Validate() error {
	var errs []error
	if s.TPS <= 0 {
		errs = append(errs, errors.New("tps must be positive"))
	}
	if s.VelocityIterations <= 0 || s.PositionIterations <= 0 {
		errs = append(errs, errors.New("solver iterations must be positive"))
	}
	if s.CollisionSlop < 0 {
		errs = append(errs, errors.New("collision_slop must not be negative"))
	}
	switch s.ContactPolicy {
	case "", "skip", "strict":
	default:
		errs = append(errs, fmt.Errorf("contact_policy must be skip or strict, got %q", s.ContactPolicy))
	}
	if s.PixelsPerMeter <= 0 {
		errs = append(errs, errors.New("pixels_per_meter must be positive"))
	}
	if s.WindDecayRate < 0 {
		errs = append(errs, errors.New("wind_decay_rate must not be negative"))
	}
	if s.PassThrough.BottomSensorHeight <= 0 || s.PassThrough.BodySensorMargin < 0 {
		errs = append(errs, errors.New("pass_through sensor geometry must be positive"))
	}
	return errors.Join(errs...)
}

// Dt is the fixed step length.
func (s PhysicsSpec) Dt() float64 {
	return 1 / float64(s.TPS)
}

// Tuning bundles every prefab the simulation reads.
type Tuning struct {
	Player  PlayerSpec
	Physics PhysicsSpec
}

func LoadTuning() (Tuning, error) {
	player, err := LoadPlayerSpec()
	if err != nil {
		return Tuning{}, err
	}
	physics, err := LoadPhysicsSpec()
	if err != nil {
		return Tuning{}, err
	}
	return Tuning{Player: *player, Physics: *physics}, nil
}
