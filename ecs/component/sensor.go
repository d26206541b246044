package component

import "fmt"

// SensorKind tags a fixture with the reaction it drives. SensorNone marks
// a solid fixture.
type SensorKind uint8

const (
	SensorNone SensorKind = iota
	SensorGround
	SensorHead
	SensorBody
	SensorBottom
	SensorGoal
	sensorKindCount
)

var sensorNames = [...]string{"solid", "ground", "head", "body", "bottom", "goal"}

func (k SensorKind) String() string {
	if k < sensorKindCount {
		return sensorNames[k]
	}
	return fmt.Sprintf("sensor(%d)", uint8(k))
}

// Known reports whether k is part of the closed sensor set.
func (k SensorKind) Known() bool {
	return k < sensorKindCount
}

// SensorSpec places a box sensor relative to the body origin.
type SensorSpec struct {
	Kind    SensorKind
	OffsetX float64
	OffsetY float64
	HalfW   float64
	HalfH   float64
}

type Sensors struct {
	Specs []SensorSpec
}

var SensorsComponent = NewComponent[Sensors]()
