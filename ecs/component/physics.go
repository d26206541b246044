package component

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

type BodyKind uint8

const (
	BodyStatic BodyKind = iota
	BodyDynamic
)

func (k BodyKind) String() string {
	if k == BodyDynamic {
		return "dynamic"
	}
	return "static"
}

func ParseBodyKind(s string) (BodyKind, error) {
	switch s {
	case "", "static":
		return BodyStatic, nil
	case "dynamic":
		return BodyDynamic, nil
	}
	return BodyStatic, fmt.Errorf("unknown body kind %q", s)
}

type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapePolygon
	ShapeCircle
)

func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "", "box":
		return ShapeBox, nil
	case "polygon":
		return ShapePolygon, nil
	case "circle":
		return ShapeCircle, nil
	}
	return ShapeBox, fmt.Errorf("unknown shape kind %q", s)
}

// ShapeDesc describes the solid collider of a body in body-local space.
type ShapeDesc struct {
	Kind   ShapeKind
	HalfW  float64
	HalfH  float64
	Radius float64
	Points []cp.Vector
}

// PhysicsBody stores the collider configuration and, once the body has
// been added to the space, the Chipmunk2D runtime handles.
type PhysicsBody struct {
	Kind          BodyKind
	Shape         ShapeDesc
	Density       float64
	Friction      float64
	Restitution   float64
	FixedRotation bool
	// Tag turns the primary fixture into a sensor of that kind. Colliding
	// bodies leave it at SensorNone.
	Tag       SensorKind
	VelocityX float64
	VelocityY float64

	// Active is false once the body has been taken out of the simulation.
	Active bool

	Body *cp.Body
	// Fixtures holds the solid shape first, followed by any sensors.
	Fixtures []*cp.Shape
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// Velocity returns the live body velocity, or the configured initial
// velocity before the body exists.
func (pb *PhysicsBody) Velocity() cp.Vector {
	if pb == nil {
		return cp.Vector{}
	}
	if pb.Body == nil {
		return cp.Vector{X: pb.VelocityX, Y: pb.VelocityY}
	}
	return pb.Body.Velocity()
}

// Solid returns the primary non-sensor fixture.
func (pb *PhysicsBody) Solid() *cp.Shape {
	if pb == nil || len(pb.Fixtures) == 0 {
		return nil
	}
	return pb.Fixtures[0]
}
