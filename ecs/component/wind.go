package component

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type WindType uint8

const (
	WindConstant WindType = iota
	WindExponential
	// WindDefault has no model of its own yet and answers like WindConstant.
	WindDefault
)

const DefaultWindDecayRate = 0.5

func (t WindType) String() string {
	switch t {
	case WindExponential:
		return "exponential"
	case WindDefault:
		return "default"
	}
	return "constant"
}

func ParseWindType(s string) (WindType, error) {
	switch s {
	case "", "constant":
		return WindConstant, nil
	case "exponential":
		return WindExponential, nil
	case "default":
		return WindDefault, nil
	}
	return WindConstant, fmt.Errorf("unknown wind type %q", s)
}

// WindCell is one grid sub-region in field-local space: x runs along the
// blow direction from the source, y across the breadth.
type WindCell struct {
	Offset     mgl64.Vec2
	HalfExtent mgl64.Vec2
}

// WindField is a rectangle of wind starting at Source and extending Length
// along Rotation, Breadth wide.
type WindField struct {
	SourceX   float64
	SourceY   float64
	Breadth   float64
	Length    float64
	Rotation  float64
	Strength  float64
	Type      WindType
	DecayRate float64
	Active    bool

	BreadthGrids int
	LengthGrids  int
	Cells        []WindCell

	// DefaultWarned is set once the unspecified Default type has been reported.
	DefaultWarned bool
}

var WindFieldComponent = NewComponent[WindField]()

// GridSize splits a particle budget into a grid, filling the length axis
// first.
func GridSize(particles int) (breadthGrids, lengthGrids int) {
	if particles <= 1 {
		return 1, 1
	}
	lengthGrids = int(math.Ceil(math.Sqrt(float64(particles))))
	breadthGrids = int(math.Ceil(float64(particles) / float64(lengthGrids)))
	return breadthGrids, lengthGrids
}

// BuildCells lays out BreadthGrids x LengthGrids cells covering the field.
func (f *WindField) BuildCells() {
	if f.BreadthGrids < 1 {
		f.BreadthGrids = 1
	}
	if f.LengthGrids < 1 {
		f.LengthGrids = 1
	}
	cellLen := f.Length / float64(f.LengthGrids)
	cellBreadth := f.Breadth / float64(f.BreadthGrids)
	half := mgl64.Vec2{cellLen / 2, cellBreadth / 2}

	f.Cells = f.Cells[:0]
	for i := 0; i < f.LengthGrids; i++ {
		for j := 0; j < f.BreadthGrids; j++ {
			f.Cells = append(f.Cells, WindCell{
				Offset:     mgl64.Vec2{cellLen * (float64(i) + 0.5), -f.Breadth/2 + cellBreadth*(float64(j)+0.5)},
				HalfExtent: half,
			})
		}
	}
}

func (f *WindField) Source() mgl64.Vec2 {
	return mgl64.Vec2{f.SourceX, f.SourceY}
}

// Direction is the unit blow direction.
func (f *WindField) Direction() mgl64.Vec2 {
	return mgl64.Rotate2D(f.Rotation).Mul2x1(mgl64.Vec2{1, 0})
}

func (f *WindField) ToLocal(p mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Rotate2D(-f.Rotation).Mul2x1(p.Sub(f.Source()))
}

func (f *WindField) ToWorld(local mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Rotate2D(f.Rotation).Mul2x1(local).Add(f.Source())
}

func (f *WindField) Contains(x, y float64) bool {
	l := f.ToLocal(mgl64.Vec2{x, y})
	return l[0] >= 0 && l[0] <= f.Length && math.Abs(l[1]) <= f.Breadth/2
}

// CellIndex returns the cell holding the point, or -1.
func (f *WindField) CellIndex(x, y float64) int {
	l := f.ToLocal(mgl64.Vec2{x, y})
	for i, c := range f.Cells {
		d := l.Sub(c.Offset)
		if math.Abs(d[0]) <= c.HalfExtent[0] && math.Abs(d[1]) <= c.HalfExtent[1] {
			return i
		}
	}
	return -1
}

// Magnitude is the wind strength at a distance from the source along the
// blow axis.
func (f *WindField) Magnitude(distance float64) float64 {
	if f.Type != WindExponential {
		return f.Strength
	}
	if distance < 0 {
		distance = 0
	}
	decay := f.DecayRate
	if decay == 0 {
		decay = DefaultWindDecayRate
	}
	if f.Length <= 0 {
		return f.Strength
	}
	return f.Strength * math.Exp(-decay*distance/f.Length)
}

// ForceAt returns the wind force at a world point. It is zero while the
// field is inactive or when the point lies outside every cell.
func (f *WindField) ForceAt(x, y float64) mgl64.Vec2 {
	if f == nil || !f.Active {
		return mgl64.Vec2{}
	}
	if len(f.Cells) == 0 {
		if !f.Contains(x, y) {
			return mgl64.Vec2{}
		}
		return f.Direction().Mul(f.Magnitude(f.ToLocal(mgl64.Vec2{x, y})[0]))
	}
	i := f.CellIndex(x, y)
	if i < 0 {
		return mgl64.Vec2{}
	}
	return f.Cells[i].ForceAt(f, x, y)
}

// ForceAt answers for a point inside this cell.
func (c WindCell) ForceAt(f *WindField, x, y float64) mgl64.Vec2 {
	if f == nil || !f.Active {
		return mgl64.Vec2{}
	}
	distance := f.ToLocal(mgl64.Vec2{x, y})[0]
	return f.Direction().Mul(f.Magnitude(distance))
}

// CellBounds returns the world-space axis-aligned box around cell i.
func (f *WindField) CellBounds(i int) (lo, hi mgl64.Vec2) {
	c := f.Cells[i]
	lo = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, s := range [4]mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		corner := f.ToWorld(mgl64.Vec2{c.Offset[0] + s[0]*c.HalfExtent[0], c.Offset[1] + s[1]*c.HalfExtent[1]})
		lo = mgl64.Vec2{math.Min(lo[0], corner[0]), math.Min(lo[1], corner[1])}
		hi = mgl64.Vec2{math.Max(hi[0], corner[0]), math.Max(hi[1], corner[1])}
	}
	return lo, hi
}

// Corners returns the four world-space corners of the whole field.
func (f *WindField) Corners() [4]mgl64.Vec2 {
	b := f.Breadth / 2
	return [4]mgl64.Vec2{
		f.ToWorld(mgl64.Vec2{0, -b}),
		f.ToWorld(mgl64.Vec2{f.Length, -b}),
		f.ToWorld(mgl64.Vec2{f.Length, b}),
		f.ToWorld(mgl64.Vec2{0, b}),
	}
}
