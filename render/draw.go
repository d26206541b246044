// Package render draws a running simulation as colored wireframes. It only
// reads the world.
package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/ecs/component"
	"github.com/milk9111/gustpath/ecs/system"
	"github.com/milk9111/gustpath/render/viewport"
	"golang.org/x/image/colornames"
)

const (
	circleSegments = 24
	dotSize        = 4
	lineWidth      = 1.5
)

var (
	Background   = color.RGBA{R: 0x14, G: 0x16, B: 0x1f, A: 0xff}
	defaultShape = colornames.Lightgray
	sensorColor  = cp.FColor{R: 1, G: 0.84, B: 0, A: 0.55}
	windOn       = color.NRGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0x70}
	windOff      = color.NRGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0x20}
)

// ColorByName resolves an x/image color name, falling back when the name
// is empty or unknown.
func ColorByName(name string, fallback color.RGBA) color.RGBA {
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c
	}
	return fallback
}

type Renderer struct {
	Camera      *viewport.Camera
	ShowSensors bool
	ShowWind    bool
}

func NewRenderer(cam *viewport.Camera) *Renderer {
	return &Renderer{Camera: cam, ShowWind: true}
}

// Draw renders every shape in space plus the wind fields of w.
func (r *Renderer) Draw(screen *ebiten.Image, space *cp.Space, w *ecs.World) {
	if r == nil || screen == nil || w == nil {
		return
	}
	screen.Fill(Background)

	if r.ShowWind {
		r.drawWind(screen, w)
	}
	if space != nil {
		cp.DrawSpace(space, &shapeDrawer{
			screen:      screen,
			cam:         r.Camera,
			colors:      entityColors(w),
			showSensors: r.ShowSensors,
		})
	}
}

func entityColors(w *ecs.World) map[ecs.Entity]color.RGBA {
	colors := make(map[ecs.Entity]color.RGBA)
	ecs.ForEach(w, component.AppearanceComponent.Kind(), func(e ecs.Entity, a *component.Appearance) {
		colors[e] = ColorByName(a.Color, defaultShape)
	})
	return colors
}

func (r *Renderer) drawWind(screen *ebiten.Image, w *ecs.World) {
	ecs.ForEach(w, component.WindFieldComponent.Kind(), func(_ ecs.Entity, f *component.WindField) {
		clr := windOff
		if f.Active {
			clr = windOn
		}
		for _, cell := range f.Cells {
			corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
			pts := make([]cp.Vector, 0, len(corners))
			for _, k := range corners {
				local := cell.Offset
				local[0] += k[0] * cell.HalfExtent[0]
				local[1] += k[1] * cell.HalfExtent[1]
				p := f.ToWorld(local)
				pts = append(pts, cp.Vector{X: p[0], Y: p[1]})
			}
			strokePolygon(screen, r.Camera, pts, clr)
		}

		src := f.Source()
		tip := src.Add(f.Direction().Mul(math.Min(f.Length, 1.5)))
		strokeLine(screen, r.Camera, cp.Vector{X: src[0], Y: src[1]}, cp.Vector{X: tip[0], Y: tip[1]}, clr)
	})
}

// DrawStatus prints the level and player readout in the top-left corner.
func DrawStatus(screen *ebiten.Image, lines ...string) {
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), 10, 10)
}

type shapeDrawer struct {
	screen      *ebiten.Image
	cam         *viewport.Camera
	colors      map[ecs.Entity]color.RGBA
	showSensors bool
}

func (d *shapeDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 || fill.A == 0 {
		return
	}
	points := make([]cp.Vector, 0, circleSegments)
	for i := 0; i < circleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(circleSegments))
		points = append(points, cp.Vector{X: pos.X + math.Cos(t)*radius, Y: pos.Y + math.Sin(t)*radius})
	}
	c := toNRGBA(fill)
	strokePolygon(d.screen, d.cam, points, c)
	strokeLine(d.screen, d.cam, pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, c)
}

func (d *shapeDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	strokeLine(d.screen, d.cam, a, b, toNRGBA(fill))
}

func (d *shapeDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	strokeLine(d.screen, d.cam, a, b, toNRGBA(fill))
}

func (d *shapeDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 || fill.A == 0 {
		return
	}
	strokePolygon(d.screen, d.cam, verts[:count], toNRGBA(fill))
}

func (d *shapeDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = dotSize
	}
	x, y := d.cam.ToScreen(pos.X, pos.Y)
	half := float32(size / 2)
	c := toNRGBA(fill)
	vector.StrokeLine(d.screen, x-half, y, x+half, y, lineWidth, c, true)
	vector.StrokeLine(d.screen, x, y-half, x, y+half, lineWidth, c, true)
}

func (d *shapeDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *shapeDrawer) OutlineColor() cp.FColor {
	return toFColor(defaultShape)
}

// ShapeColor tints solid fixtures with their entity color. Helper sensors
// are hidden unless enabled, and a solid that currently lets bodies through
// is faded.
func (d *shapeDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	ref, ok := shape.UserData.(system.FixtureRef)
	if !ok {
		return toFColor(defaultShape)
	}
	base, ok := d.colors[ref.Entity]
	if !ok {
		base = defaultShape
	}
	switch {
	case ref.Tag == component.SensorGoal:
		return toFColor(base)
	case ref.Tag != component.SensorNone:
		if !d.showSensors {
			return cp.FColor{}
		}
		return sensorColor
	}
	fc := toFColor(base)
	if shape.Sensor() {
		fc.A /= 3
	}
	return fc
}

func (d *shapeDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *shapeDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *shapeDrawer) Data() interface{} {
	return nil
}

func strokeLine(screen *ebiten.Image, cam *viewport.Camera, a, b cp.Vector, c color.Color) {
	x1, y1 := cam.ToScreen(a.X, a.Y)
	x2, y2 := cam.ToScreen(b.X, b.Y)
	vector.StrokeLine(screen, x1, y1, x2, y2, lineWidth, c, true)
}

func strokePolygon(screen *ebiten.Image, cam *viewport.Camera, verts []cp.Vector, c color.Color) {
	for i := range verts {
		strokeLine(screen, cam, verts[i], verts[(i+1)%len(verts)], c)
	}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// toFColor takes the premultiplied RGBA of colornames values back to
// straight alpha.
func toFColor(c color.RGBA) cp.FColor {
	if c.A == 0 {
		return cp.FColor{}
	}
	a := float32(c.A)
	return cp.FColor{
		R: float32(c.R) / a,
		G: float32(c.G) / a,
		B: float32(c.B) / a,
		A: a / 255,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
