package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/prefabs"
	"github.com/milk9111/gustpath/render"
	"github.com/milk9111/gustpath/render/viewport"
	"github.com/milk9111/gustpath/sim"
)

type Config struct {
	Level  string
	Debug  bool
	Strict bool
	Watch  bool
}

type Game struct {
	cfg     Config
	log     *log.Logger
	levels  []string
	index   int
	current string

	sim      *sim.Simulation
	camera   *viewport.Camera
	renderer *render.Renderer
	watcher  *prefabs.Watcher
	ui       *ebitenui.UI

	paused  bool
	fansOff bool
	message string
}

func NewGame(cfg Config) (*Game, error) {
	names, err := levels.List()
	if err != nil {
		return nil, err
	}

	g := &Game{cfg: cfg, log: common.Logger("game"), levels: names}
	if cfg.Level == "" && len(names) > 0 {
		cfg.Level = names[0]
	}
	for i, name := range names {
		if name == cfg.Level || name == cfg.Level+".json" {
			g.index = i
		}
	}

	if err := g.load(cfg.Level); err != nil {
		return nil, err
	}

	if cfg.Watch {
		w, err := prefabs.NewWatcher()
		if err != nil {
			g.log.Warn("prefab hot reload disabled", "err", err)
		} else {
			g.watcher = w
		}
	}

	g.ui = NewPauseUI(g)
	return g, nil
}

func (g *Game) load(name string) error {
	lvl, err := levels.Load(name)
	if err != nil {
		return err
	}
	tuning, err := prefabs.LoadTuning()
	if err != nil {
		return err
	}
	s, err := sim.New(lvl, tuning, sim.Options{Strict: g.cfg.Strict, Debug: g.cfg.Debug})
	if err != nil {
		return err
	}

	g.sim = s
	g.current = name
	ebiten.SetTPS(tuning.Physics.TPS)
	g.camera = viewport.NewCamera(tuning.Physics.PixelsPerMeter, common.BaseWidth, common.BaseHeight)
	if g.renderer == nil {
		g.renderer = render.NewRenderer(g.camera)
		g.renderer.ShowSensors = g.cfg.Debug
	} else {
		g.renderer.Camera = g.camera
	}
	p := s.Player()
	g.camera.Snap(p.X, p.Y)
	g.fansOff = false
	g.message = ""
	g.log.Info("level loaded", "level", lvl.Name)
	return nil
}

func (g *Game) restart() {
	if err := g.sim.Reset(); err != nil {
		g.log.Error("restart failed", "err", err)
		return
	}
	g.fansOff = false
	g.message = ""
	p := g.sim.Player()
	g.camera.Snap(p.X, p.Y)
}

func (g *Game) nextLevel() {
	if len(g.levels) == 0 {
		return
	}
	g.index = (g.index + 1) % len(g.levels)
	if err := g.load(g.levels[g.index]); err != nil {
		g.log.Error("load level failed", "level", g.levels[g.index], "err", err)
	}
}

// reloadPrefabs applies prefab edits picked up by the watcher. Player
// tuning is swapped in place while physics changes rebuild the level.
func (g *Game) reloadPrefabs() {
	if g.watcher == nil {
		return
	}
	select {
	case err := <-g.watcher.Errors:
		g.log.Warn("prefab watcher", "err", err)
	default:
	}

	for _, name := range g.watcher.Drain() {
		switch name {
		case prefabs.PlayerFile:
			spec, err := prefabs.LoadPlayerSpec()
			if err != nil {
				g.log.Warn("player reload rejected", "err", err)
				continue
			}
			if err := g.sim.ApplyPlayerTuning(*spec); err != nil {
				g.log.Warn("player reload rejected", "err", err)
			}
		case prefabs.PhysicsFile:
			if err := g.load(g.current); err != nil {
				g.log.Warn("physics reload rejected", "err", err)
			}
		}
	}
}

func (g *Game) Update() error {
	switch pollMenu() {
	case menuPause:
		g.paused = !g.paused
	case menuRestart:
		g.restart()
	case menuNextLevel:
		g.nextLevel()
	case menuToggleSensors:
		g.renderer.ShowSensors = !g.renderer.ShowSensors
	case menuToggleWind:
		g.renderer.ShowWind = !g.renderer.ShowWind
	case menuToggleFans:
		g.fansOff = !g.fansOff
		n := g.sim.SetFanActive("", !g.fansOff)
		g.log.Debug("fans toggled", "count", n, "on", !g.fansOff)
	}

	if g.paused {
		g.ui.Update()
		return nil
	}

	g.reloadPrefabs()

	if !g.sim.Status().Over() {
		if err := g.sim.Tick(pollInput()); err != nil {
			return err
		}
		for _, ev := range g.sim.Events() {
			g.onEvent(ev)
		}
	}

	p := g.sim.Player()
	g.camera.Follow(p.X, p.Y)
	if lvl := g.sim.Level(); lvl != nil {
		b := lvl.Bounds
		g.camera.Clamp(b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
	return nil
}

func (g *Game) onEvent(ev ecs.Event) {
	switch ev.Kind {
	case ecs.EventLevelComplete:
		g.message = "Level complete! N for the next level, R to retry"
	case ecs.EventLevelFailed:
		g.message = fmt.Sprintf("Failed (%v). R to retry", ev.Data)
	case ecs.EventPlatformBroken:
		g.log.Debug("platform broke", "entity", ev.Entity)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.sim.Space(), g.sim.World())

	st := g.sim.Status()
	lines := []string{fmt.Sprintf("%s  %.1fs  FPS %.0f", st.Name, st.Elapsed, ebiten.ActualFPS())}
	if g.cfg.Debug {
		p := g.sim.Player()
		lines = append(lines,
			fmt.Sprintf("pos %.2f, %.2f  vel %.2f, %.2f", p.X, p.Y, p.VX, p.VY),
			fmt.Sprintf("grounded %v  head %v  frozen %v  mass %.2f", p.Grounded, p.HeadBlocked, p.Frozen, p.Mass),
		)
	}
	if g.message != "" {
		lines = append(lines, g.message)
	}
	render.DrawStatus(screen, lines...)

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}
