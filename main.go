package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "show sensors and the player readout, report stray bodies")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional) or a path on disk")
	strict := flag.Bool("strict", false, "stop on malformed contacts instead of skipping them")
	watch := flag.Bool("watch", false, "hot reload prefabs/*.yaml while running")
	prefabDir := flag.String("prefabs", prefabs.Dir, "directory checked for prefab overrides")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	if *debug && *logLevel == "info" {
		*logLevel = "debug"
	}
	if err := common.ConfigureLogging(os.Stderr, *logLevel); err != nil {
		log.Fatal("bad log level", "err", err)
	}
	prefabs.Dir = *prefabDir

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("gustpath")

	game, err := NewGame(Config{
		Level:  *levelName,
		Debug:  *debug,
		Strict: *strict,
		Watch:  *watch,
	})
	if err != nil {
		log.Fatal("start game", "err", err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Error("game stopped", "err", err)
		game.Close()
		os.Exit(1)
	}
}
