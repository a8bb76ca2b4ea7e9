package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/knockdown/common"
)

func main() {
	levelName := flag.String("level", "level", "level name in prefabs/ (basename, .yaml optional)")
	debug := flag.Bool("debug", false, "show frame stats in the HUD")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("knockdown")

	game := NewGame(*levelName, *debug)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
