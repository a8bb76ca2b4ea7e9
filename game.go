package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/knockdown/common"
	"github.com/milk9111/knockdown/obj"
	"github.com/milk9111/knockdown/prefabs"
	"github.com/milk9111/knockdown/sim"
)

var (
	skyColor   = color.NRGBA{R: 0x87, G: 0xb5, B: 0xd6, A: 0xff}
	floorColor = color.NRGBA{R: 0x5a, G: 0x8a, B: 0x3c, A: 0xff}
)

type Game struct {
	frames int
	debug  bool
	paused bool

	levelName string
	spec      *prefabs.LevelSpec

	input *obj.Input

	world      *sim.World
	pw         *obj.PhysicsWorld
	slingshot  *obj.Slingshot
	drag       *obj.Drag
	structures []*obj.Structure

	watcher *prefabs.Watcher
	pauseUI *ebitenui.UI
}

func NewGame(levelName string, debug bool) *Game {
	g := &Game{
		levelName: levelName,
		debug:     debug,
		input:     obj.NewInput(),
	}
	g.pauseUI = NewPauseUI(g)

	spec, err := prefabs.LoadLevelSpec(levelName)
	if err != nil {
		log.Printf("failed to load level %s: %v, using defaults", levelName, err)
		spec, _ = prefabs.ParseLevelSpec(nil)
	}
	g.spec = spec
	g.buildWorld()

	// hot reload only works when running from the repo checkout; missing
	// directories just mean no watcher
	watcher, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
	if err != nil {
		log.Printf("prefab watcher disabled: %v", err)
	} else {
		g.watcher = watcher
	}

	return g
}

// buildWorld tears down whatever is running and spawns the level from the
// current spec: floor, slingshot, structures.
func (g *Game) buildWorld() {
	g.world = sim.NewWorld()
	g.pw = obj.NewPhysicsWorld(g.world, &sim.Rules{}, g.spec.Gravity)

	ground := g.pw.NewBody(sim.CategoryGround, true)
	g.pw.AddSegmentPart(ground,
		cp.Vector{X: 0, Y: g.spec.Floor.Y},
		cp.Vector{X: common.BaseWidth, Y: g.spec.Floor.Y}, 2)

	g.slingshot = obj.NewSlingshot(g.pw, g.spec.Slingshot, g.spec.Floor.Y)
	g.drag = obj.NewDrag(g.pw)

	g.structures = g.structures[:0]
	for i, st := range g.spec.Structures {
		built, err := obj.BuildStructure(g.pw, st)
		if err != nil {
			log.Printf("skipping structure %d: %v", i, err)
			continue
		}
		g.structures = append(g.structures, built)
	}
}

// reload re-reads the level spec and rebuilds the world from scratch.
func (g *Game) reload() {
	spec, err := prefabs.LoadLevelSpec(g.levelName)
	if err != nil {
		log.Printf("reload failed, keeping current level: %v", err)
		return
	}
	g.spec = spec
	g.buildWorld()
	log.Printf("reloaded level %s", g.levelName)
}

// drainWatcher reports whether any prefab file changed since last frame.
func (g *Game) drainWatcher() bool {
	if g.watcher == nil {
		return false
	}
	changed := false
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return changed
			}
			log.Printf("prefab changed: %s", name)
			changed = true
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return changed
			}
			log.Printf("prefab watcher: %v", err)
		default:
			return changed
		}
	}
}

func (g *Game) Update() error {
	g.frames++
	g.input.Update()

	if g.input.PausePressed {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if g.drainWatcher() || g.input.ReloadPressed {
		g.reload()
	}

	g.drag.Update(g.input)
	g.slingshot.Update(g.drag.Dragging())
	g.pw.Step(common.StepDT)

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)
	vector.DrawFilledRect(screen,
		0, float32(g.spec.Floor.Y),
		common.BaseWidth, float32(common.BaseHeight-g.spec.Floor.Y),
		floorColor, false)

	for _, st := range g.structures {
		st.Draw(screen)
	}
	g.slingshot.Draw(screen)

	if g.debug {
		g.pw.DebugDraw(screen)
	}

	standing := 0
	for _, st := range g.structures {
		standing += st.Standing()
	}
	hud := fmt.Sprintf("shots: %d    blocks standing: %d", g.slingshot.ShotsLeft(), standing)
	if g.debug {
		hud += fmt.Sprintf("    frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS())
	}
	ebitenutil.DebugPrint(screen, hud)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
