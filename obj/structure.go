package obj

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/knockdown/prefabs"
	"github.com/milk9111/knockdown/sim"
)

var (
	blockColor    = color.NRGBA{R: 0xc9, G: 0x84, B: 0x3c, A: 0xff}
	compoundColor = color.NRGBA{R: 0x9c, G: 0x6a, B: 0x30, A: 0xff}
)

type structureBlock struct {
	part sim.BodyID
	w, h float64
}

// Structure is a group of blocks built from one level spec entry. Simple
// structures give every block its own body; a compound structure shares one
// body so all blocks absorb shock and get knocked out together.
type Structure struct {
	pw       *PhysicsWorld
	blocks   []structureBlock
	compound bool
}

// BuildStructure spawns the blocks described by a level spec entry into the
// world.
func BuildStructure(pw *PhysicsWorld, spec prefabs.StructureSpec) (*Structure, error) {
	if pw == nil {
		return nil, fmt.Errorf("structure: nil physics world")
	}
	placements, err := spec.Placements()
	if err != nil {
		return nil, fmt.Errorf("structure %q: %w", spec.Kind, err)
	}

	st := &Structure{pw: pw, compound: spec.Compound}

	var owner sim.BodyID
	if spec.Compound {
		owner = pw.NewBody(sim.CategoryBlock, false)
	}

	var prev sim.BodyID = sim.NoBody
	for _, pl := range placements {
		if !spec.Compound {
			owner = pw.NewBody(sim.CategoryBlock, false)
		}
		part := pw.AddBoxPart(owner, pl.X, pl.Y, pl.Width, pl.Height, pl.Mass)
		if part == sim.NoBody {
			continue
		}
		if spec.Compound && prev != sim.NoBody {
			pw.LinkParts(prev, part)
		}
		prev = part
		st.blocks = append(st.blocks, structureBlock{part: part, w: pl.Width, h: pl.Height})
	}
	if len(st.blocks) == 0 {
		return nil, fmt.Errorf("structure %q: no blocks", spec.Kind)
	}
	return st, nil
}

// Standing counts the blocks that are still in the world.
func (st *Structure) Standing() int {
	if st == nil {
		return 0
	}
	n := 0
	for _, b := range st.blocks {
		if st.pw.World().Alive(b.part) {
			n++
		}
	}
	return n
}

// Draw renders the surviving blocks.
func (st *Structure) Draw(screen *ebiten.Image) {
	if st == nil || screen == nil {
		return
	}
	clr := color.Color(blockColor)
	if st.compound {
		clr = compoundColor
	}
	for _, b := range st.blocks {
		pos, angle, ok := st.pw.PartTransform(b.part)
		if !ok {
			continue
		}
		drawBox(screen, pos.X, pos.Y, b.w, b.h, angle, clr)
	}
}
