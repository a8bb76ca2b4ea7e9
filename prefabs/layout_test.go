package prefabs

import (
	"math"
	"testing"
)

func TestRunLayoutSource(t *testing.T) {
	src := []byte(`
blocks := []
for i := 0; i < rows; i++ {
	blocks = append(blocks, {
		x: i * (block_width + gap),
		y: -block_height / 2,
		width: block_width,
		height: block_height,
		mass: block_mass
	})
}
`)
	spec := StructureSpec{
		X: 100, Y: 600, Rows: 3, Gap: 2,
		Block: BlockSpec{Width: 10, Height: 20, Mass: 4},
	}

	got, err := RunLayoutSource(src, spec)
	if err != nil {
		t.Fatalf("run layout: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d placements, want 3", len(got))
	}
	for i, pl := range got {
		wantX := 100 + float64(i)*12
		if math.Abs(pl.X-wantX) > 1e-9 {
			t.Fatalf("blocks[%d].X = %v, want %v", i, pl.X, wantX)
		}
		if pl.Y != 590 || pl.Width != 10 || pl.Height != 20 || pl.Mass != 4 {
			t.Fatalf("blocks[%d] = %+v", i, pl)
		}
	}
}

func TestRunLayoutSourceErrors(t *testing.T) {
	spec := StructureSpec{Rows: 2, Block: BlockSpec{Width: 10, Height: 10, Mass: 1}}

	cases := []struct {
		name string
		src  string
	}{
		{"no_blocks_var", `x := 1`},
		{"empty_blocks", `blocks := []`},
		{"not_a_map", `blocks := [1, 2]`},
		{"missing_size", `blocks := [{x: 0, y: 0}]`},
		{"compile_error", `for {`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := RunLayoutSource([]byte(c.src), spec); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRunLayoutScriptEmbeddedArch(t *testing.T) {
	spec := StructureSpec{
		Kind: "script", Script: "arch.tengo",
		X: 500, Y: 640, Rows: 4,
		Block: BlockSpec{Width: 30, Height: 30, Mass: 2},
	}
	got, err := RunLayoutScript(spec.Script, spec)
	if err != nil {
		t.Fatalf("run arch script: %v", err)
	}
	// two pillars of `rows` blocks plus the lintel
	if len(got) != 2*spec.Rows+1 {
		t.Fatalf("got %d placements, want %d", len(got), 2*spec.Rows+1)
	}
	lintel := got[len(got)-1]
	if lintel.Width <= spec.Block.Width {
		t.Fatalf("lintel width %v should span the pillars", lintel.Width)
	}
	if lintel.Y >= got[0].Y {
		t.Fatalf("lintel should sit above the pillar base")
	}

	if _, err := RunLayoutScript("missing.tengo", spec); err == nil {
		t.Fatalf("expected error for missing script")
	}
}
