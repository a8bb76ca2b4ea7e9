package prefabs

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// RunLayoutScript loads a tengo layout script by name and runs it for the
// given structure spec.
func RunLayoutScript(name string, spec StructureSpec) ([]BlockPlacement, error) {
	if name == "" {
		return nil, fmt.Errorf("script structure with no script name")
	}
	src, err := LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("layout script %s: %w", name, err)
	}
	placements, err := RunLayoutSource(src, spec)
	if err != nil {
		return nil, fmt.Errorf("layout script %s: %w", name, err)
	}
	return placements, nil
}

// RunLayoutSource runs a tengo layout script. The script sees the structure
// parameters as globals and must leave its result in a "blocks" array of
// maps with x, y, width, height and mass keys, relative to the origin.
func RunLayoutSource(src []byte, spec StructureSpec) ([]BlockPlacement, error) {
	script := tengo.NewScript(src)
	_ = script.Add("origin_x", spec.X)
	_ = script.Add("origin_y", spec.Y)
	_ = script.Add("rows", spec.Rows)
	_ = script.Add("cols", spec.Cols)
	_ = script.Add("gap", spec.Gap)
	_ = script.Add("block_width", spec.Block.Width)
	_ = script.Add("block_height", spec.Block.Height)
	_ = script.Add("block_mass", spec.Block.Mass)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Run()
	if err != nil {
		return nil, err
	}

	blocks := compiled.Get("blocks")
	if blocks == nil || blocks.IsUndefined() {
		return nil, fmt.Errorf("script did not set a blocks array")
	}

	raw := blocks.Array()
	out := make([]BlockPlacement, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("blocks[%d] is not a map", i)
		}
		pl := BlockPlacement{
			X:      spec.X + numField(m, "x"),
			Y:      spec.Y + numField(m, "y"),
			Width:  numField(m, "width"),
			Height: numField(m, "height"),
			Mass:   numField(m, "mass"),
		}
		if pl.Width <= 0 || pl.Height <= 0 {
			return nil, fmt.Errorf("blocks[%d] has no size", i)
		}
		if pl.Mass <= 0 {
			pl.Mass = spec.Block.Mass
		}
		out = append(out, pl)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("script produced no blocks")
	}
	return out, nil
}

func numField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
