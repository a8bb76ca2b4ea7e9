package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/knockdown/common"
)

// LevelSpec describes one playable level: the floor, the slingshot and the
// block structures to knock down.
type LevelSpec struct {
	Name       string          `yaml:"name"`
	Gravity    float64         `yaml:"gravity"`
	Floor      FloorSpec       `yaml:"floor"`
	Slingshot  SlingshotSpec   `yaml:"slingshot"`
	Structures []StructureSpec `yaml:"structures"`
}

type FloorSpec struct {
	Y float64 `yaml:"y"`
}

type SlingshotSpec struct {
	X                float64 `yaml:"x"`
	Y                float64 `yaml:"y"`
	ProjectileRadius float64 `yaml:"projectile_radius"`
	ProjectileMass   float64 `yaml:"projectile_mass"`
	Ammo             int     `yaml:"ammo"`
	Stiffness        float64 `yaml:"stiffness"`
	Damping          float64 `yaml:"damping"`
}

type BlockSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Mass   float64 `yaml:"mass"`
}

// StructureSpec is one structure entry. Kind selects how placements are
// generated: "stack" and "pyramid" are computed grids, "blocks" lists
// explicit placements, "script" runs a tengo layout script.
type StructureSpec struct {
	Kind     string           `yaml:"kind"`
	X        float64          `yaml:"x"`
	Y        float64          `yaml:"y"`
	Rows     int              `yaml:"rows"`
	Cols     int              `yaml:"cols"`
	Gap      float64          `yaml:"gap"`
	Block    BlockSpec        `yaml:"block"`
	Compound bool             `yaml:"compound"`
	Script   string           `yaml:"script"`
	Blocks   []BlockPlacement `yaml:"blocks"`
}

// BlockPlacement is one block, centered at (X, Y) in world pixels.
type BlockPlacement struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Mass   float64 `yaml:"mass"`
}

// LoadLevelSpec loads a level by file name, disk copy winning over the
// embedded one.
func LoadLevelSpec(name string) (*LevelSpec, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	return ParseLevelSpec(data)
}

// ParseLevelSpec unmarshals a level spec and fills in defaults.
func ParseLevelSpec(data []byte) (*LevelSpec, error) {
	var spec LevelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal level: %w", err)
	}
	spec.applyDefaults()
	return &spec, nil
}

func (s *LevelSpec) applyDefaults() {
	if s.Gravity == 0 {
		s.Gravity = common.Gravity
	}
	if s.Floor.Y == 0 {
		s.Floor.Y = common.BaseHeight - 80
	}
	if s.Slingshot.X == 0 {
		s.Slingshot.X = 220
	}
	if s.Slingshot.Y == 0 {
		s.Slingshot.Y = s.Floor.Y - 180
	}
	if s.Slingshot.ProjectileRadius == 0 {
		s.Slingshot.ProjectileRadius = 14
	}
	if s.Slingshot.ProjectileMass == 0 {
		s.Slingshot.ProjectileMass = 4
	}
	if s.Slingshot.Ammo == 0 {
		s.Slingshot.Ammo = 6
	}
	if s.Slingshot.Stiffness == 0 {
		s.Slingshot.Stiffness = 60
	}
	if s.Slingshot.Damping == 0 {
		s.Slingshot.Damping = 1.5
	}
}

// Placements expands the spec into concrete block placements.
func (s StructureSpec) Placements() ([]BlockPlacement, error) {
	switch s.Kind {
	case "", "blocks":
		if len(s.Blocks) == 0 {
			return nil, fmt.Errorf("blocks structure with no blocks")
		}
		out := make([]BlockPlacement, len(s.Blocks))
		for i, b := range s.Blocks {
			b.X += s.X
			b.Y += s.Y
			out[i] = b
		}
		return out, nil
	case "stack":
		return s.stackPlacements()
	case "pyramid":
		return s.pyramidPlacements()
	case "script":
		return RunLayoutScript(s.Script, s)
	}
	return nil, fmt.Errorf("unknown structure kind %q", s.Kind)
}

// stackPlacements lays out Rows x Cols blocks on the base line at (X, Y),
// columns centered on X. Y is the base line, blocks stack upward from it.
func (s StructureSpec) stackPlacements() ([]BlockPlacement, error) {
	rows, cols := s.Rows, s.Cols
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("stack needs rows and cols, got %dx%d", rows, cols)
	}
	bw, bh := s.Block.Width, s.Block.Height
	if bw <= 0 || bh <= 0 {
		return nil, fmt.Errorf("stack needs a block size")
	}
	out := make([]BlockPlacement, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, BlockPlacement{
				X:      s.X + (float64(c)-float64(cols-1)/2)*(bw+s.Gap),
				Y:      s.Y - bh/2 - float64(r)*(bh+s.Gap),
				Width:  bw,
				Height: bh,
				Mass:   s.Block.Mass,
			})
		}
	}
	return out, nil
}

// pyramidPlacements lays out Rows blocks on the bottom row, one fewer per
// row going up.
func (s StructureSpec) pyramidPlacements() ([]BlockPlacement, error) {
	rows := s.Rows
	if rows <= 0 {
		return nil, fmt.Errorf("pyramid needs rows, got %d", rows)
	}
	bw, bh := s.Block.Width, s.Block.Height
	if bw <= 0 || bh <= 0 {
		return nil, fmt.Errorf("pyramid needs a block size")
	}
	out := make([]BlockPlacement, 0, rows*(rows+1)/2)
	for r := 0; r < rows; r++ {
		count := rows - r
		for c := 0; c < count; c++ {
			out = append(out, BlockPlacement{
				X:      s.X + (float64(c)-float64(count-1)/2)*(bw+s.Gap),
				Y:      s.Y - bh/2 - float64(r)*(bh+s.Gap),
				Width:  bw,
				Height: bh,
				Mass:   s.Block.Mass,
			})
		}
	}
	return out, nil
}
