package sim

// Category classifies what a body means to the game rules. The physics
// engine never interprets it.
type Category int

const (
	CategoryGround Category = iota
	CategoryBlock
	CategoryProjectile
	CategoryAnchor
)

func (c Category) String() string {
	switch c {
	case CategoryGround:
		return "Ground"
	case CategoryBlock:
		return "Block"
	case CategoryProjectile:
		return "Projectile"
	case CategoryAnchor:
		return "Anchor"
	}
	return "Unknown"
}
