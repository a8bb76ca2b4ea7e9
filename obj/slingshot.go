package obj

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/knockdown/prefabs"
	"github.com/milk9111/knockdown/sim"
)

const (
	// launchPastDistance is how far beyond the anchor the projectile must
	// have snapped before the elastic lets go.
	launchPastDistance = 20.0
	reloadFrames       = 30
)

var (
	bandColor       = color.NRGBA{R: 0x6b, G: 0x3e, B: 0x26, A: 0xff}
	postColor       = color.NRGBA{R: 0x8a, G: 0x5a, B: 0x2b, A: 0xff}
	projectileColor = color.NRGBA{R: 0x4a, G: 0x4a, B: 0x52, A: 0xff}
)

// Slingshot owns the launch anchor, the elastic spring and the projectiles
// it has fired. Dragging the loaded projectile back and letting it snap past
// the anchor launches it; after a short delay the next one is loaded until
// the ammo runs out.
type Slingshot struct {
	pw *PhysicsWorld

	anchor    cp.Vector
	radius    float64
	mass      float64
	stiffness float64
	damping   float64
	ammo      int

	loaded      sim.BodyID
	spring      *cp.Constraint
	cooldown    int
	launched    int
	projectiles []sim.BodyID

	post  sim.BodyID
	postH float64
}

// NewSlingshot builds the slingshot and its static anchor post, and loads
// the first projectile.
func NewSlingshot(pw *PhysicsWorld, spec prefabs.SlingshotSpec, floorY float64) *Slingshot {
	s := &Slingshot{
		pw:        pw,
		anchor:    cp.Vector{X: spec.X, Y: spec.Y},
		radius:    spec.ProjectileRadius,
		mass:      spec.ProjectileMass,
		stiffness: spec.Stiffness,
		damping:   spec.Damping,
		ammo:      spec.Ammo,
		loaded:    sim.NoBody,
	}

	// static post from the floor up to the anchor so projectiles have
	// something to rest against visually and physically
	s.post = sim.NoBody
	if floorY > spec.Y {
		post := pw.NewBody(sim.CategoryAnchor, true)
		s.post = pw.AddBoxPart(post, spec.X, (spec.Y+floorY)/2, 10, floorY-spec.Y, 0)
		s.postH = floorY - spec.Y
	}

	s.Load()
	return s
}

// Load spawns the next projectile at the anchor and hooks up the elastic.
func (s *Slingshot) Load() {
	if s == nil || s.pw == nil || s.loaded != sim.NoBody {
		return
	}
	if s.ShotsLeft() <= 0 {
		return
	}
	owner := s.pw.NewBody(sim.CategoryProjectile, false)
	part := s.pw.AddCirclePart(owner, s.anchor.X, s.anchor.Y, s.radius, s.mass)
	if part == sim.NoBody {
		// don't leak a partless owner record
		s.pw.World().Remove(owner)
		return
	}
	s.spring = s.pw.AttachSpring(part, s.anchor, s.stiffness, s.damping)
	s.loaded = part
	s.projectiles = append(s.projectiles, part)
}

// Update releases the elastic once the projectile has snapped past the
// anchor with the mouse let go, and reloads after the cooldown.
func (s *Slingshot) Update(dragging bool) {
	if s == nil || s.pw == nil {
		return
	}

	s.pruneProjectiles()

	if s.cooldown > 0 {
		s.cooldown--
		if s.cooldown == 0 {
			s.Load()
		}
		return
	}
	if s.loaded == sim.NoBody {
		return
	}

	pos, _, ok := s.pw.PartTransform(s.loaded)
	if !ok {
		// the loaded projectile got culled while still attached
		s.pw.RemoveConstraint(s.spring)
		s.spring = nil
		s.loaded = sim.NoBody
		s.cooldown = reloadFrames
		return
	}

	if !dragging && pos.X > s.anchor.X+launchPastDistance {
		s.pw.RemoveConstraint(s.spring)
		s.spring = nil
		s.loaded = sim.NoBody
		s.launched++
		s.cooldown = reloadFrames
	}
}

func (s *Slingshot) pruneProjectiles() {
	writeIdx := 0
	for _, id := range s.projectiles {
		if !s.pw.World().Alive(id) {
			continue
		}
		s.projectiles[writeIdx] = id
		writeIdx++
	}
	s.projectiles = s.projectiles[:writeIdx]
}

// ShotsLeft is how many projectiles remain, counting the loaded one.
func (s *Slingshot) ShotsLeft() int {
	if s == nil {
		return 0
	}
	n := s.ammo - s.launched
	if n < 0 {
		return 0
	}
	return n
}

// Loaded returns the part id of the projectile currently on the elastic.
func (s *Slingshot) Loaded() sim.BodyID {
	if s == nil {
		return sim.NoBody
	}
	return s.loaded
}

// Anchor returns the launch anchor position.
func (s *Slingshot) Anchor() cp.Vector {
	if s == nil {
		return cp.Vector{}
	}
	return s.anchor
}

// Draw renders the post, the elastic band and every live projectile.
func (s *Slingshot) Draw(screen *ebiten.Image) {
	if s == nil || screen == nil {
		return
	}

	if s.post != sim.NoBody {
		if pos, angle, ok := s.pw.PartTransform(s.post); ok {
			drawBox(screen, pos.X, pos.Y, 10, s.postH, angle, postColor)
		}
	}

	if s.loaded != sim.NoBody {
		if pos, _, ok := s.pw.PartTransform(s.loaded); ok {
			strokeLine(screen, s.anchor.X-s.radius, s.anchor.Y, pos.X, pos.Y, 3, bandColor)
			strokeLine(screen, s.anchor.X+s.radius, s.anchor.Y, pos.X, pos.Y, 3, bandColor)
		}
	}

	for _, id := range s.projectiles {
		pos, _, ok := s.pw.PartTransform(id)
		if !ok {
			continue
		}
		fillCircle(screen, pos.X, pos.Y, s.radius, projectileColor)
	}
}
