package sim

import (
	"math"

	"github.com/jakecoffman/cp"
)

// DefaultShockThreshold is the cumulative impact damage above which a Block
// body gets knocked out of the world.
const DefaultShockThreshold = 500.0

// Rules is the game's StepHooks implementation: momentum-based impact damage,
// sleep-triggered projectile cleanup and compound angle alignment.
type Rules struct {
	// ShockThreshold overrides DefaultShockThreshold when positive.
	ShockThreshold float64
}

func (r *Rules) threshold() float64 {
	if r != nil && r.ShockThreshold > 0 {
		return r.ShockThreshold
	}
	return DefaultShockThreshold
}

// OnPreStep culls projectile parts the engine has put to sleep, and
// snapshots every surviving part's velocity for the impact math. A part
// removed this pass is never snapshotted.
func (r *Rules) OnPreStep(w *World) {
	if w == nil {
		return
	}
	w.EachBody(func(b *Body) {
		for _, pid := range b.PartList() {
			p := w.Body(pid)
			if p == nil {
				continue
			}
			if p.Label == CategoryProjectile && p.Sleeping {
				w.Remove(pid)
				continue
			}
			p.VelocityPrev = p.Velocity
		}
	})
}

// OnPostStep forces every part of a compound body back to the compound's
// angle (the engine integrates the parts individually), then knocks out
// Block bodies whose absorbed shock is past the threshold.
func (r *Rules) OnPostStep(w *World) {
	if w == nil {
		return
	}
	limit := r.threshold()
	w.EachBody(func(b *Body) {
		if b.IsCompound() {
			for _, pid := range b.Parts {
				if p := w.Body(pid); p != nil {
					p.Angle = b.Angle
				}
			}
		}
		if b.Label == CategoryBlock && b.ShockAbsorbed > limit {
			w.Remove(b.ID())
		}
	})
}

// OnCollisionStart tallies impact shock for every new contact pair. Each
// part absorbs the shock itself, and its owner then absorbs the part's new
// running total, not just the fresh delta, so a part that has been hit
// before re-contributes its whole history on every new contact. The
// compounding is intentional; knockout thresholds are tuned around it.
// Removals never happen here so all contacts of a step are tallied first.
func (r *Rules) OnCollisionStart(w *World, pairs []ContactPair) {
	if w == nil {
		return
	}
	for _, pair := range pairs {
		a := w.Body(pair.A)
		b := w.Body(pair.B)
		if a == nil || b == nil {
			continue
		}
		shock := ImpactShock(a, b)
		absorb(w, a, shock)
		absorb(w, b, shock)
	}
}

func absorb(w *World, p *Body, shock float64) {
	p.ShockAbsorbed += shock
	owner := w.Body(p.Parent)
	if owner == nil || owner.ID() == p.ID() {
		return
	}
	owner.ShockAbsorbed += p.ShockAbsorbed
}

// ImpactShock is the floored magnitude of the pre-impact momentum difference
// between two parts. Static parts contribute no momentum of their own.
func ImpactShock(a, b *Body) float64 {
	return math.Floor(momentum(a).Sub(momentum(b)).Length())
}

func momentum(p *Body) cp.Vector {
	if p == nil || p.Static {
		return cp.Vector{}
	}
	return p.VelocityPrev.Mult(p.Mass)
}
