package sim

import "github.com/jakecoffman/cp"

// BodyID is a handle to a record in the World arena: an arena index in the
// low bits and a generation in the high bits. Reusing a slot bumps the
// generation, so a handle to a removed record stays dead forever no matter
// how long a caller holds on to it.
type BodyID int64

// NoBody is the invalid id.
const NoBody BodyID = -1

func makeID(index int, gen uint32) BodyID {
	return BodyID(int64(gen)<<32 | int64(index))
}

func (id BodyID) index() int {
	if id < 0 {
		return -1
	}
	return int(id & 0xffffffff)
}

func (id BodyID) gen() uint32 {
	return uint32(uint64(id) >> 32)
}

// Body is one record in the arena: either a top-level body or a part of one.
// A top-level body is its own parent and owns a list of part ids; a part has
// an empty part list and points back at its owner. Parts carry the kinematic
// state mirrored from the engine; the owner mirrors its first live part.
type Body struct {
	id    BodyID
	alive bool

	Label  Category
	Static bool

	// Mass is the part mass; on an owner it is the sum of its parts.
	Mass float64

	Position     cp.Vector
	Velocity     cp.Vector
	VelocityPrev cp.Vector
	Angle        float64
	Sleeping     bool

	// ShockAbsorbed is the cumulative impact damage counter. It only ever
	// grows for the lifetime of the record.
	ShockAbsorbed float64

	Parent BodyID
	Parts  []BodyID
}

func (b *Body) ID() BodyID { return b.id }

// IsCompound reports whether the body has more than one part.
func (b *Body) IsCompound() bool { return b != nil && len(b.Parts) > 1 }

// IsPart reports whether the record belongs to another body.
func (b *Body) IsPart() bool { return b != nil && b.Parent != b.id }

// PartList returns a copy of the part ids, safe to iterate while removing.
func (b *Body) PartList() []BodyID {
	if b == nil || len(b.Parts) == 0 {
		return nil
	}
	out := make([]BodyID, len(b.Parts))
	copy(out, b.Parts)
	return out
}

// World is the arena of all simulated body records. Bodies and parts live in
// one indexed table; parts reference their owner by index and owners hold an
// index list, so there is no pointer cycle between the two.
type World struct {
	bodies  []Body
	free    []BodyID
	removed []BodyID
}

func NewWorld() *World {
	return &World{}
}

func (w *World) alloc() BodyID {
	if n := len(w.free); n > 0 {
		old := w.free[n-1]
		w.free = w.free[:n-1]
		id := makeID(old.index(), old.gen()+1)
		w.bodies[old.index()] = Body{id: id, alive: true, Parent: id}
		return id
	}
	id := makeID(len(w.bodies), 0)
	w.bodies = append(w.bodies, Body{id: id, alive: true, Parent: id})
	return id
}

// NewBody allocates a top-level body with no parts yet.
func (w *World) NewBody(label Category, static bool) BodyID {
	if w == nil {
		return NoBody
	}
	id := w.alloc()
	b := &w.bodies[id]
	b.Label = label
	b.Static = static
	return id
}

// NewPart allocates a part under owner. The part inherits the owner's label
// and static flag; the owner's mass grows by the part mass.
func (w *World) NewPart(owner BodyID, mass float64) BodyID {
	ob := w.Body(owner)
	if ob == nil || ob.IsPart() {
		return NoBody
	}
	id := w.alloc()
	p := &w.bodies[id]
	p.Label = ob.Label
	p.Static = ob.Static
	p.Mass = mass
	p.Parent = owner
	ob = w.Body(owner) // alloc may have grown the slice
	ob.Parts = append(ob.Parts, id)
	ob.Mass += mass
	return id
}

// Body returns the live record for id, or nil. A handle from an earlier
// generation of the slot is dead even if the slot has been reused.
func (w *World) Body(id BodyID) *Body {
	i := id.index()
	if w == nil || i < 0 || i >= len(w.bodies) {
		return nil
	}
	b := &w.bodies[i]
	if !b.alive || b.id != id {
		return nil
	}
	return b
}

// Alive reports whether id refers to a live record.
func (w *World) Alive(id BodyID) bool { return w.Body(id) != nil }

// EachBody visits every live top-level body. Bodies removed mid-iteration
// are not revisited.
func (w *World) EachBody(f func(*Body)) {
	if w == nil || f == nil {
		return
	}
	for i := range w.bodies {
		b := &w.bodies[i]
		if !b.alive || b.IsPart() {
			continue
		}
		f(b)
	}
}

// EachPart visits every live part record.
func (w *World) EachPart(f func(*Body)) {
	if w == nil || f == nil {
		return
	}
	for i := range w.bodies {
		b := &w.bodies[i]
		if !b.alive || !b.IsPart() {
			continue
		}
		f(b)
	}
}

// Count returns the number of live top-level bodies with the given label.
func (w *World) Count(label Category) int {
	n := 0
	w.EachBody(func(b *Body) {
		if b.Label == label {
			n++
		}
	})
	return n
}

// Remove deletes a record. Removing a part detaches it from its owner and
// cascades to the owner once its last part is gone; removing a top-level
// body takes all of its parts with it.
func (w *World) Remove(id BodyID) {
	b := w.Body(id)
	if b == nil {
		return
	}
	if b.IsPart() {
		owner := w.Body(b.Parent)
		w.kill(id)
		if owner == nil {
			return
		}
		for i, pid := range owner.Parts {
			if pid == id {
				owner.Parts = append(owner.Parts[:i], owner.Parts[i+1:]...)
				break
			}
		}
		owner.Mass -= b.Mass
		if len(owner.Parts) == 0 {
			w.kill(owner.id)
		}
		return
	}
	for _, pid := range b.Parts {
		w.kill(pid)
	}
	b.Parts = b.Parts[:0]
	w.kill(id)
}

func (w *World) kill(id BodyID) {
	b := w.Body(id)
	if b == nil {
		return
	}
	b.alive = false
	w.removed = append(w.removed, id)
}

// Drain returns the ids removed since the last call so the engine adapter
// can tear down their physics state. Drained ids become reusable.
func (w *World) Drain() []BodyID {
	if w == nil || len(w.removed) == 0 {
		return nil
	}
	out := w.removed
	w.removed = nil
	w.free = append(w.free, out...)
	return out
}
