package obj

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/knockdown/common"
	"github.com/milk9111/knockdown/sim"
)

const (
	collisionTypeGround cp.CollisionType = iota + 1
	collisionTypeBlock
	collisionTypeProjectile
	collisionTypeAnchor
)

func collisionTypeFor(label sim.Category) cp.CollisionType {
	switch label {
	case sim.CategoryBlock:
		return collisionTypeBlock
	case sim.CategoryProjectile:
		return collisionTypeProjectile
	case sim.CategoryAnchor:
		return collisionTypeAnchor
	}
	return collisionTypeGround
}

// PhysicsWorld owns the Chipmunk space and mirrors it into the sim arena.
// Each sim part is backed by one cp body and shape; the hooks run against
// the mirrored records and the adapter applies their mutations back to the
// space between phases.
type PhysicsWorld struct {
	space *cp.Space
	world *sim.World
	hooks sim.StepHooks

	partBody    map[sim.BodyID]*cp.Body
	partShape   map[sim.BodyID]*cp.Shape
	shapeToPart map[*cp.Shape]sim.BodyID
	partJoints  map[sim.BodyID][]*cp.Constraint

	pending       []sim.ContactPair
	handlersReady bool
}

// NewPhysicsWorld creates a space with sleeping enabled and wires the
// collision handlers that feed the collision-start hook.
func NewPhysicsWorld(world *sim.World, hooks sim.StepHooks, gravity float64) *PhysicsWorld {
	if gravity == 0 {
		gravity = common.Gravity
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	space.SleepTimeThreshold = common.SleepTimeThreshold
	space.SetCollisionSlop(0.5)

	pw := &PhysicsWorld{
		space:       space,
		world:       world,
		hooks:       hooks,
		partBody:    make(map[sim.BodyID]*cp.Body),
		partShape:   make(map[sim.BodyID]*cp.Shape),
		shapeToPart: make(map[*cp.Shape]sim.BodyID),
		partJoints:  make(map[sim.BodyID][]*cp.Constraint),
	}
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// World returns the mirrored sim arena.
func (pw *PhysicsWorld) World() *sim.World {
	if pw == nil {
		return nil
	}
	return pw.world
}

func (pw *PhysicsWorld) setupHandlers() {
	if pw == nil || pw.handlersReady || pw.space == nil {
		return
	}
	types := []cp.CollisionType{
		collisionTypeGround,
		collisionTypeBlock,
		collisionTypeProjectile,
		collisionTypeAnchor,
	}
	for i, a := range types {
		for _, b := range types[i:] {
			if a == collisionTypeGround && b == collisionTypeGround {
				continue
			}
			handler := pw.space.NewCollisionHandler(a, b)
			handler.UserData = pw
			handler.BeginFunc = beginContact
		}
	}
	pw.handlersReady = true
}

func beginContact(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
	pw, ok := userData.(*PhysicsWorld)
	if !ok || pw == nil {
		return true
	}
	shapeA, shapeB := arb.Shapes()
	idA, okA := pw.shapeToPart[shapeA]
	idB, okB := pw.shapeToPart[shapeB]
	if !okA || !okB {
		return true
	}
	pw.pending = append(pw.pending, sim.ContactPair{A: idA, B: idB})
	return true
}

// NewBody allocates a top-level sim body with no parts yet.
func (pw *PhysicsWorld) NewBody(label sim.Category, static bool) sim.BodyID {
	if pw == nil {
		return sim.NoBody
	}
	return pw.world.NewBody(label, static)
}

func (pw *PhysicsWorld) newPartBody(owner sim.BodyID, mass, moment float64) (sim.BodyID, *cp.Body) {
	ob := pw.world.Body(owner)
	if ob == nil {
		return sim.NoBody, nil
	}
	id := pw.world.NewPart(owner, mass)
	if id == sim.NoBody {
		return sim.NoBody, nil
	}
	var body *cp.Body
	if ob.Static {
		body = cp.NewStaticBody()
	} else {
		body = cp.NewBody(mass, moment)
	}
	return id, body
}

func (pw *PhysicsWorld) register(id sim.BodyID, body *cp.Body, shape *cp.Shape) {
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.partBody[id] = body
	pw.partShape[id] = shape
	pw.shapeToPart[shape] = id
	if p := pw.world.Body(id); p != nil {
		p.Position = body.Position()
		p.Angle = body.Angle()
	}
}

// AddBoxPart adds a box part centered at (x, y) under owner.
func (pw *PhysicsWorld) AddBoxPart(owner sim.BodyID, x, y, w, h, mass float64) sim.BodyID {
	if pw == nil || pw.space == nil || w <= 0 || h <= 0 {
		return sim.NoBody
	}
	id, body := pw.newPartBody(owner, mass, cp.MomentForBox(mass, w, h))
	if body == nil {
		return sim.NoBody
	}
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewBox(body, w, h, 0)
	shape.SetFriction(0.8)
	shape.SetElasticity(0)
	shape.SetCollisionType(collisionTypeFor(pw.world.Body(id).Label))
	pw.register(id, body, shape)
	return id
}

// AddCirclePart adds a circle part centered at (x, y) under owner.
func (pw *PhysicsWorld) AddCirclePart(owner sim.BodyID, x, y, radius, mass float64) sim.BodyID {
	if pw == nil || pw.space == nil || radius <= 0 {
		return sim.NoBody
	}
	id, body := pw.newPartBody(owner, mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	if body == nil {
		return sim.NoBody
	}
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(0.6)
	shape.SetElasticity(0.2)
	shape.SetCollisionType(collisionTypeFor(pw.world.Body(id).Label))
	pw.register(id, body, shape)
	return id
}

// AddSegmentPart adds a static segment part under owner, used for the floor.
func (pw *PhysicsWorld) AddSegmentPart(owner sim.BodyID, a, b cp.Vector, radius float64) sim.BodyID {
	if pw == nil || pw.space == nil {
		return sim.NoBody
	}
	ob := pw.world.Body(owner)
	if ob == nil || !ob.Static {
		return sim.NoBody
	}
	id, body := pw.newPartBody(owner, 0, 0)
	if body == nil {
		return sim.NoBody
	}
	shape := cp.NewSegment(body, a, b, radius)
	shape.SetFriction(0.9)
	shape.SetElasticity(0)
	shape.SetCollisionType(collisionTypeFor(ob.Label))
	pw.register(id, body, shape)
	return id
}

// LinkParts rigidly joins two parts of one compound body: a pivot joint at
// b's center keeps them attached, a gear joint locks relative rotation. The
// post-step hook corrects whatever drift the solver leaves.
func (pw *PhysicsWorld) LinkParts(a, b sim.BodyID) {
	if pw == nil || pw.space == nil {
		return
	}
	bodyA := pw.partBody[a]
	bodyB := pw.partBody[b]
	if bodyA == nil || bodyB == nil {
		return
	}
	pivot := cp.NewPivotJoint(bodyA, bodyB, bodyB.Position())
	gear := cp.NewGearJoint(bodyA, bodyB, 0, 1)
	pw.space.AddConstraint(pivot)
	pw.space.AddConstraint(gear)
	pw.trackConstraint(a, pivot)
	pw.trackConstraint(a, gear)
	pw.trackConstraint(b, pivot)
	pw.trackConstraint(b, gear)
}

// AttachSpring connects a part to a fixed world anchor with a damped spring
// and returns the constraint, the slingshot elastic.
func (pw *PhysicsWorld) AttachSpring(part sim.BodyID, anchor cp.Vector, stiffness, damping float64) *cp.Constraint {
	if pw == nil || pw.space == nil {
		return nil
	}
	body := pw.partBody[part]
	if body == nil {
		return nil
	}
	spring := cp.NewDampedSpring(pw.space.StaticBody, body, anchor, cp.Vector{}, 0, stiffness, damping)
	pw.space.AddConstraint(spring)
	pw.trackConstraint(part, spring)
	return spring
}

func (pw *PhysicsWorld) trackConstraint(part sim.BodyID, c *cp.Constraint) {
	if c == nil {
		return
	}
	pw.partJoints[part] = append(pw.partJoints[part], c)
}

// RemoveConstraint detaches a constraint if it is still in the space.
func (pw *PhysicsWorld) RemoveConstraint(c *cp.Constraint) {
	if pw == nil || pw.space == nil || c == nil {
		return
	}
	if pw.space.ContainsConstraint(c) {
		pw.space.RemoveConstraint(c)
	}
}

// PartTransform returns the mirrored position and angle of a part.
func (pw *PhysicsWorld) PartTransform(id sim.BodyID) (cp.Vector, float64, bool) {
	if pw == nil {
		return cp.Vector{}, 0, false
	}
	p := pw.world.Body(id)
	if p == nil {
		return cp.Vector{}, 0, false
	}
	return p.Position, p.Angle, true
}

// ProjectileAt returns the projectile part near a point, for mouse grabbing.
func (pw *PhysicsWorld) ProjectileAt(point cp.Vector, maxDist float64) sim.BodyID {
	if pw == nil || pw.space == nil {
		return sim.NoBody
	}
	info := pw.space.PointQueryNearest(point, maxDist, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return sim.NoBody
	}
	id, ok := pw.shapeToPart[info.Shape]
	if !ok {
		return sim.NoBody
	}
	p := pw.world.Body(id)
	if p == nil || p.Label != sim.CategoryProjectile {
		return sim.NoBody
	}
	return id
}

// Step drives one fixed step of the phase sequence: mirror engine state,
// pre-step hook, integrate (collecting new contacts), collision-start hook,
// mirror again, post-step hook, write the hook's corrections back. Removals
// requested by a hook are torn down before the next phase begins.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil {
		return
	}

	pw.syncFromSpace()
	if pw.hooks != nil {
		pw.hooks.OnPreStep(pw.world)
	}
	pw.applyRemovals()

	pw.pending = pw.pending[:0]
	pw.space.Step(dt)

	if pw.hooks != nil {
		pw.hooks.OnCollisionStart(pw.world, pw.pending)
	}

	pw.syncFromSpace()
	if pw.hooks != nil {
		pw.hooks.OnPostStep(pw.world)
	}
	pw.writeBackAngles()
	pw.applyRemovals()
}

func (pw *PhysicsWorld) syncFromSpace() {
	for id, body := range pw.partBody {
		p := pw.world.Body(id)
		if p == nil {
			continue
		}
		p.Position = body.Position()
		p.Velocity = body.Velocity()
		p.Angle = body.Angle()
		p.Sleeping = body.IsSleeping()
	}
	// an owner mirrors its root part, same as a compound tracking the
	// part it was built around
	pw.world.EachBody(func(b *sim.Body) {
		if len(b.Parts) == 0 {
			return
		}
		if p := pw.world.Body(b.Parts[0]); p != nil {
			b.Position = p.Position
			b.Velocity = p.Velocity
			b.Angle = p.Angle
			b.Sleeping = p.Sleeping
		}
	})
}

func (pw *PhysicsWorld) writeBackAngles() {
	pw.world.EachBody(func(b *sim.Body) {
		if !b.IsCompound() {
			return
		}
		for _, pid := range b.Parts {
			p := pw.world.Body(pid)
			body := pw.partBody[pid]
			if p == nil || body == nil {
				continue
			}
			if body.Angle() != p.Angle {
				body.SetAngle(p.Angle)
			}
		}
	})
}

func (pw *PhysicsWorld) applyRemovals() {
	for _, id := range pw.world.Drain() {
		for _, c := range pw.partJoints[id] {
			pw.RemoveConstraint(c)
		}
		delete(pw.partJoints, id)

		if shape := pw.partShape[id]; shape != nil {
			if pw.space.ContainsShape(shape) {
				pw.space.RemoveShape(shape)
			}
			delete(pw.shapeToPart, shape)
			delete(pw.partShape, id)
		}
		if body := pw.partBody[id]; body != nil {
			// wake whatever was resting on the removed body
			body.Activate()
			if pw.space.ContainsBody(body) {
				pw.space.RemoveBody(body)
			}
			delete(pw.partBody, id)
		}
	}
}
