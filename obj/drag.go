package obj

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/knockdown/sim"
)

const (
	grabRadius     = 48.0
	dragMaxForce   = 50000.0
	dragSmoothness = 0.25
)

// Drag implements the mouse-drag constraint: a kinematic body chases the
// cursor and a pivot joint drags the grabbed projectile along. Only
// projectiles are grabbable.
type Drag struct {
	pw     *PhysicsWorld
	mouse  *cp.Body
	joint  *cp.Constraint
	target sim.BodyID
}

func NewDrag(pw *PhysicsWorld) *Drag {
	// the mouse body is never added to the space; it exists to anchor the
	// drag joint and is moved by hand each frame
	return &Drag{
		pw:     pw,
		mouse:  cp.NewKinematicBody(),
		target: sim.NoBody,
	}
}

// Dragging reports whether a projectile is currently being held.
func (d *Drag) Dragging() bool {
	return d != nil && d.joint != nil
}

// Update moves the mouse body toward the cursor and grabs or releases the
// projectile under it.
func (d *Drag) Update(in *Input) {
	if d == nil || d.pw == nil || in == nil {
		return
	}

	cursor := cp.Vector{X: in.MouseX, Y: in.MouseY}
	next := d.mouse.Position().Lerp(cursor, dragSmoothness)
	d.mouse.SetVelocityVector(next.Sub(d.mouse.Position()).Mult(60.0))
	d.mouse.SetPosition(next)

	if d.joint != nil && !d.pw.World().Alive(d.target) {
		d.release()
	}

	// release on button state, not the release edge: the edge is lost when
	// the button comes up on a frame this never ran, e.g. while paused
	switch {
	case in.MouseLeftPressed && d.joint == nil:
		d.grab(cursor)
	case d.joint != nil && !in.MouseLeftHeld:
		d.release()
	}
}

func (d *Drag) grab(cursor cp.Vector) {
	id := d.pw.ProjectileAt(cursor, grabRadius)
	if id == sim.NoBody {
		return
	}
	body := d.pw.partBody[id]
	if body == nil {
		return
	}
	d.mouse.SetPosition(cursor)
	d.mouse.SetVelocity(0, 0)

	joint := cp.NewPivotJoint2(d.mouse, body, cp.Vector{}, body.WorldToLocal(cursor))
	joint.SetMaxForce(dragMaxForce)
	joint.SetErrorBias(math.Pow(1.0-0.15, 60))
	d.pw.space.AddConstraint(joint)
	d.pw.trackConstraint(id, joint)

	d.joint = joint
	d.target = id
}

func (d *Drag) release() {
	d.pw.RemoveConstraint(d.joint)
	d.joint = nil
	d.target = sim.NoBody
}
