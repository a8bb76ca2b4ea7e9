package obj

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/knockdown/common"
	"github.com/milk9111/knockdown/prefabs"
	"github.com/milk9111/knockdown/sim"
)

func newTestWorld() (*PhysicsWorld, *sim.World) {
	world := sim.NewWorld()
	pw := NewPhysicsWorld(world, &sim.Rules{}, common.Gravity)
	return pw, world
}

func addFloor(pw *PhysicsWorld, y float64) sim.BodyID {
	owner := pw.NewBody(sim.CategoryGround, true)
	return pw.AddSegmentPart(owner, cp.Vector{X: 0, Y: y}, cp.Vector{X: common.BaseWidth, Y: y}, 2)
}

func stepFrames(pw *PhysicsWorld, n int) {
	for i := 0; i < n; i++ {
		pw.Step(common.StepDT)
	}
}

func TestPhysicsWorldSpawnAndTeardown(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 500)

	owner := pw.NewBody(sim.CategoryBlock, false)
	part := pw.AddBoxPart(owner, 400, 480, 40, 40, 2)
	if part == sim.NoBody {
		t.Fatalf("AddBoxPart failed")
	}
	if _, _, ok := pw.PartTransform(part); !ok {
		t.Fatalf("part has no transform")
	}

	body := pw.partBody[part]
	if body == nil || !pw.space.ContainsBody(body) {
		t.Fatalf("cp body missing from space")
	}

	world.Remove(owner)
	pw.Step(common.StepDT)

	if pw.space.ContainsBody(body) {
		t.Fatalf("cp body still in space after removal")
	}
	if _, ok := pw.partBody[part]; ok {
		t.Fatalf("part body mapping not cleaned up")
	}
	if _, _, ok := pw.PartTransform(part); ok {
		t.Fatalf("removed part still has a transform")
	}
}

func TestFallingBlockAccumulatesShock(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 500)

	owner := pw.NewBody(sim.CategoryBlock, false)
	part := pw.AddBoxPart(owner, 400, 300, 40, 40, 2)

	stepFrames(pw, 120)

	p := world.Body(part)
	if p == nil {
		t.Fatalf("block was removed during the drop")
	}
	if p.ShockAbsorbed <= 0 {
		t.Fatalf("block absorbed no shock from the floor impact")
	}
	if got := world.Body(owner).ShockAbsorbed; got < p.ShockAbsorbed {
		t.Fatalf("owner shock %v below part shock %v", got, p.ShockAbsorbed)
	}
}

func TestBlockKnockoutThroughStep(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 500)

	owner := pw.NewBody(sim.CategoryBlock, false)
	part := pw.AddBoxPart(owner, 400, 480, 40, 40, 2)

	world.Body(owner).ShockAbsorbed = sim.DefaultShockThreshold + 1
	pw.Step(common.StepDT)

	if world.Alive(owner) || world.Alive(part) {
		t.Fatalf("block past the shock threshold survived the step")
	}
}

func TestCompoundPartsShareAngle(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 500)

	owner := pw.NewBody(sim.CategoryBlock, false)
	p1 := pw.AddBoxPart(owner, 380, 460, 40, 40, 2)
	p2 := pw.AddBoxPart(owner, 420, 460, 40, 40, 2)
	pw.LinkParts(p1, p2)

	if !world.Body(owner).IsCompound() {
		t.Fatalf("owner should be a compound")
	}

	// knock one side so the pair tumbles
	pw.partBody[p2].SetVelocity(0, -150)
	pw.partBody[p2].SetAngularVelocity(3)

	stepFrames(pw, 90)

	a1 := pw.partBody[p1].Angle()
	a2 := pw.partBody[p2].Angle()
	if math.Abs(a1-a2) > 1e-9 {
		t.Fatalf("compound part angles diverged: %v vs %v", a1, a2)
	}
	_, recAngle, _ := pw.PartTransform(p1)
	if math.Abs(recAngle-a1) > 1e-9 {
		t.Fatalf("mirrored angle %v out of sync with engine %v", recAngle, a1)
	}
}

func TestSleepingProjectileCulled(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 500)

	owner := pw.NewBody(sim.CategoryProjectile, false)
	part := pw.AddCirclePart(owner, 400, 500-14, 14, 4)

	// long enough for the engine to put the resting body to sleep and for
	// the next pre-step pass to cull it
	stepFrames(pw, 600)

	if world.Alive(part) || world.Alive(owner) {
		t.Fatalf("settled projectile was not culled")
	}
	if _, ok := pw.partBody[part]; ok {
		t.Fatalf("culled projectile still mapped to a cp body")
	}
}

func TestProjectileAt(t *testing.T) {
	pw, _ := newTestWorld()
	addFloor(pw, 500)

	blockOwner := pw.NewBody(sim.CategoryBlock, false)
	pw.AddBoxPart(blockOwner, 600, 480, 40, 40, 2)

	projOwner := pw.NewBody(sim.CategoryProjectile, false)
	proj := pw.AddCirclePart(projOwner, 200, 400, 14, 4)

	if got := pw.ProjectileAt(cp.Vector{X: 200, Y: 400}, 10); got != proj {
		t.Fatalf("ProjectileAt = %d, want %d", got, proj)
	}
	if got := pw.ProjectileAt(cp.Vector{X: 600, Y: 480}, 10); got != sim.NoBody {
		t.Fatalf("ProjectileAt over a block = %d, want NoBody", got)
	}
}

func TestSlingshotLaunchCycle(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 640)

	spec := prefabs.SlingshotSpec{
		X: 220, Y: 460,
		ProjectileRadius: 14, ProjectileMass: 4,
		Ammo: 2, Stiffness: 60, Damping: 1.5,
	}
	s := NewSlingshot(pw, spec, 640)

	first := s.Loaded()
	if first == sim.NoBody {
		t.Fatalf("slingshot did not load")
	}
	if s.ShotsLeft() != 2 {
		t.Fatalf("ShotsLeft = %d, want 2", s.ShotsLeft())
	}

	// drag it nowhere near the release point: stays loaded
	s.Update(false)
	if s.Loaded() != first {
		t.Fatalf("slingshot released early")
	}

	// snap it past the anchor with the mouse let go: launch
	pw.partBody[first].SetPosition(cp.Vector{X: spec.X + launchPastDistance + 5, Y: spec.Y})
	pw.Step(common.StepDT)
	s.Update(false)
	if s.Loaded() != sim.NoBody {
		t.Fatalf("slingshot did not release")
	}
	if s.ShotsLeft() != 1 {
		t.Fatalf("ShotsLeft = %d, want 1", s.ShotsLeft())
	}

	// reload after the cooldown
	for i := 0; i < reloadFrames; i++ {
		s.Update(false)
	}
	second := s.Loaded()
	if second == sim.NoBody || second == first {
		t.Fatalf("slingshot did not reload a fresh projectile")
	}
	if !world.Alive(first) {
		t.Fatalf("launched projectile should still be flying")
	}
}

func TestDragGrabAndRelease(t *testing.T) {
	pw, _ := newTestWorld()
	addFloor(pw, 640)

	owner := pw.NewBody(sim.CategoryProjectile, false)
	proj := pw.AddCirclePart(owner, 300, 400, 14, 4)

	d := NewDrag(pw)
	in := &Input{MouseX: 300, MouseY: 400, MouseLeftPressed: true, MouseLeftHeld: true}
	d.Update(in)
	if !d.Dragging() {
		t.Fatalf("drag did not grab the projectile")
	}
	if d.target != proj {
		t.Fatalf("drag target = %d, want %d", d.target, proj)
	}

	in = &Input{MouseX: 280, MouseY: 420, MouseLeftHeld: true}
	d.Update(in)
	if !d.Dragging() {
		t.Fatalf("drag let go while the button was held")
	}

	// the button comes up while updates were suspended (pause), so there is
	// no release edge to see; the up state alone must let go
	in = &Input{MouseX: 250, MouseY: 450}
	d.Update(in)
	if d.Dragging() {
		t.Fatalf("drag did not let go with the button up")
	}
}

func TestStructureIgnoresRecycledIDs(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 640)

	st, err := BuildStructure(pw, prefabs.StructureSpec{
		Kind: "stack", X: 400, Y: 640, Rows: 1, Cols: 1,
		Block: prefabs.BlockSpec{Width: 36, Height: 36, Mass: 2},
	})
	if err != nil {
		t.Fatalf("build structure: %v", err)
	}
	if st.Standing() != 1 {
		t.Fatalf("Standing = %d, want 1", st.Standing())
	}

	blockOwner := world.Body(st.blocks[0].part).Parent
	world.Body(blockOwner).ShockAbsorbed = sim.DefaultShockThreshold + 1
	pw.Step(common.StepDT)
	if st.Standing() != 0 {
		t.Fatalf("knocked-out block still standing")
	}

	// the slingshot's projectile reuses the freed arena slots; the structure
	// must not count or draw the destroyed block through its stale ids
	s := NewSlingshot(pw, prefabs.SlingshotSpec{
		X: 220, Y: 460,
		ProjectileRadius: 14, ProjectileMass: 4,
		Ammo: 1, Stiffness: 60, Damping: 1.5,
	}, 640)
	if s.Loaded() == sim.NoBody {
		t.Fatalf("slingshot did not load")
	}
	if st.Standing() != 0 {
		t.Fatalf("destroyed block counted again after its slot was reused")
	}
	if _, _, ok := pw.PartTransform(st.blocks[0].part); ok {
		t.Fatalf("stale block id still resolves to a transform")
	}
}

func TestSlingshotLoadFailureLeavesNoOrphan(t *testing.T) {
	pw, world := newTestWorld()
	addFloor(pw, 640)

	// zero radius makes the part spawn fail
	s := NewSlingshot(pw, prefabs.SlingshotSpec{
		X: 220, Y: 460,
		ProjectileRadius: 0, ProjectileMass: 4,
		Ammo: 2, Stiffness: 60, Damping: 1.5,
	}, 640)

	if s.Loaded() != sim.NoBody {
		t.Fatalf("slingshot loaded with no projectile shape")
	}
	if n := world.Count(sim.CategoryProjectile); n != 0 {
		t.Fatalf("%d partless projectile owners left behind", n)
	}
}
