package sim

import "testing"

func spawnSimple(w *World, label Category, mass float64) (BodyID, BodyID) {
	owner := w.NewBody(label, false)
	part := w.NewPart(owner, mass)
	return owner, part
}

func TestWorldLifecycle(t *testing.T) {
	cases := []struct {
		name       string
		parts      int
		removePart bool
	}{
		{"single_part_cascade", 1, true},
		{"compound_keeps_owner", 3, true},
		{"remove_owner", 2, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			owner := w.NewBody(CategoryBlock, false)
			parts := make([]BodyID, 0, c.parts)
			for i := 0; i < c.parts; i++ {
				parts = append(parts, w.NewPart(owner, 2))
			}
			if got := w.Body(owner).Mass; got != float64(c.parts)*2 {
				t.Fatalf("owner mass = %v, want %v", got, float64(c.parts)*2)
			}

			if c.removePart {
				w.Remove(parts[0])
				if w.Alive(parts[0]) {
					t.Fatalf("removed part still alive")
				}
				if c.parts == 1 {
					if w.Alive(owner) {
						t.Fatalf("owner should cascade away with its last part")
					}
				} else {
					if !w.Alive(owner) {
						t.Fatalf("owner should survive while parts remain")
					}
					if got := len(w.Body(owner).Parts); got != c.parts-1 {
						t.Fatalf("owner has %d parts, want %d", got, c.parts-1)
					}
				}
			} else {
				w.Remove(owner)
				if w.Alive(owner) {
					t.Fatalf("owner still alive after removal")
				}
				for _, pid := range parts {
					if w.Alive(pid) {
						t.Fatalf("part %d still alive after owner removal", pid)
					}
				}
			}
		})
	}
}

func TestWorldDrain(t *testing.T) {
	w := NewWorld()
	owner, part := spawnSimple(w, CategoryProjectile, 1)

	if got := w.Drain(); got != nil {
		t.Fatalf("expected nothing to drain, got %v", got)
	}

	w.Remove(part)
	drained := w.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected part and owner drained, got %v", drained)
	}
	seen := map[BodyID]bool{}
	for _, id := range drained {
		seen[id] = true
	}
	if !seen[owner] || !seen[part] {
		t.Fatalf("drained %v, want both %d and %d", drained, owner, part)
	}
	if got := w.Drain(); got != nil {
		t.Fatalf("second drain should be empty, got %v", got)
	}
}

func TestWorldStaleIDsStayDead(t *testing.T) {
	w := NewWorld()
	blockOwner, blockPart := spawnSimple(w, CategoryBlock, 2)

	w.Remove(blockOwner)
	w.Drain()

	// the next spawn reuses the freed slots
	projOwner, projPart := spawnSimple(w, CategoryProjectile, 4)
	if w.Body(projOwner) == nil || w.Body(projPart) == nil {
		t.Fatalf("fresh records should be alive")
	}
	if projOwner == blockOwner || projPart == blockPart {
		t.Fatalf("reused slot handed out an identical id")
	}

	// handles to the removed block must not come back to life on reuse
	if w.Alive(blockOwner) || w.Alive(blockPart) {
		t.Fatalf("stale ids report alive after their slots were recycled")
	}
	if b := w.Body(blockPart); b != nil {
		t.Fatalf("stale part id resolved to a record with label %v", b.Label)
	}
}

func TestWorldEachBodySkipsPartsAndDead(t *testing.T) {
	w := NewWorld()
	a, _ := spawnSimple(w, CategoryBlock, 1)
	b, _ := spawnSimple(w, CategoryBlock, 1)
	spawnSimple(w, CategoryGround, 0)

	w.Remove(b)

	var visited []BodyID
	w.EachBody(func(body *Body) {
		visited = append(visited, body.ID())
	})
	if len(visited) != 2 {
		t.Fatalf("visited %v, want 2 live top-level bodies", visited)
	}
	for _, id := range visited {
		if id == b {
			t.Fatalf("visited removed body %d", b)
		}
	}
	if w.Count(CategoryBlock) != 1 {
		t.Fatalf("Count(Block) = %d, want 1", w.Count(CategoryBlock))
	}
	if !w.Alive(a) {
		t.Fatalf("body %d should still be alive", a)
	}
}

func TestWorldPartInheritsOwner(t *testing.T) {
	w := NewWorld()
	owner := w.NewBody(CategoryGround, true)
	part := w.NewPart(owner, 0)

	p := w.Body(part)
	if p == nil {
		t.Fatalf("part not alive")
	}
	if p.Label != CategoryGround || !p.Static {
		t.Fatalf("part did not inherit label/static: %v static=%v", p.Label, p.Static)
	}
	if !p.IsPart() || p.Parent != owner {
		t.Fatalf("part parent = %d, want %d", p.Parent, owner)
	}
	if w.Body(owner).IsPart() {
		t.Fatalf("owner should be its own parent")
	}

	if got := w.NewPart(part, 1); got != NoBody {
		t.Fatalf("parts must not own parts, got %d", got)
	}
}
