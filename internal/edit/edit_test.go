package edit

import (
	"testing"

	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/terrain"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

// plain hides Grid.Snapshot so the tracker falls back to its overlay.
type plain struct {
	terrain.Provider
}

func newGrid(t *testing.T) *terrain.Grid {
	t.Helper()
	g, err := terrain.NewGrid(9, 9, mathx.One, mathx.One)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	min, max := g.Extent()
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			g.SetHeights([]terrain.Coord{{X: x, Z: z}}, []float32{float32(x*3+z) * 0.37})
		}
	}
	return g
}

// pass runs one tool pass the way the editor does: record, then write.
func pass(tr *Tracker, g terrain.Provider, tool *tools.Tool, contact mathx.Vec3) {
	e := tools.ComputeEdits(tool, tools.Input{
		Live:      g,
		Reference: tr.Reference(),
		Brush:     brush.State{Radius: 2, Power: 0.75},
		Contact:   contact,
	})
	for _, c := range e.Coords {
		tr.Change(c)
	}
	if e.Mode == tools.Set {
		g.SetHeights(e.Coords, e.Values)
	} else {
		g.AdjustHeights(e.Coords, e.Values)
	}
	g.UpdateBounds()
}

func equalGrids(t *testing.T, got, want *terrain.Grid) {
	t.Helper()
	min, max := want.Extent()
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			c := terrain.Coord{X: x, Z: z}
			if got.HeightAt(c) != want.HeightAt(c) {
				t.Errorf("height at %v = %v, want %v", c, got.HeightAt(c), want.HeightAt(c))
			}
		}
	}
}

func TestTracker_ChangeIsIdempotent(t *testing.T) {
	g := newGrid(t)
	tr := NewTracker(g)
	tr.Start(false)

	c := terrain.Coord{X: 1, Z: 1}
	orig := g.HeightAt(c)
	tr.Change(c)
	g.SetHeights([]terrain.Coord{c}, []float32{42})
	tr.Change(c)

	if got, ok := tr.Original(c); !ok || got != orig {
		t.Errorf("Original = %v, %v; want %v", got, ok, orig)
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestHeightEdit_UndoRedoExact(t *testing.T) {
	g := newGrid(t)
	before := g.Snapshot()
	tr := NewTracker(g)
	tool := tools.New(tools.RaiseLower)

	tr.Start(false)
	for _, x := range []float32{-1, 0, 0.5, 1.5} {
		pass(tr, g, tool, mathx.Vec3{X: x, Z: x / 2})
	}
	after := g.Snapshot()
	op := tr.Commit()

	if op.Empty() {
		t.Fatal("expected a non-empty operation")
	}
	if tr.Active() || tr.Len() != 0 {
		t.Error("Commit should close the session")
	}

	op.Undo()
	equalGrids(t, g, before)
	op.Redo()
	equalGrids(t, g, after)
	op.Undo()
	equalGrids(t, g, before)
}

func TestTracker_EmptyCommit(t *testing.T) {
	g := newGrid(t)
	tr := NewTracker(g)
	tr.Start(false)
	pass(tr, g, tools.New(tools.Paint), mathx.Vec3{})

	op := tr.Commit()
	if !op.Empty() {
		t.Errorf("Paint gesture committed %d heights", op.Len())
	}
	op.Undo()
	op.Redo()
}

func TestTracker_Abort(t *testing.T) {
	g := newGrid(t)
	before := g.Snapshot()
	tr := NewTracker(g)

	tr.Start(false)
	pass(tr, g, tools.New(tools.Smooth), mathx.Vec3{})
	pass(tr, g, tools.New(tools.RaiseLower), mathx.Vec3{X: 1})
	tr.Abort()

	equalGrids(t, g, before)
	if tr.Active() || tr.Len() != 0 {
		t.Error("Abort should close the session")
	}
}

func TestTracker_Reference(t *testing.T) {
	tests := []struct {
		name     string
		provider func(*terrain.Grid) terrain.Provider
	}{
		{"grid snapshot", func(g *terrain.Grid) terrain.Provider { return g }},
		{"overlay", func(g *terrain.Grid) terrain.Provider { return plain{g} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t)
			before := g.Snapshot()
			p := tt.provider(g)
			tr := NewTracker(p)

			tr.Start(true)
			for i := 0; i < 3; i++ {
				pass(tr, p, tools.New(tools.RaiseLower), mathx.Vec3{})
			}

			ref := tr.Reference()
			min, max := before.Extent()
			for z := min.Z; z <= max.Z; z++ {
				for x := min.X; x <= max.X; x++ {
					c := terrain.Coord{X: x, Z: z}
					if ref.HeightAt(c) != before.HeightAt(c) {
						t.Fatalf("reference at %v = %v, want %v", c, ref.HeightAt(c), before.HeightAt(c))
					}
				}
			}
		})
	}
}

func TestTracker_ReferenceWithoutSnapshotIsLive(t *testing.T) {
	g := newGrid(t)
	tr := NewTracker(g)
	tr.Start(false)
	if tr.Reference() != terrain.Reader(g) {
		t.Error("Reference should be the live grid without a snapshot")
	}
}
