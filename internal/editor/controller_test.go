package editor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/history"
	"github.com/Faultbox/midgard-editor/internal/tasks"
	"github.com/Faultbox/midgard-editor/internal/terrain"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

type fixture struct {
	grid   *terrain.Grid
	stack  *history.Stack
	ctrl   *Controller
	events []Event
}

func newFixture(t *testing.T, sched tasks.Scheduler, mutate func(*Options)) *fixture {
	t.Helper()
	g, err := terrain.NewGrid(17, 17, mathx.One, mathx.One)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	opts := DefaultOptions()
	opts.Brush = brush.State{Radius: 2, Power: 1}
	if mutate != nil {
		mutate(&opts)
	}
	f := &fixture{grid: g, stack: history.NewStack(0)}
	f.ctrl = New(g, f.stack, sched, opts)
	f.ctrl.Subscribe(func(ev Event) { f.events = append(f.events, ev) })
	return f
}

func sameHeights(t *testing.T, got, want *terrain.Grid) {
	t.Helper()
	min, max := want.Extent()
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			c := terrain.Coord{X: x, Z: z}
			if got.HeightAt(c) != want.HeightAt(c) {
				t.Fatalf("height at %v = %v, want %v", c, got.HeightAt(c), want.HeightAt(c))
			}
		}
	}
}

func stroke(t *testing.T, c *Controller, points ...mathx.Vec3) {
	t.Helper()
	if err := c.OnEditStart(tools.Primary, points[0]); err != nil {
		t.Fatalf("OnEditStart: %v", err)
	}
	for _, p := range points[1 : len(points)-1] {
		if err := c.OnEditUpdate(p); err != nil {
			t.Fatalf("OnEditUpdate: %v", err)
		}
	}
	if err := c.OnEditFinish(points[len(points)-1]); err != nil {
		t.Fatalf("OnEditFinish: %v", err)
	}
}

func TestController_GestureCommitUndoRedo(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	before := f.grid.Snapshot()

	stroke(t, f.ctrl, mathx.Vec3{}, mathx.Vec3{X: 1}, mathx.Vec3{X: 2})
	after := f.grid.Snapshot()

	// Start, one update and finish are three passes over the center.
	if got := f.grid.HeightAt(terrain.Coord{}); got <= 1 {
		t.Errorf("center = %v, want above 1", got)
	}
	if len(f.events) != 1 || f.events[0].Type != Committed || f.events[0].Op == nil {
		t.Fatalf("events = %+v, want one commit", f.events)
	}
	if f.events[0].Tool != tools.RaiseLower {
		t.Errorf("event tool = %v", f.events[0].Tool)
	}
	if undo, _ := f.stack.Counts(); undo != 1 {
		t.Errorf("undo count = %d, want 1", undo)
	}

	if err := f.ctrl.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	sameHeights(t, f.grid, before)
	if err := f.ctrl.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	sameHeights(t, f.grid, after)

	if len(f.events) != 3 || f.events[1].Type != Undone || f.events[2].Type != Redone {
		t.Errorf("events = %+v", f.events)
	}
}

func TestController_StateErrors(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	c := f.ctrl

	if err := c.OnEditUpdate(mathx.Vec3{}); !errors.Is(err, ErrNoGesture) {
		t.Errorf("update without gesture: %v", err)
	}
	if err := c.OnEditFinish(mathx.Vec3{}); !errors.Is(err, ErrNoGesture) {
		t.Errorf("finish without gesture: %v", err)
	}
	if err := c.Cancel(); !errors.Is(err, ErrNoGesture) {
		t.Errorf("cancel without gesture: %v", err)
	}

	if err := c.OnEditStart(tools.Primary, mathx.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if err := c.OnEditStart(tools.Primary, mathx.Vec3{}); !errors.Is(err, ErrGestureActive) {
		t.Errorf("second start: %v", err)
	}
	if err := c.Undo(); !errors.Is(err, ErrGestureActive) {
		t.Errorf("undo mid-gesture: %v", err)
	}
	if !c.Status().Active {
		t.Error("Status().Active = false during gesture")
	}
}

func TestController_UndoEmptyHistory(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	if err := f.ctrl.Undo(); err != nil {
		t.Fatal(err)
	}
	if len(f.events) != 1 || !errors.Is(f.events[0].Err, history.ErrNothingToUndo) {
		t.Errorf("events = %+v", f.events)
	}
}

func TestController_Cancel(t *testing.T) {
	tests := []struct {
		name     string
		rollback bool
	}{
		{"rollback", true},
		{"keep edits", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tasks.Sync(), func(o *Options) { o.RollbackOnCancel = tt.rollback })
			before := f.grid.Snapshot()

			if err := f.ctrl.OnEditStart(tools.Primary, mathx.Vec3{}); err != nil {
				t.Fatal(err)
			}
			_ = f.ctrl.OnEditUpdate(mathx.Vec3{X: 1})
			if err := f.ctrl.Cancel(); err != nil {
				t.Fatalf("Cancel: %v", err)
			}

			if tt.rollback {
				sameHeights(t, f.grid, before)
			} else if f.grid.HeightAt(terrain.Coord{}) == 0 {
				t.Error("edits should stay without rollback")
			}
			if undo, _ := f.stack.Counts(); undo != 0 {
				t.Errorf("cancelled gesture reached history")
			}
			if len(f.events) != 0 {
				t.Errorf("events = %+v", f.events)
			}
		})
	}
}

func TestController_EmptyCommit(t *testing.T) {
	tests := []struct {
		name   string
		skip   bool
		events int
	}{
		{"skipped", true, 0},
		{"kept", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tasks.Sync(), func(o *Options) { o.SkipEmptyCommits = tt.skip })
			if err := f.ctrl.SetTool(tools.Paint); err != nil {
				t.Fatal(err)
			}
			stroke(t, f.ctrl, mathx.Vec3{}, mathx.Vec3{})

			if len(f.events) != tt.events {
				t.Fatalf("events = %d, want %d", len(f.events), tt.events)
			}
			if undo, _ := f.stack.Counts(); undo != tt.events {
				t.Errorf("undo count = %d, want %d", undo, tt.events)
			}
		})
	}
}

func TestController_SetToolCancels(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	before := f.grid.Snapshot()

	if err := f.ctrl.OnEditStart(tools.Primary, mathx.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if err := f.ctrl.SetTool(tools.Smooth); err != nil {
		t.Fatal(err)
	}
	sameHeights(t, f.grid, before)
	if f.ctrl.CurrentTool() != tools.Smooth || f.ctrl.Status().Active {
		t.Errorf("status = %+v", f.ctrl.Status())
	}
	if err := f.ctrl.SetTool(tools.Kind(42)); !errors.Is(err, tools.ErrUnknownTool) {
		t.Errorf("SetTool(42) err = %v", err)
	}
}

func TestController_SecondaryLowers(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	if err := f.ctrl.OnEditStart(tools.Secondary, mathx.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if got := f.grid.HeightAt(terrain.Coord{}); got != -1 {
		t.Errorf("center = %v, want -1", got)
	}
}

func TestController_LevelPrecision(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	_ = f.ctrl.UpdateTool(tools.Level, func(tool *tools.Tool) {
		tool.Level.Precision = true
		tool.Level.DesiredHeight = 3
	})
	_ = f.ctrl.SetTool(tools.Level)
	stroke(t, f.ctrl, mathx.Vec3{}, mathx.Vec3{})

	if got := f.grid.HeightAt(terrain.Coord{X: 1, Z: 1}); got != 3 {
		t.Errorf("height = %v, want 3", got)
	}
}

func TestController_SlopeUsesGestureStart(t *testing.T) {
	f := newFixture(t, tasks.Sync(), nil)
	f.grid.SetHeights([]terrain.Coord{{X: -4}, {X: 4}}, []float32{0, 8})
	f.ctrl.SetSlopeMarkers(mathx.Vec3{X: -4}, mathx.Vec3{X: 4})
	_ = f.ctrl.UpdateTool(tools.Slope, func(tool *tools.Tool) { tool.Slope.Precision = true })
	_ = f.ctrl.SetTool(tools.Slope)
	f.ctrl.SetBrush(brush.State{Radius: 1, Power: 1})

	// The stroke runs over the upper marker; later passes must still read
	// its original height.
	stroke(t, f.ctrl, mathx.Vec3{X: 4}, mathx.Vec3{X: 3}, mathx.Vec3{X: 2})

	for x := 2; x <= 4; x++ {
		want := float32(x + 4)
		if got := f.grid.HeightAt(terrain.Coord{X: x}); got != want {
			t.Errorf("height at x=%d = %v, want %v", x, got, want)
		}
	}
}

func TestController_AsyncQueues(t *testing.T) {
	worker := tasks.NewWorker("history", 8, nil)
	defer worker.Close()
	pump := tasks.NewPump()
	f := newFixture(t, tasks.Queues{Back: worker, Front: pump}, nil)

	stroke(t, f.ctrl, mathx.Vec3{}, mathx.Vec3{})
	f.ctrl.Wait()

	if len(f.events) != 0 {
		t.Fatal("listeners ran before the foreground queue was drained")
	}
	if undo, _ := f.stack.Counts(); undo != 1 {
		t.Errorf("undo count = %d, want 1", undo)
	}
	if n := pump.Drain(); n != 1 {
		t.Errorf("Drain ran %d tasks, want 1", n)
	}
	if len(f.events) != 1 || f.events[0].Type != Committed {
		t.Errorf("events = %+v", f.events)
	}
}

// gate holds posted tasks until release runs them.
type gate struct {
	mu    sync.Mutex
	tasks []func()
}

func (g *gate) Post(task func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tasks = append(g.tasks, task)
	return nil
}

func (g *gate) release() {
	g.mu.Lock()
	tasks := g.tasks
	g.tasks = nil
	g.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func TestController_StartWaitsForHistory(t *testing.T) {
	back := &gate{}
	f := newFixture(t, tasks.Queues{Back: back, Front: tasks.Inline{}}, nil)

	stroke(t, f.ctrl, mathx.Vec3{}, mathx.Vec3{})
	if err := f.ctrl.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	started := make(chan error, 1)
	go func() { started <- f.ctrl.OnEditStart(tools.Primary, mathx.Vec3{}) }()

	select {
	case err := <-started:
		t.Fatalf("gesture started with history work queued: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	back.release()
	select {
	case err := <-started:
		if err != nil {
			t.Fatalf("OnEditStart: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnEditStart did not return after history work ran")
	}

	// Commit and undo settled the center back to 0 before the first pass.
	if got := f.grid.HeightAt(terrain.Coord{}); got != 1 {
		t.Errorf("center = %v, want 1", got)
	}
	if orig, ok := f.ctrl.tracker.Original(terrain.Coord{}); !ok || orig != 0 {
		t.Errorf("recorded original = %v, %v, want 0", orig, ok)
	}
}

func TestController_StartUndoRace(t *testing.T) {
	worker := tasks.NewWorker("history", 8, nil)
	defer worker.Close()
	f := newFixture(t, tasks.Queues{Back: worker, Front: tasks.Inline{}}, nil)
	before := f.grid.Snapshot()

	for range 50 {
		stroke(t, f.ctrl, mathx.Vec3{}, mathx.Vec3{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.ctrl.Undo()
		}()
		if err := f.ctrl.OnEditStart(tools.Primary, mathx.Vec3{}); err != nil {
			t.Fatalf("OnEditStart: %v", err)
		}
		if err := f.ctrl.Cancel(); err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		wg.Wait()
		f.ctrl.Wait()

		// Undo either ran before the gesture or was refused during it; the
		// rolled back gesture must not resurrect undone heights.
		if undo, _ := f.stack.Counts(); undo == 0 {
			sameHeights(t, f.grid, before)
		} else if err := f.ctrl.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
		f.ctrl.Wait()
		sameHeights(t, f.grid, before)
	}
}
