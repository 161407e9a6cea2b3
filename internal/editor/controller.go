// Package editor drives brush gestures: it owns the tools and the brush,
// runs a tool pass for every input event and hands finished gestures to the
// undo history.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-editor/internal/brush"
	"github.com/Faultbox/midgard-editor/internal/edit"
	"github.com/Faultbox/midgard-editor/internal/history"
	"github.com/Faultbox/midgard-editor/internal/tasks"
	"github.com/Faultbox/midgard-editor/internal/terrain"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

var (
	// ErrGestureActive is returned when a gesture is started while another
	// one is open, or history is touched mid-gesture.
	ErrGestureActive = errors.New("gesture already active")
	// ErrNoGesture is returned by update, finish and cancel without a gesture.
	ErrNoGesture = errors.New("no active gesture")
)

// History is the undo stack a controller commits to.
type History interface {
	history.Executor
	Undo() error
	Redo() error
}

// EventType tells what a history event reports.
type EventType int

// Event types.
const (
	Committed EventType = iota
	Undone
	Redone
)

func (t EventType) String() string {
	switch t {
	case Committed:
		return "committed"
	case Undone:
		return "undone"
	case Redone:
		return "redone"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is delivered to listeners on the foreground queue once the history
// has been updated.
type Event struct {
	Type EventType
	Tool tools.Kind
	// Op is the committed operation. Nil for undo and redo.
	Op *edit.HeightEdit
	// Err is set when an undo or redo had nothing to do.
	Err error
}

// Listener receives history events.
type Listener func(Event)

// Options configures a controller.
type Options struct {
	Brush brush.State
	// RollbackOnCancel restores the touched heights when a gesture is
	// cancelled. Otherwise the live edits stay without an undo entry.
	RollbackOnCancel bool
	// SkipEmptyCommits drops gestures that changed nothing.
	SkipEmptyCommits bool
	Logger           *zap.Logger
}

// DefaultOptions returns the stock controller settings.
func DefaultOptions() Options {
	return Options{
		Brush:            brush.State{Radius: 5, Power: 1},
		RollbackOnCancel: true,
		SkipEmptyCommits: true,
	}
}

// Status is a snapshot of the controller state.
type Status struct {
	Tool   tools.Kind
	Brush  brush.State
	Active bool
	Passes int
}

// Controller is the gesture state machine. Its methods are safe for
// concurrent use; passes run on the calling goroutine.
type Controller struct {
	mu        sync.Mutex
	grid      terrain.Provider
	tracker   *edit.Tracker
	history   History
	sched     tasks.Scheduler
	log       *zap.Logger
	opts      Options
	tools     map[tools.Kind]*tools.Tool
	current   tools.Kind
	button    tools.Button
	passes    int
	listeners []Listener

	// pending counts history work queued on the background scheduler.
	pendingMu   sync.Mutex
	pendingDone *sync.Cond
	pending     int
}

// New returns a controller editing grid. The raise/lower tool is selected.
func New(grid terrain.Provider, hist History, sched tasks.Scheduler, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		grid:    grid,
		tracker: edit.NewTracker(grid),
		history: hist,
		sched:   sched,
		log:     log,
		opts:    opts,
		tools:   make(map[tools.Kind]*tools.Tool),
		current: tools.RaiseLower,
	}
	c.pendingDone = sync.NewCond(&c.pendingMu)
	for _, k := range tools.Kinds() {
		c.tools[k] = tools.New(k)
	}
	return c
}

// Subscribe registers fn for history events.
func (c *Controller) Subscribe(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// OnEditStart opens a gesture at point and applies the first pass. It waits
// for queued history work first so the gesture records settled heights.
func (c *Controller) OnEditStart(button tools.Button, point mathx.Vec3) error {
	// History work is reserved under c.mu, so once the lock is held with
	// nothing pending no undo can slip in before the gesture opens.
	for {
		c.Wait()
		c.mu.Lock()
		if c.idle() {
			break
		}
		c.mu.Unlock()
	}
	defer c.mu.Unlock()

	if c.tracker.Active() {
		return ErrGestureActive
	}
	tool := c.tools[c.current]
	c.tracker.Start(tool.NeedsSnapshot())
	c.button = button
	c.passes = 0

	c.log.Debug("gesture started",
		zap.Stringer("tool", c.current),
		zap.Float32("x", point.X), zap.Float32("z", point.Z))

	c.pass(point)
	return nil
}

// OnEditUpdate applies one pass of the open gesture at point.
func (c *Controller) OnEditUpdate(point mathx.Vec3) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tracker.Active() {
		return ErrNoGesture
	}
	c.pass(point)
	return nil
}

// OnEditFinish applies a last pass, closes the gesture and queues its
// operation for the history. Listeners hear about it on the foreground queue.
func (c *Controller) OnEditFinish(point mathx.Vec3) error {
	c.mu.Lock()
	if !c.tracker.Active() {
		c.mu.Unlock()
		return ErrNoGesture
	}
	c.pass(point)

	op := c.tracker.Commit()
	if op.Empty() && c.opts.SkipEmptyCommits {
		c.log.Debug("empty gesture dropped", zap.Stringer("tool", c.current), zap.Int("passes", c.passes))
		c.mu.Unlock()
		return nil
	}

	c.log.Debug("gesture committed",
		zap.Stringer("tool", c.current),
		zap.Int("passes", c.passes),
		zap.Int("coords", op.Len()))

	ev := Event{Type: Committed, Tool: c.current, Op: op}
	listeners := c.snapshotListeners()
	c.addPending(1)
	c.mu.Unlock()

	return c.background(func() {
		c.history.Execute(op)
		c.notify(listeners, ev)
	})
}

// Cancel closes the open gesture without an undo entry.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel()
}

func (c *Controller) cancel() error {
	if !c.tracker.Active() {
		return ErrNoGesture
	}
	if c.opts.RollbackOnCancel {
		c.tracker.Abort()
	} else {
		c.tracker.Commit()
	}
	c.log.Debug("gesture cancelled", zap.Stringer("tool", c.current), zap.Bool("rollback", c.opts.RollbackOnCancel))
	return nil
}

// Undo queues an undo of the latest operation.
func (c *Controller) Undo() error {
	return c.step(Undone, c.history.Undo)
}

// Redo queues a redo of the latest undone operation.
func (c *Controller) Redo() error {
	return c.step(Redone, c.history.Redo)
}

func (c *Controller) step(typ EventType, fn func() error) error {
	c.mu.Lock()
	if c.tracker.Active() {
		c.mu.Unlock()
		return ErrGestureActive
	}
	kind := c.current
	listeners := c.snapshotListeners()
	c.addPending(1)
	c.mu.Unlock()

	return c.background(func() {
		err := fn()
		if err != nil {
			c.log.Debug("history step skipped", zap.Stringer("step", typ), zap.Error(err))
		}
		c.notify(listeners, Event{Type: typ, Tool: kind, Err: err})
	})
}

// SetTool selects a tool, cancelling any open gesture.
func (c *Controller) SetTool(kind tools.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tools[kind]; !ok {
		return fmt.Errorf("%w: %v", tools.ErrUnknownTool, kind)
	}
	if c.tracker.Active() {
		_ = c.cancel()
	}
	c.current = kind
	return nil
}

// CurrentTool returns the selected tool kind.
func (c *Controller) CurrentTool() tools.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Tool returns the long-lived tool of the given kind, or nil. Edit its
// parameters through UpdateTool when other goroutines drive gestures.
func (c *Controller) Tool(kind tools.Kind) *tools.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tools[kind]
}

// UpdateTool runs fn on the tool of the given kind under the controller lock.
func (c *Controller) UpdateTool(kind tools.Kind, fn func(*tools.Tool)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tools[kind]
	if !ok {
		return fmt.Errorf("%w: %v", tools.ErrUnknownTool, kind)
	}
	fn(t)
	return nil
}

// SetSlopeMarkers places the slope tool's two markers.
func (c *Controller) SetSlopeMarkers(a, b mathx.Vec3) {
	_ = c.UpdateTool(tools.Slope, func(t *tools.Tool) { t.SetMarkers(a, b) })
}

// Brush returns the brush state.
func (c *Controller) Brush() brush.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Brush
}

// SetBrush replaces the brush state. It takes effect on the next pass.
func (c *Controller) SetBrush(b brush.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Brush = b
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Tool:   c.current,
		Brush:  c.opts.Brush,
		Active: c.tracker.Active(),
		Passes: c.passes,
	}
}

// Wait blocks until queued history work has run.
func (c *Controller) Wait() {
	c.pendingMu.Lock()
	for c.pending > 0 {
		c.pendingDone.Wait()
	}
	c.pendingMu.Unlock()
}

// pass computes the tool edits at point, records the touched coordinates
// and writes them in one batch.
func (c *Controller) pass(point mathx.Vec3) {
	c.passes++
	e := tools.ComputeEdits(c.tools[c.current], tools.Input{
		Live:      c.grid,
		Reference: c.tracker.Reference(),
		Brush:     c.opts.Brush,
		Contact:   point,
		Button:    c.button,
	})
	if e.Len() == 0 {
		return
	}

	for _, coord := range e.Coords {
		c.tracker.Change(coord)
	}
	if e.Mode == tools.Set {
		c.grid.SetHeights(e.Coords, e.Values)
	} else {
		c.grid.AdjustHeights(e.Coords, e.Values)
	}
	c.grid.UpdateBounds()
}

// background queues fn on the background scheduler. The caller has already
// counted it as pending history work with addPending while holding c.mu.
func (c *Controller) background(fn func()) error {
	err := c.sched.Background(func() {
		defer c.addPending(-1)
		fn()
	})
	if err != nil {
		c.addPending(-1)
		return fmt.Errorf("queue history work: %w", err)
	}
	return nil
}

func (c *Controller) idle() bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	return c.pending == 0
}

func (c *Controller) addPending(n int) {
	c.pendingMu.Lock()
	c.pending += n
	if c.pending == 0 {
		c.pendingDone.Broadcast()
	}
	c.pendingMu.Unlock()
}

// snapshotListeners copies the listener list. The caller holds c.mu.
func (c *Controller) snapshotListeners() []Listener {
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

// notify delivers ev to listeners on the foreground scheduler.
func (c *Controller) notify(listeners []Listener, ev Event) {
	err := c.sched.Foreground(func() {
		for _, fn := range listeners {
			fn(ev)
		}
	})
	if err != nil {
		c.log.Warn("history event dropped", zap.Stringer("event", ev.Type), zap.Error(err))
	}
}
