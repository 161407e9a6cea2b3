// Package edit records the heights a gesture touches and turns them into an
// undoable operation.
package edit

import (
	"github.com/Faultbox/midgard-editor/internal/terrain"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

// Tracker is the edit session of one gesture. Call Change for a coordinate
// before writing to it; the first call records its original height.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	provider terrain.Provider
	order    []terrain.Coord
	original map[terrain.Coord]float32
	snapshot terrain.Reader
	active   bool
}

// NewTracker returns a tracker over provider.
func NewTracker(provider terrain.Provider) *Tracker {
	return &Tracker{
		provider: provider,
		original: make(map[terrain.Coord]float32),
	}
}

// Start opens a session. With snapshot set, the grid as it is now stays
// readable through Reference for the whole session.
func (t *Tracker) Start(snapshot bool) {
	t.reset()
	t.active = true
	if !snapshot {
		return
	}
	if s, ok := t.provider.(interface{ Snapshot() *terrain.Grid }); ok {
		t.snapshot = s.Snapshot()
		return
	}
	t.snapshot = &overlay{t}
}

// Active reports whether a session is open.
func (t *Tracker) Active() bool {
	return t.active
}

// Change records the current height at c unless it is already recorded.
func (t *Tracker) Change(c terrain.Coord) {
	if _, ok := t.original[c]; ok {
		return
	}
	t.original[c] = t.provider.HeightAt(c)
	t.order = append(t.order, c)
}

// Len returns the number of recorded coordinates.
func (t *Tracker) Len() int {
	return len(t.order)
}

// Original returns the recorded height at c.
func (t *Tracker) Original(c terrain.Coord) (float32, bool) {
	h, ok := t.original[c]
	return h, ok
}

// Reference returns the grid as it was when the session started, or the
// live grid when Start was not asked for a snapshot.
func (t *Tracker) Reference() terrain.Reader {
	if t.snapshot != nil {
		return t.snapshot
	}
	return t.provider
}

// Commit closes the session and returns the operation that moves every
// recorded coordinate between its original and current height.
func (t *Tracker) Commit() *HeightEdit {
	op := &HeightEdit{
		provider: t.provider,
		coords:   t.order,
		before:   make([]float32, len(t.order)),
		after:    make([]float32, len(t.order)),
	}
	for i, c := range t.order {
		op.before[i] = t.original[c]
		op.after[i] = t.provider.HeightAt(c)
	}
	t.order = nil
	t.reset()
	return op
}

// Abort closes the session and writes the original heights back.
func (t *Tracker) Abort() {
	if len(t.order) > 0 {
		heights := make([]float32, len(t.order))
		for i, c := range t.order {
			heights[i] = t.original[c]
		}
		t.provider.SetHeights(t.order, heights)
		t.provider.UpdateBounds()
	}
	t.reset()
}

func (t *Tracker) reset() {
	t.order = t.order[:0]
	clear(t.original)
	t.snapshot = nil
	t.active = false
}

// overlay reads recorded originals over the live grid. Every write goes
// through Change first, so this is the grid as it was at Start.
type overlay struct {
	t *Tracker
}

func (o *overlay) HeightAt(c terrain.Coord) float32 {
	if h, ok := o.t.original[c]; ok {
		return h
	}
	return o.t.provider.HeightAt(c)
}

func (o *overlay) WorldScale() mathx.Vec3 { return o.t.provider.WorldScale() }
func (o *overlay) LocalScale() mathx.Vec3 { return o.t.provider.LocalScale() }
