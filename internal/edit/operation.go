package edit

import "github.com/Faultbox/midgard-editor/internal/terrain"

// HeightEdit is a committed gesture: the touched coordinates with their
// heights before and after. Redo and Undo replay the stored heights in one
// batch write each.
type HeightEdit struct {
	provider terrain.Provider
	coords   []terrain.Coord
	before   []float32
	after    []float32
}

// Empty reports whether the operation changes nothing.
func (e *HeightEdit) Empty() bool {
	return len(e.coords) == 0
}

// Len returns the number of coordinates the operation covers.
func (e *HeightEdit) Len() int {
	return len(e.coords)
}

// Coords returns the covered coordinates in the order they were first touched.
func (e *HeightEdit) Coords() []terrain.Coord {
	return e.coords
}

// Before returns the original heights, parallel to Coords.
func (e *HeightEdit) Before() []float32 {
	return e.before
}

// After returns the committed heights, parallel to Coords.
func (e *HeightEdit) After() []float32 {
	return e.after
}

// Redo writes the committed heights.
func (e *HeightEdit) Redo() {
	e.write(e.after)
}

// Undo writes the original heights.
func (e *HeightEdit) Undo() {
	e.write(e.before)
}

func (e *HeightEdit) write(heights []float32) {
	if len(e.coords) == 0 {
		return
	}
	e.provider.SetHeights(e.coords, heights)
	e.provider.UpdateBounds()
}
