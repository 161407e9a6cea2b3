package terrain

import (
	"errors"
	"fmt"
	"sync"

	mathx "github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/chewxy/math32"
)

// ErrInvalidSize is returned when a grid would have no samples.
var ErrInvalidSize = errors.New("invalid grid size")

// Grid is an in-memory heightmap of Width x Depth samples centered on the
// origin. All methods are safe for concurrent use.
type Grid struct {
	mu      sync.RWMutex
	width   int
	depth   int
	halfX   int
	halfZ   int
	heights []float32

	worldScale mathx.Vec3
	localScale mathx.Vec3
	bounds     Bounds
}

// NewGrid creates a flat grid of width x depth samples.
func NewGrid(width, depth int, worldScale, localScale mathx.Vec3) (*Grid, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, depth)
	}
	g := &Grid{
		width:      width,
		depth:      depth,
		halfX:      (width - 1) / 2,
		halfZ:      (depth - 1) / 2,
		heights:    make([]float32, width*depth),
		worldScale: worldScale,
		localScale: localScale,
	}
	g.UpdateBounds()
	return g, nil
}

// Size returns the number of samples along X and Z.
func (g *Grid) Size() (width, depth int) {
	return g.width, g.depth
}

// Extent returns the smallest and largest valid coordinates.
func (g *Grid) Extent() (min, max Coord) {
	min = Coord{-g.halfX, -g.halfZ}
	max = Coord{g.width - 1 - g.halfX, g.depth - 1 - g.halfZ}
	return min, max
}

// Contains reports whether c addresses a sample of the grid.
func (g *Grid) Contains(c Coord) bool {
	_, ok := g.index(c)
	return ok
}

func (g *Grid) index(c Coord) (int, bool) {
	x := c.X + g.halfX
	z := c.Z + g.halfZ
	if x < 0 || z < 0 || x >= g.width || z >= g.depth {
		return 0, false
	}
	return z*g.width + x, true
}

// HeightAt implements Reader.
func (g *Grid) HeightAt(c Coord) float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.index(c)
	if !ok {
		return math32.NaN()
	}
	return g.heights[i]
}

// SetHeights implements Provider. Coordinates outside the grid are ignored.
func (g *Grid) SetHeights(coords []Coord, heights []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range coords {
		if idx, ok := g.index(c); ok && i < len(heights) {
			g.heights[idx] = heights[i]
		}
	}
}

// AdjustHeights implements Provider. Coordinates outside the grid and NaN
// deltas are ignored.
func (g *Grid) AdjustHeights(coords []Coord, deltas []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range coords {
		if i >= len(deltas) || math32.IsNaN(deltas[i]) {
			continue
		}
		if idx, ok := g.index(c); ok {
			g.heights[idx] += deltas[i]
		}
	}
}

// Fill sets every sample to h.
func (g *Grid) Fill(h float32) {
	g.mu.Lock()
	for i := range g.heights {
		g.heights[i] = h
	}
	g.mu.Unlock()
	g.UpdateBounds()
}

// WorldScale implements Reader.
func (g *Grid) WorldScale() mathx.Vec3 {
	return g.worldScale
}

// LocalScale implements Reader.
func (g *Grid) LocalScale() mathx.Vec3 {
	return g.localScale
}

// UpdateBounds implements Provider.
func (g *Grid) UpdateBounds() {
	g.mu.Lock()
	defer g.mu.Unlock()

	minH, maxH := float32(0), float32(0)
	for i, h := range g.heights {
		if i == 0 || h < minH {
			minH = h
		}
		if i == 0 || h > maxH {
			maxH = h
		}
	}

	min, max := Coord{-g.halfX, -g.halfZ}, Coord{g.width - 1 - g.halfX, g.depth - 1 - g.halfZ}
	lo, hi := min.World(g.worldScale), max.World(g.worldScale)
	g.bounds = Bounds{
		Min: [3]float32{lo.X, minH * g.worldScale.Y, lo.Y},
		Max: [3]float32{hi.X, maxH * g.worldScale.Y, hi.Y},
	}
}

// Bounds returns the bounding box computed by the last UpdateBounds.
func (g *Grid) Bounds() Bounds {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bounds
}

// Snapshot returns a deep copy of the grid.
func (g *Grid) Snapshot() *Grid {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cp := &Grid{
		width:      g.width,
		depth:      g.depth,
		halfX:      g.halfX,
		halfZ:      g.halfZ,
		heights:    make([]float32, len(g.heights)),
		worldScale: g.worldScale,
		localScale: g.localScale,
		bounds:     g.bounds,
	}
	copy(cp.heights, g.heights)
	return cp
}

// InterpolatedHeight returns the bilinearly interpolated world-space height
// at world position (x, z), or NaN outside the grid.
func (g *Grid) InterpolatedHeight(x, z float32) float32 {
	fx := x / g.worldScale.X
	fz := z / g.worldScale.Z

	c := Coord{int(math32.Floor(fx)), int(math32.Floor(fz))}
	tx := fx - float32(c.X)
	tz := fz - float32(c.Z)

	h00 := g.HeightAt(c)
	if math32.IsNaN(h00) {
		return h00
	}
	h10 := g.HeightAt(c.Add(1, 0))
	h01 := g.HeightAt(c.Add(0, 1))
	h11 := g.HeightAt(c.Add(1, 1))

	// Sample on the far edge: fall back to the nearest valid corner.
	if math32.IsNaN(h10) {
		h10 = h00
	}
	if math32.IsNaN(h01) {
		h01 = h00
	}
	if math32.IsNaN(h11) {
		h11 = h10
	}

	south := mathx.Lerp(h00, h10, tx)
	north := mathx.Lerp(h01, h11, tx)
	return mathx.Lerp(south, north, tz) * g.worldScale.Y
}
