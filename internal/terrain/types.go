// Package terrain provides the editable heightmap grid the brush tools write to.
package terrain

import (
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/chewxy/math32"
)

// Coord is a discrete sample index into the heightmap. Grids are centered on
// the terrain origin, so negative indices are valid.
type Coord struct {
	X, Z int
}

// Add returns the coordinate offset by dx, dz samples.
func (c Coord) Add(dx, dz int) Coord {
	return Coord{c.X + dx, c.Z + dz}
}

// World returns the world-space XZ position of the sample for the given
// terrain world scale.
func (c Coord) World(worldScale mathx.Vec3) mathx.Vec2 {
	p := mathx.Vec3{X: float32(c.X), Z: float32(c.Z)}.Mul(worldScale)
	return mathx.Vec2{X: p.X, Y: p.Z}
}

// CoordAt returns the sample nearest to a world-space position.
func CoordAt(p mathx.Vec3, worldScale mathx.Vec3) Coord {
	return Coord{
		X: int(math32.Floor(p.X/worldScale.X + 0.5)),
		Z: int(math32.Floor(p.Z/worldScale.Z + 0.5)),
	}
}

// Reader is the read-only side of a height provider.
type Reader interface {
	// HeightAt returns the local height at c, or NaN when c has no data.
	HeightAt(c Coord) float32
	WorldScale() mathx.Vec3
	LocalScale() mathx.Vec3
}

// Provider is the mutable heightmap surface the editor writes through.
type Provider interface {
	Reader
	// SetHeights writes absolute local heights.
	SetHeights(coords []Coord, heights []float32)
	// AdjustHeights adds local deltas.
	AdjustHeights(coords []Coord, deltas []float32)
	// UpdateBounds recomputes the bounding volume after a batch write.
	UpdateBounds()
}

// Bounds holds the world-space axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}
