// Package brush holds the computational brush: its parameters and the radial
// footprint every height tool shares.
package brush

import (
	"github.com/Faultbox/midgard-editor/internal/terrain"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/chewxy/math32"
)

// MinScale is the smallest terrain scale component used when converting the
// brush radius to grid steps. Smaller (or zero) components are clamped to it.
const MinScale = 1e-3

// State is the brush configuration read by the tools. Color is a display
// attribute for the host's brush gizmo and takes no part in computation.
type State struct {
	Radius float32 `yaml:"radius" json:"radius"`
	Power  float32 `yaml:"power" json:"power"`
	Color  uint32  `yaml:"color" json:"color"`
}

// Contains reports whether an offset from the brush center lies inside a disc
// of the given radius.
func Contains(dx, dz, radius float32) bool {
	return dx*dx+dz*dz <= radius*radius
}

// Falloff returns the radial weight of an offset: 1 at the center, 0 at and
// beyond the rim.
func Falloff(dx, dz, radius float32) float32 {
	if radius <= 0 {
		return 0
	}
	w := 1 - math32.Sqrt(dx*dx+dz*dz)/radius
	if w < 0 {
		return 0
	}
	return w
}

// Sample is one grid coordinate covered by the brush, with its world-space
// offset from the contact point.
type Sample struct {
	Coord  terrain.Coord
	DX, DZ float32
	// StepX and StepZ are the sample's index offset from the center cell.
	StepX, StepZ int
}

// Footprint returns every grid sample within radius of contact. The square
// scanned has a half side of radius / worldScale grid steps per axis.
func Footprint(contact mathx.Vec3, radius float32, worldScale mathx.Vec3) []Sample {
	if radius <= 0 {
		return nil
	}
	scale := worldScale.ClampMin(MinScale)

	stepsX := int(radius / math32.Abs(scale.X))
	stepsZ := int(radius / math32.Abs(scale.Z))
	center := terrain.CoordAt(contact, scale)

	samples := make([]Sample, 0, (2*stepsX+1)*(2*stepsZ+1))
	for z := -stepsZ; z <= stepsZ; z++ {
		for x := -stepsX; x <= stepsX; x++ {
			c := center.Add(x, z)
			p := c.World(scale)
			dx, dz := p.X-contact.X, p.Y-contact.Z
			if !Contains(dx, dz, radius) {
				continue
			}
			samples = append(samples, Sample{Coord: c, DX: dx, DZ: dz, StepX: x, StepZ: z})
		}
	}
	return samples
}
