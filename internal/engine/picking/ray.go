// Package picking turns a view ray into the terrain contact point the brush
// tools work from.
package picking

import (
	gomath "math"

	"github.com/Faultbox/midgard-editor/internal/terrain"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/chewxy/math32"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mathx.Vec3
	Direction mathx.Vec3 // Normalized direction
}

// NewRay returns a ray with a normalized direction.
func NewRay(origin, direction mathx.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mathx.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// BoundsAABB converts terrain bounds to a box.
func BoundsAABB(b terrain.Bounds) AABB {
	return AABB{Min: b.Min, Max: b.Max}
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if math32.Abs(r.Direction.Y) < 0.001 {
		return 0, 0, false // Ray parallel to plane
	}

	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return 0, 0, false // Intersection behind ray origin
	}

	p := r.At(t)
	return p.X, p.Z, true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the entry distance, or the exit distance when the ray starts inside.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < box.Min[axis] || origin[axis] > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - origin[axis]) / dir[axis]
		t2 := (box.Max[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Surface is a height field the ray can hit.
type Surface interface {
	Bounds() terrain.Bounds
	// InterpolatedHeight returns the world height at (x, z), NaN outside.
	InterpolatedHeight(x, z float32) float32
}

// bisectSteps refines a crossing found by the march.
const bisectSteps = 16

// IntersectTerrain marches the ray across the surface in steps of step world
// units, up to maxDist, and refines the first crossing by bisection.
func (r Ray) IntersectTerrain(s Surface, maxDist, step float32) (mathx.Vec3, bool) {
	if step <= 0 || maxDist <= 0 {
		return mathx.Vec3{}, false
	}

	// Skip straight to the box, where the march can hit anything at all.
	start := float32(0)
	box := BoundsAABB(s.Bounds())
	if !box.contains(r.Origin) {
		t, hit := r.IntersectAABB(box)
		if !hit || t > maxDist {
			return mathx.Vec3{}, false
		}
		// Back off one step so a flat box still sees the ray from above.
		start = max(0, t-step)
	}

	above := func(t float32) (bool, bool) {
		p := r.At(t)
		h := s.InterpolatedHeight(p.X, p.Z)
		if math32.IsNaN(h) {
			return false, false
		}
		return p.Y >= h, true
	}

	prev := start
	prevAbove, prevOK := above(prev)
	for t := start + step; t <= maxDist+step; t += step {
		t = min(t, maxDist)
		cur, ok := above(t)
		if ok && prevOK && prevAbove && !cur {
			return r.At(r.bisect(above, prev, t)), true
		}
		if ok && !prevOK && !cur {
			// Entered the grid already below the surface.
			return r.At(t), true
		}
		prev, prevAbove, prevOK = t, cur, ok
		if t == maxDist {
			break
		}
	}
	return mathx.Vec3{}, false
}

func (r Ray) bisect(above func(float32) (bool, bool), lo, hi float32) float32 {
	for i := 0; i < bisectSteps; i++ {
		mid := (lo + hi) / 2
		if a, ok := above(mid); ok && a {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

func (b AABB) contains(p mathx.Vec3) bool {
	return p.X >= b.Min[0] && p.X <= b.Max[0] &&
		p.Y >= b.Min[1] && p.Y <= b.Max[1] &&
		p.Z >= b.Min[2] && p.Z <= b.Max[2]
}
