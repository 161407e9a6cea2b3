// Package math provides the small float32 vector toolkit used by the editor.
package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector. For terrain work Y carries the world Z axis.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// LengthSquared returns the squared magnitude.
func (v Vec2) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// Project returns the parameter t of the projection of p onto the segment
// v->end, where t=0 is v and t=1 is end. ok is false for a degenerate segment.
func (v Vec2) Project(end, p Vec2) (t float32, ok bool) {
	dir := end.Sub(v)
	l2 := dir.LengthSquared()
	if l2 == 0 {
		return 0, false
	}
	return p.Sub(v).Dot(dir) / l2, true
}
