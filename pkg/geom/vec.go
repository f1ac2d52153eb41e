// Package geom provides the vector and segment math used by the wall
// topology pipeline. Walls live in a Y-up world: the floor plan is the
// XZ plane and wall height runs along Y. Junction math is inherently
// planar, so most helpers project to r2 and work there.
package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// Vec3 is a point or vector in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Planar projects v onto the floor plane. The r2 Y coordinate carries
// the world Z.
func (v Vec3) Planar() r2.Point {
	return r2.Point{X: v.X, Y: v.Z}
}

// FromPlanar lifts a floor-plane point back into world space at height y.
func FromPlanar(p r2.Point, y float64) Vec3 {
	return Vec3{X: p.X, Y: y, Z: p.Y}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec3) Vec3 {
	return a.Add(b).Scale(0.5)
}

// Direction returns the planar unit vector pointing from `from` to `to`.
// Returns the zero point if the two coincide in plan view.
func Direction(from, to Vec3) r2.Point {
	d := to.Planar().Sub(from.Planar())
	if d.Norm() == 0 {
		return r2.Point{}
	}
	return d.Normalize()
}

// AngleBetween returns the angle in radians between two planar unit
// vectors. The dot product is clamped to [-1, 1] before the arccos so
// floating-point overshoot cannot produce NaN.
func AngleBetween(a, b r2.Point) float64 {
	return math.Acos(Clamp(a.Dot(b), -1, 1))
}

// YawDegrees returns the rotation about the world Y axis, in degrees,
// that maps the +X axis onto the given planar direction.
func YawDegrees(dir r2.Point) float64 {
	return math.Atan2(-dir.Y, dir.X) * 180 / math.Pi
}

// ClosestOnSegment returns the point on segment [a, b] closest to p,
// measured in plan view. Heights are interpolated between a and b.
func ClosestOnSegment(p, a, b Vec3) Vec3 {
	ab := b.Planar().Sub(a.Planar())
	denom := ab.Dot(ab)
	if denom == 0 {
		return a
	}
	t := Clamp(p.Planar().Sub(a.Planar()).Dot(ab)/denom, 0, 1)
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// DistanceToSegment returns the planar distance from p to segment [a, b].
func DistanceToSegment(p, a, b Vec3) float64 {
	c := ClosestOnSegment(p, a, b)
	return p.Planar().Sub(c.Planar()).Norm()
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
