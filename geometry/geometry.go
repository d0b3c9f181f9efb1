// Package geometry holds the vector helpers and obstacle predicates used by
// the planner. All functions are pure.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point3 is a point (or displacement) in world space.
type Point3 = mgl64.Vec3

// P is shorthand for building a Point3.
func P(x, y, z float64) Point3 {
	return Point3{x, y, z}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point3) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Clamp clamps p into [lo, hi] per axis.
func Clamp(p, lo, hi Point3) Point3 {
	return Point3{
		math.Min(math.Max(p[0], lo[0]), hi[0]),
		math.Min(math.Max(p[1], lo[1]), hi[1]),
		math.Min(math.Max(p[2], lo[2]), hi[2]),
	}
}

// Within reports whether lo <= p <= hi on every axis.
func Within(p, lo, hi Point3) bool {
	return lo[0] <= p[0] && p[0] <= hi[0] &&
		lo[1] <= p[1] && p[1] <= hi[1] &&
		lo[2] <= p[2] && p[2] <= hi[2]
}
