package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidObstacle is returned when an obstacle violates its shape invariant.
var ErrInvalidObstacle = errors.New("geometry: invalid obstacle")

// Kind tags the obstacle variant.
type Kind uint8

const (
	KindBox Kind = iota
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Obstacle is the closed set {Box, Sphere}. The unexported method keeps
// other packages from adding shapes.
type Obstacle interface {
	Kind() Kind
	// Contains is boundary inclusive.
	Contains(p Point3) bool
	// Bounds returns the axis-aligned box enclosing the obstacle.
	Bounds() Box
	obstacle()
}

// Box is an axis-aligned box. Min must not exceed Max on any axis.
type Box struct {
	Min Point3
	Max Point3
}

// NewBox validates the corners and returns the box.
func NewBox(lo, hi Point3) (Box, error) {
	for i := 0; i < 3; i++ {
		if lo[i] > hi[i] {
			return Box{}, fmt.Errorf("%w: box min %v exceeds max %v on axis %d", ErrInvalidObstacle, lo, hi, i)
		}
	}
	return Box{Min: lo, Max: hi}, nil
}

func (b Box) Kind() Kind { return KindBox }

func (b Box) Contains(p Point3) bool {
	return Within(p, b.Min, b.Max)
}

func (b Box) Bounds() Box { return b }

// Center returns the midpoint of the box.
func (b Box) Center() Point3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the per-axis extent of the box.
func (b Box) Size() Point3 {
	return b.Max.Sub(b.Min)
}

func (Box) obstacle() {}

// Sphere is a ball with a non-negative radius.
type Sphere struct {
	Center Point3
	Radius float64
}

// NewSphere validates the radius and returns the sphere.
func NewSphere(center Point3, radius float64) (Sphere, error) {
	if radius < 0 {
		return Sphere{}, fmt.Errorf("%w: negative sphere radius %g", ErrInvalidObstacle, radius)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

func (s Sphere) Kind() Kind { return KindSphere }

func (s Sphere) Contains(p Point3) bool {
	return Distance(s.Center, p) <= s.Radius
}

func (s Sphere) Bounds() Box {
	r := Point3{s.Radius, s.Radius, s.Radius}
	return Box{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (Sphere) obstacle() {}
