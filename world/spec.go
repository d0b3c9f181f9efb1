package world

import (
	"errors"
	"fmt"

	"github.com/qwertyBBeers/motion-planning/geometry"
)

// Spec is the serialisable description of a world.
type Spec struct {
	Bounds    BoundsSpec     `json:"bounds" yaml:"bounds"`
	Obstacles []ObstacleSpec `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
}

type BoundsSpec struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

// ObstacleSpec carries exactly one of Box or Sphere.
type ObstacleSpec struct {
	Box    *BoxSpec    `json:"box,omitempty" yaml:"box,omitempty"`
	Sphere *SphereSpec `json:"sphere,omitempty" yaml:"sphere,omitempty"`
}

type BoxSpec struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

type SphereSpec struct {
	Center [3]float64 `json:"center" yaml:"center"`
	Radius float64    `json:"radius" yaml:"radius"`
}

// Build validates the spec and constructs the world.
func (s Spec) Build() (*World, error) {
	obstacles := make([]geometry.Obstacle, 0, len(s.Obstacles))
	for i, obs := range s.Obstacles {
		o, err := obs.build()
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		obstacles = append(obstacles, o)
	}
	return New(s.Bounds.Min, s.Bounds.Max, obstacles...)
}

func (obs ObstacleSpec) build() (geometry.Obstacle, error) {
	switch {
	case obs.Box != nil && obs.Sphere != nil:
		return nil, errors.New("obstacle sets both box and sphere")
	case obs.Box != nil:
		return geometry.NewBox(obs.Box.Min, obs.Box.Max)
	case obs.Sphere != nil:
		return geometry.NewSphere(obs.Sphere.Center, obs.Sphere.Radius)
	default:
		return nil, errors.New("obstacle sets neither box nor sphere")
	}
}

// Describe converts a world back into its spec.
func Describe(w *World) Spec {
	s := Spec{
		Bounds:    BoundsSpec{Min: w.boundsMin, Max: w.boundsMax},
		Obstacles: make([]ObstacleSpec, 0, len(w.obstacles)),
	}
	for _, o := range w.obstacles {
		switch o := o.(type) {
		case geometry.Box:
			s.Obstacles = append(s.Obstacles, ObstacleSpec{Box: &BoxSpec{Min: o.Min, Max: o.Max}})
		case geometry.Sphere:
			s.Obstacles = append(s.Obstacles, ObstacleSpec{Sphere: &SphereSpec{Center: o.Center, Radius: o.Radius}})
		}
	}
	return s
}
