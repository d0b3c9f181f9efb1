// Package worldgen builds random worlds and samples free points in them.
package worldgen

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/world"
)

// RandomWorld describes how obstacles are scattered. Obstacles are placed
// fully inside the bounds and may overlap each other.
type RandomWorld struct {
	BoundsMin     geometry.Point3 `json:"bounds_min" yaml:"bounds_min"`
	BoundsMax     geometry.Point3 `json:"bounds_max" yaml:"bounds_max"`
	ObstacleCount int             `json:"obstacle_count" yaml:"obstacle_count"`
	// SizeRange bounds the box edge length and the sphere diameter.
	SizeRange [2]float64 `json:"size_range" yaml:"size_range"`
	// SphereRatio is the probability that an obstacle is a sphere.
	SphereRatio float64 `json:"sphere_ratio" yaml:"sphere_ratio"`
	// MaxTries bounds placement attempts per obstacle and free-point draws.
	MaxTries int `json:"max_tries" yaml:"max_tries"`
}

// Default returns a 10×10×10 world with 15 obstacles.
func Default() RandomWorld {
	return RandomWorld{
		BoundsMin:     geometry.P(0, 0, 0),
		BoundsMax:     geometry.P(10, 10, 10),
		ObstacleCount: 15,
		SizeRange:     [2]float64{0.5, 2.0},
		SphereRatio:   0.3,
		MaxTries:      200,
	}
}

// Generate draws a world from src. An obstacle whose drawn size never fits
// the bounds within MaxTries attempts is skipped. Invalid bounds are
// reported before anything is drawn.
func (r RandomWorld) Generate(src rand.Source) (*world.World, error) {
	if _, err := world.New(r.BoundsMin, r.BoundsMax); err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	extent := r.BoundsMax.Sub(r.BoundsMin)
	obstacles := make([]geometry.Obstacle, 0, r.ObstacleCount)
	for n := 0; n < r.ObstacleCount; n++ {
		for try := 0; try < r.MaxTries; try++ {
			size := uniform(src, r.SizeRange[0], r.SizeRange[1])
			if uniform(src, 0, 1) < r.SphereRatio {
				radius := size * 0.5
				if !fits(extent, size) {
					continue
				}
				center := r.samplePoint(src, radius, radius)
				obstacles = append(obstacles, geometry.Sphere{Center: center, Radius: radius})
			} else {
				if !fits(extent, size) {
					continue
				}
				corner := r.samplePoint(src, 0, size)
				obstacles = append(obstacles, geometry.Box{Min: corner, Max: corner.Add(geometry.P(size, size, size))})
			}
			break
		}
	}
	return world.New(r.BoundsMin, r.BoundsMax, obstacles...)
}

// SampleFreePoint draws uniform points until one is collision free. After
// MaxTries misses it falls back to the world's minimum corner.
func (r RandomWorld) SampleFreePoint(w *world.World, src rand.Source) geometry.Point3 {
	lo, hi := w.BoundsMin(), w.BoundsMax()
	for try := 0; try < r.MaxTries; try++ {
		p := geometry.P(
			uniform(src, lo[0], hi[0]),
			uniform(src, lo[1], hi[1]),
			uniform(src, lo[2], hi[2]),
		)
		if !w.Collides(p) {
			return p
		}
	}
	return lo
}

// SampleLineSegment returns two independently sampled free points.
func (r RandomWorld) SampleLineSegment(w *world.World, src rand.Source) (geometry.Point3, geometry.Point3) {
	a := r.SampleFreePoint(w, src)
	b := r.SampleFreePoint(w, src)
	return a, b
}

// samplePoint draws a point in [min+lo, max-hi] per axis.
func (r RandomWorld) samplePoint(src rand.Source, lo, hi float64) geometry.Point3 {
	return geometry.P(
		uniform(src, r.BoundsMin[0]+lo, r.BoundsMax[0]-hi),
		uniform(src, r.BoundsMin[1]+lo, r.BoundsMax[1]-hi),
		uniform(src, r.BoundsMin[2]+lo, r.BoundsMax[2]-hi),
	)
}

func fits(extent geometry.Point3, size float64) bool {
	return size <= extent[0] && size <= extent[1] && size <= extent[2]
}

func uniform(src rand.Source, lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: src}.Rand()
}

// NewSource returns the PCG stream used for a seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
