// Package world describes the immutable scene a planner searches: the
// axis-aligned bounds and the ordered obstacle list.
package world

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/qwertyBBeers/motion-planning/geometry"
)

// ErrInvalidBounds is returned when bounds_min exceeds bounds_max on an axis
// or a bound is NaN or infinite.
var ErrInvalidBounds = errors.New("world: invalid bounds")

// World is read-only after New returns.
type World struct {
	boundsMin geometry.Point3
	boundsMax geometry.Point3
	obstacles []geometry.Obstacle
}

// New builds a world. The obstacle slice is copied.
func New(boundsMin, boundsMax geometry.Point3, obstacles ...geometry.Obstacle) (*World, error) {
	for i := 0; i < 3; i++ {
		if !finite(boundsMin[i]) || !finite(boundsMax[i]) {
			return nil, fmt.Errorf("%w: non-finite bound on axis %d: min %v, max %v", ErrInvalidBounds, i, boundsMin, boundsMax)
		}
		if boundsMin[i] > boundsMax[i] {
			return nil, fmt.Errorf("%w: min %v exceeds max %v on axis %d", ErrInvalidBounds, boundsMin, boundsMax, i)
		}
	}
	obs := make([]geometry.Obstacle, len(obstacles))
	copy(obs, obstacles)
	return &World{boundsMin: boundsMin, boundsMax: boundsMax, obstacles: obs}, nil
}

// MustNew is like New but panics on invalid bounds. Intended for tests and
// fixed scenes.
func MustNew(boundsMin, boundsMax geometry.Point3, obstacles ...geometry.Obstacle) *World {
	w, err := New(boundsMin, boundsMax, obstacles...)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *World) BoundsMin() geometry.Point3 { return w.boundsMin }
func (w *World) BoundsMax() geometry.Point3 { return w.boundsMax }

// Obstacles returns a copy of the obstacle list in insertion order.
func (w *World) Obstacles() []geometry.Obstacle {
	out := make([]geometry.Obstacle, len(w.obstacles))
	copy(out, w.obstacles)
	return out
}

// NumObstacles returns the obstacle count without copying.
func (w *World) NumObstacles() int { return len(w.obstacles) }

// InBounds reports whether p lies inside the bounds, inclusive.
func (w *World) InBounds(p geometry.Point3) bool {
	return geometry.Within(p, w.boundsMin, w.boundsMax)
}

// Collides reports whether any obstacle contains p.
func (w *World) Collides(p geometry.Point3) bool {
	for _, o := range w.obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// PathCollides reports whether the straight segment a→b touches any obstacle.
func (w *World) PathCollides(a, b geometry.Point3) bool {
	for _, o := range w.obstacles {
		if geometry.SegmentIntersects(a, b, o) {
			return true
		}
	}
	return false
}

// Fingerprint is a stable digest of the bounds and obstacles. Two worlds
// with the same fingerprint describe the same scene.
func (w *World) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(vs ...float64) {
		for _, v := range vs {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
	}
	put(w.boundsMin[:]...)
	put(w.boundsMax[:]...)
	for _, o := range w.obstacles {
		_, _ = d.Write([]byte{byte(o.Kind())})
		switch o := o.(type) {
		case geometry.Box:
			put(o.Min[:]...)
			put(o.Max[:]...)
		case geometry.Sphere:
			put(o.Center[:]...)
			put(o.Radius)
		}
	}
	return d.Sum64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
