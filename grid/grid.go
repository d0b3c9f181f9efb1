// Package grid maps a world onto a uniform cubic lattice. A Grid is a pure
// coordinate transform; no per-cell storage is allocated.
//
// Every quantisation (Snap, ToIndex) rounds half to even, so a point that
// Snap produced always maps back to the index it was snapped to.
package grid

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/world"
)

// ErrInvalidResolution is returned for a non-positive resolution, or one so
// fine that the cell count does not fit in an int.
var ErrInvalidResolution = errors.New("grid: resolution must be positive")

// Index addresses one lattice cell.
type Index struct {
	I, J, K int
}

func (i Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", i.I, i.J, i.K)
}

// Grid pairs a world with a lattice resolution.
type Grid struct {
	world      *world.World
	resolution float64
	dims       Index
}

// New returns the grid of w at the given resolution.
func New(w *world.World, resolution float64) (Grid, error) {
	if !(resolution > 0) {
		return Grid{}, fmt.Errorf("%w: got %g", ErrInvalidResolution, resolution)
	}
	lo, hi := w.BoundsMin(), w.BoundsMax()
	var dims [3]int
	total := 1
	for axis := range dims {
		n := math.Floor((hi[axis]-lo[axis])/resolution) + 1
		if !(n < float64(math.MaxInt)) {
			return Grid{}, fmt.Errorf("%w: %g gives too many cells on axis %d", ErrInvalidResolution, resolution, axis)
		}
		dims[axis] = int(n)
		var ok bool
		if total, ok = mulInt(total, dims[axis]); !ok {
			return Grid{}, fmt.Errorf("%w: %g gives more than %d cells", ErrInvalidResolution, resolution, math.MaxInt)
		}
	}
	return Grid{world: w, resolution: resolution, dims: Index{I: dims[0], J: dims[1], K: dims[2]}}, nil
}

// mulInt multiplies two non-negative ints, reporting false on overflow.
func mulInt(a, b int) (int, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

func (g Grid) World() *world.World { return g.world }
func (g Grid) Resolution() float64  { return g.resolution }

// Dims returns the per-axis cell count.
func (g Grid) Dims() Index { return g.dims }

// Len returns the total number of cells. New guarantees it fits in an int,
// so Flatten never overflows.
func (g Grid) Len() int { return g.dims.I * g.dims.J * g.dims.K }

// InRange reports whether idx lies in [0, Dims()) on every axis.
func (g Grid) InRange(idx Index) bool {
	return 0 <= idx.I && idx.I < g.dims.I &&
		0 <= idx.J && idx.J < g.dims.J &&
		0 <= idx.K && idx.K < g.dims.K
}

// Snap moves p to the nearest lattice point inside the bounds.
func (g Grid) Snap(p geometry.Point3) geometry.Point3 {
	idx := g.quantise(p)
	idx.I = clampInt(idx.I, 0, g.dims.I-1)
	idx.J = clampInt(idx.J, 0, g.dims.J-1)
	idx.K = clampInt(idx.K, 0, g.dims.K-1)
	return geometry.Clamp(g.ToPoint(idx), g.world.BoundsMin(), g.world.BoundsMax())
}

// ToIndex rounds p to its lattice index. p is expected to be grid aligned
// (the output of Snap); no range clamping is applied.
func (g Grid) ToIndex(p geometry.Point3) Index {
	return g.quantise(p)
}

// ToPoint returns the world position of idx.
func (g Grid) ToPoint(idx Index) geometry.Point3 {
	lo := g.world.BoundsMin()
	return geometry.Point3{
		lo[0] + float64(idx.I)*g.resolution,
		lo[1] + float64(idx.J)*g.resolution,
		lo[2] + float64(idx.K)*g.resolution,
	}
}

// Flatten returns the row-major cell number i*dimJ*dimK + j*dimK + k.
// Flatten preserves the lexicographic order of in-range indices.
func (g Grid) Flatten(idx Index) int {
	return (idx.I*g.dims.J+idx.J)*g.dims.K + idx.K
}

// Unflatten is the inverse of Flatten.
func (g Grid) Unflatten(n int) Index {
	k := n % g.dims.K
	n /= g.dims.K
	return Index{I: n / g.dims.J, J: n % g.dims.J, K: k}
}

func (g Grid) quantise(p geometry.Point3) Index {
	lo := g.world.BoundsMin()
	return Index{
		I: int(math.RoundToEven((p[0] - lo[0]) / g.resolution)),
		J: int(math.RoundToEven((p[1] - lo[1]) / g.resolution)),
		K: int(math.RoundToEven((p[2] - lo[2]) / g.resolution)),
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
