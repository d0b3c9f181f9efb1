package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/world"
)

func newGrid(t *testing.T, lo, hi geometry.Point3, res float64) Grid {
	t.Helper()
	g, err := New(world.MustNew(lo, hi), res)
	require.NoError(t, err)
	return g
}

func TestNewRejectsBadResolution(t *testing.T) {
	w := world.MustNew(geometry.P(0, 0, 0), geometry.P(1, 1, 1))
	for _, res := range []float64{0, -1} {
		_, err := New(w, res)
		assert.ErrorIs(t, err, ErrInvalidResolution)
	}
}

func TestNewRejectsLatticeTooLarge(t *testing.T) {
	cube := world.MustNew(geometry.P(0, 0, 0), geometry.P(3, 3, 3))
	// 3000001 cells per axis: each axis fits, the product does not.
	_, err := New(cube, 1e-6)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = New(cube, 1e-300)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	line := world.MustNew(geometry.P(0, 0, 0), geometry.P(1, 0, 0))
	g, err := New(line, 1e-9)
	require.NoError(t, err)
	last := Index{I: g.Dims().I - 1}
	assert.Equal(t, g.Len()-1, g.Flatten(last))
	assert.Equal(t, last, g.Unflatten(g.Flatten(last)))
}

func TestDims(t *testing.T) {
	tests := []struct {
		name   string
		hi     geometry.Point3
		res    float64
		expect Index
	}{
		{"unit", geometry.P(4, 4, 4), 1, Index{5, 5, 5}},
		{"half", geometry.P(4, 2, 1), 0.5, Index{9, 5, 3}},
		{"non aligned extent", geometry.P(4.6, 1, 0), 1, Index{5, 2, 1}},
		{"flat world", geometry.P(0, 0, 0), 0.25, Index{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, geometry.P(0, 0, 0), tt.hi, tt.res)
			assert.Equal(t, tt.expect, g.Dims())
			assert.Equal(t, tt.expect.I*tt.expect.J*tt.expect.K, g.Len())
		})
	}
}

func TestSnap(t *testing.T) {
	g := newGrid(t, geometry.P(1, 1, 1), geometry.P(5, 5, 5), 1)

	assert.Equal(t, geometry.P(2, 3, 4), g.Snap(geometry.P(2.2, 2.9, 4.4)))
	// Ties go to the even lattice index: 0.5 → 0, 1.5 → 2.
	assert.Equal(t, geometry.P(1, 3, 1), g.Snap(geometry.P(1.5, 2.5, 0.5)))
	// Out of range coordinates clamp to the edge cells.
	assert.Equal(t, geometry.P(1, 5, 5), g.Snap(geometry.P(-3, 9, 5.4)))
}

func TestSnapNonAlignedExtentStaysOnLattice(t *testing.T) {
	g := newGrid(t, geometry.P(0, 0, 0), geometry.P(4.6, 4.6, 4.6), 1)

	p := g.Snap(geometry.P(4.6, 4.6, 4.6))
	assert.Equal(t, geometry.P(4, 4, 4), p)
	assert.True(t, g.InRange(g.ToIndex(p)))
}

func TestIndexPointRoundTrip(t *testing.T) {
	g := newGrid(t, geometry.P(-2, 0, 0.5), geometry.P(3, 4, 2.5), 0.5)
	dims := g.Dims()
	for i := 0; i < dims.I; i++ {
		for j := 0; j < dims.J; j++ {
			for k := 0; k < dims.K; k++ {
				idx := Index{i, j, k}
				p := g.ToPoint(idx)
				require.Equal(t, idx, g.ToIndex(p))
				require.Equal(t, p, g.ToPoint(g.ToIndex(p)))
				require.Equal(t, p, g.Snap(p))
			}
		}
	}
}

func TestFlatten(t *testing.T) {
	g := newGrid(t, geometry.P(0, 0, 0), geometry.P(3, 2, 4), 1)

	prev := -1
	for i := 0; i < g.Dims().I; i++ {
		for j := 0; j < g.Dims().J; j++ {
			for k := 0; k < g.Dims().K; k++ {
				idx := Index{i, j, k}
				n := g.Flatten(idx)
				require.Equal(t, prev+1, n, "flatten must follow lexicographic order")
				require.Equal(t, idx, g.Unflatten(n))
				prev = n
			}
		}
	}
	assert.Equal(t, g.Len()-1, prev)
}

func TestNeighbors(t *testing.T) {
	g := newGrid(t, geometry.P(0, 0, 0), geometry.P(4, 4, 4), 1)

	center := Index{2, 2, 2}
	assert.Equal(t, []Index{{1, 2, 2}, {3, 2, 2}, {2, 1, 2}, {2, 3, 2}, {2, 2, 1}, {2, 2, 3}},
		g.Neighbors(nil, center, Conn6))
	assert.Len(t, g.Neighbors(nil, center, Conn26), 26)

	corner := Index{0, 0, 0}
	assert.Equal(t, []Index{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, g.Neighbors(nil, corner, Conn6))
	assert.Len(t, g.Neighbors(nil, corner, Conn26), 7)

	first := g.Neighbors(nil, center, Conn26)[0]
	assert.Equal(t, Index{1, 1, 1}, first)
}

func TestIsNeighbor(t *testing.T) {
	a := Index{1, 1, 1}
	assert.True(t, IsNeighbor(a, Index{2, 1, 1}, Conn6))
	assert.False(t, IsNeighbor(a, Index{2, 2, 1}, Conn6))
	assert.True(t, IsNeighbor(a, Index{2, 2, 0}, Conn26))
	assert.False(t, IsNeighbor(a, a, Conn26))
	assert.False(t, IsNeighbor(a, Index{3, 1, 1}, Conn26))
}
