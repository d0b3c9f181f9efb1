package planner

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/grid"
	"github.com/qwertyBBeers/motion-planning/world"
	"github.com/qwertyBBeers/motion-planning/worldgen"
)

var p = geometry.P

func TestPlanEmptyWorld(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))
	planner := NewAStar(WithResolution(1), WithDiagonal(false))

	res := planner.Plan(w, p(1, 1, 1), p(3, 3, 3))

	require.True(t, res.Success)
	assert.Equal(t, p(1, 1, 1), res.Path[0])
	assert.Equal(t, p(3, 3, 3), res.Path[len(res.Path)-1])
	assert.Positive(t, res.Iterations)
	assert.Len(t, res.Path, 7)
	assert.Equal(t, 6.0, res.Cost)
	assert.Equal(t, PathLength(res.Path), res.Cost)
	assert.Len(t, res.Visited, res.Iterations)
	assertValidPath(t, w, 1, grid.Conn6, res.Path)
}

func TestPlanStartOrGoalCollides(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(3, 3, 3), geometry.Box{Min: p(0, 0, 0), Max: p(3, 3, 3)})

	res := NewAStar(WithResolution(1)).Plan(w, p(1, 1, 1), p(2, 2, 2))

	assert.False(t, res.Success)
	assert.Empty(t, res.Path)
	assert.Zero(t, res.Iterations)
	assert.Empty(t, res.Visited)
}

func TestPlanAvoidsSphere(t *testing.T) {
	sphere := geometry.Sphere{Center: p(2, 2, 2), Radius: 0.6}
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4), sphere)

	res := NewAStar(WithResolution(1), WithDiagonal(false)).Plan(w, p(1, 1, 1), p(3, 3, 3))

	require.True(t, res.Success)
	assert.Equal(t, p(1, 1, 1), res.Path[0])
	assert.Equal(t, p(3, 3, 3), res.Path[len(res.Path)-1])
	assert.NotContains(t, res.Path, p(2, 2, 2))
	assertValidPath(t, w, 1, grid.Conn6, res.Path)
}

func TestPlanDiagonal(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))

	res := NewAStar(WithResolution(1), WithDiagonal(true)).Plan(w, p(1, 1, 1), p(3, 3, 3))

	require.True(t, res.Success)
	assert.Equal(t, []geometry.Point3{p(1, 1, 1), p(2, 2, 2), p(3, 3, 3)}, res.Path)
	assert.InDelta(t, 2*math.Sqrt(3), res.Cost, 1e-12)
}

func TestPlanDiagonalDoesNotCutCorners(t *testing.T) {
	// A thin slab between (1,1,0) and (2,2,0) blocks the diagonal step even
	// though both lattice points are free.
	slab := geometry.Box{Min: p(1.4, 1.4, -1), Max: p(1.6, 1.6, 1)}
	w := world.MustNew(p(0, 0, 0), p(3, 3, 0), slab)

	res := NewAStar(WithResolution(1), WithDiagonal(true)).Plan(w, p(1, 1, 0), p(2, 2, 0))

	require.True(t, res.Success)
	assert.Len(t, res.Path, 3)
	assertValidPath(t, w, 1, grid.Conn26, res.Path)
}

func TestPlanFastFail(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))

	tests := []struct {
		name        string
		planner     *AStar
		start, goal geometry.Point3
	}{
		{"zero resolution", NewAStar(WithResolution(0)), p(1, 1, 1), p(2, 2, 2)},
		{"negative resolution", NewAStar(WithResolution(-1)), p(1, 1, 1), p(2, 2, 2)},
		{"start out of bounds", NewAStar(WithResolution(1)), p(-1, 1, 1), p(2, 2, 2)},
		{"goal out of bounds", NewAStar(WithResolution(1)), p(1, 1, 1), p(2, 2, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.planner.Plan(w, tt.start, tt.goal)
			assert.False(t, res.Success)
			assert.Empty(t, res.Path)
			assert.Empty(t, res.Visited)
			assert.Zero(t, res.Iterations)
		})
	}
}

func TestPlanRejectsLatticeTooLarge(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(3, 3, 3))
	core, logs := observer.New(zap.DebugLevel)

	res := NewAStar(WithResolution(1e-6), WithLogger(zap.New(core))).Plan(w, p(3, 3, 3), p(3, 3, 2.999997))

	assert.False(t, res.Success)
	assert.Empty(t, res.Path)
	assert.Zero(t, res.Iterations)
	rejected := logs.FilterMessage("plan rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "lattice too large", rejected[0].ContextMap()["reason"])
}

func TestPlanSnapsEndpoints(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))

	res := NewAStar(WithResolution(1)).Plan(w, p(1.2, 0.9, 1.1), p(2.6, 3.4, 2.5))

	require.True(t, res.Success)
	assert.Equal(t, p(1, 1, 1), res.Path[0])
	assert.Equal(t, p(3, 3, 2), res.Path[len(res.Path)-1])
}

func TestPlanUnreachableGoal(t *testing.T) {
	// A wall through x=2 splits the lattice into x<2 and x>2.
	wall := geometry.Box{Min: p(1.5, -1, -1), Max: p(2.5, 5, 5)}
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4), wall)

	res := NewAStar(WithResolution(1), WithDiagonal(true)).Plan(w, p(0, 0, 0), p(4, 4, 4))

	assert.False(t, res.Success)
	assert.Empty(t, res.Path)
	assert.Equal(t, 50, res.Iterations, "every cell with x in {0,1} is expanded once")
	assert.Len(t, res.Visited, 50)
	for _, v := range res.Visited {
		assert.Less(t, v.X(), 2.0)
	}
}

func TestPlanExpansionOrder(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(1, 1, 0))

	res := NewAStar(WithResolution(1)).Plan(w, p(0, 0, 0), p(1, 1, 0))

	require.True(t, res.Success)
	want := Result{
		Path:       []geometry.Point3{p(0, 0, 0), p(0, 1, 0), p(1, 1, 0)},
		Success:    true,
		Iterations: 4,
		Visited:    []geometry.Point3{p(0, 0, 0), p(0, 1, 0), p(1, 0, 0), p(1, 1, 0)},
		Cost:       2,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	gen := worldgen.Default()
	w, err := gen.Generate(rand.NewPCG(7, 7))
	require.NoError(t, err)
	planner := NewAStar(WithResolution(1), WithDiagonal(true))

	first := planner.Plan(w, p(1, 1, 1), p(9, 9, 9))
	second := planner.Plan(w, p(1, 1, 1), p(9, 9, 9))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated plans differ (-first +second):\n%s", diff)
	}
}

func TestPlanCoarserResolutionNeedsFewerIterations(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(8, 8, 8))
	start, goal := p(0, 0, 0), p(8, 8, 8)

	var prev int
	for i, res := range []float64{0.5, 1, 2, 4} {
		r := NewAStar(WithResolution(res)).Plan(w, start, goal)
		require.True(t, r.Success)
		if i > 0 {
			assert.LessOrEqual(t, r.Iterations, prev, "resolution %g", res)
		}
		prev = r.Iterations
	}
}

func TestPlanRandomWorldsProduceValidPaths(t *testing.T) {
	gen := worldgen.Default()
	for seed := uint64(1); seed <= 8; seed++ {
		src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
		w, err := gen.Generate(src)
		require.NoError(t, err)
		start, goal := gen.SampleLineSegment(w, src)

		for _, diag := range []bool{false, true} {
			planner := NewAStar(WithResolution(1), WithDiagonal(diag))
			res := planner.Plan(w, start, goal)
			if !res.Success {
				assert.Empty(t, res.Path)
				continue
			}
			g, err := grid.New(w, 1)
			require.NoError(t, err)
			assert.Equal(t, g.Snap(start), res.Path[0])
			assert.Equal(t, g.Snap(goal), res.Path[len(res.Path)-1])
			assertValidPath(t, w, 1, planner.Connectivity(), res.Path)
		}
	}
}

func TestPlanContextCancelled(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewAStar(WithResolution(1)).PlanContext(ctx, w, p(0, 0, 0), p(4, 4, 4))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.Success)
	assert.Empty(t, res.Path)
}

func TestPlanIterationBudget(t *testing.T) {
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))

	res, err := NewAStar(WithResolution(1), WithMaxIterations(2)).PlanContext(context.Background(), w, p(0, 0, 0), p(4, 4, 4))

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Iterations)
}

func TestPlanLogsRejection(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	w := world.MustNew(p(0, 0, 0), p(4, 4, 4))

	NewAStar(WithResolution(1), WithLogger(zap.New(core))).Plan(w, p(9, 9, 9), p(1, 1, 1))

	entries := logs.FilterMessage("plan rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "endpoint out of bounds", entries[0].ContextMap()["reason"])
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	assert.Zero(t, PathLength([]geometry.Point3{p(1, 1, 1)}))
	assert.Equal(t, 7.0, PathLength([]geometry.Point3{p(0, 0, 0), p(3, 4, 0), p(3, 4, 2)}))
}

func assertValidPath(t *testing.T, w *world.World, res float64, conn grid.Connectivity, path []geometry.Point3) {
	t.Helper()
	g, err := grid.New(w, res)
	require.NoError(t, err)
	for i, pt := range path {
		assert.False(t, w.Collides(pt), "point %d %v collides", i, pt)
		if i == 0 {
			continue
		}
		prev := path[i-1]
		assert.True(t, grid.IsNeighbor(g.ToIndex(prev), g.ToIndex(pt), conn), "%v → %v is not a lattice step", prev, pt)
		assert.False(t, w.PathCollides(prev, pt), "%v → %v crosses an obstacle", prev, pt)
	}
}
