package planner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/qwertyBBeers/motion-planning/astar"
	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/grid"
	"github.com/qwertyBBeers/motion-planning/internal/logging"
	"github.com/qwertyBBeers/motion-planning/world"
)

var _ Planner = (*AStar)(nil)

// AStar plans over the uniform lattice of the world.
type AStar struct {
	resolution    float64
	allowDiagonal bool
	maxIterations int
	logger        *zap.Logger
}

// Option configures an AStar planner.
type Option func(*AStar)

// WithResolution sets the lattice cell size. Default 0.5.
func WithResolution(resolution float64) Option {
	return func(a *AStar) { a.resolution = resolution }
}

// WithDiagonal switches from 6- to 26-connectivity.
func WithDiagonal(allow bool) Option {
	return func(a *AStar) { a.allowDiagonal = allow }
}

// WithMaxIterations bounds the number of expansions; 0 means unbounded.
func WithMaxIterations(n int) Option {
	return func(a *AStar) { a.maxIterations = n }
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(a *AStar) { a.logger = logger }
}

// NewAStar returns a planner with resolution 0.5 and 6-connectivity unless
// overridden.
func NewAStar(opts ...Option) *AStar {
	a := &AStar{resolution: 0.5, logger: zap.NewNop()}
	for _, o := range opts {
		o(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

func (a *AStar) Resolution() float64 { return a.resolution }

// Connectivity returns the neighbourhood the planner expands.
func (a *AStar) Connectivity() grid.Connectivity {
	if a.allowDiagonal {
		return grid.Conn26
	}
	return grid.Conn6
}

// Plan searches from start to goal.
func (a *AStar) Plan(w *world.World, start, goal geometry.Point3) Result {
	res, _ := a.PlanContext(context.Background(), w, start, goal)
	return res
}

// PlanContext is Plan with cancellation. The error is non-nil only when ctx
// ends the search; the result then carries the bookkeeping gathered so far.
func (a *AStar) PlanContext(ctx context.Context, w *world.World, start, goal geometry.Point3) (Result, error) {
	graph, startN, goalN, ok := a.prepare(w, start, goal)
	if !ok {
		return failed(), nil
	}
	found, err := astar.Search[int](ctx, graph, startN, goalN, graph.heuristic, a.searchOptions()...)

	res := failed()
	res.Iterations = found.Iterations
	res.Visited = graph.points(found.Visited)
	switch {
	case err == nil:
		res.Success = true
		res.Path = graph.points(found.Path)
		res.Cost = found.TotalCost
	case errors.Is(err, astar.ErrNoPath), errors.Is(err, astar.ErrBudgetExhausted):
		err = nil
	}

	a.logger.Debug("plan finished",
		zap.Bool("success", res.Success),
		zap.Int("iterations", res.Iterations),
		zap.Int("path_len", len(res.Path)),
		zap.Float64("cost", res.Cost),
		zap.Error(err),
	)
	return res, err
}

// prepare applies the fast-fail checks and builds the search graph. ok is
// false when the request must fail without searching.
func (a *AStar) prepare(w *world.World, start, goal geometry.Point3) (graph *cellGraph, startN, goalN int, ok bool) {
	if !(a.resolution > 0) {
		a.logger.Debug("plan rejected", zap.String("reason", "non-positive resolution"), zap.Float64("resolution", a.resolution))
		return nil, 0, 0, false
	}
	if !w.InBounds(start) || !w.InBounds(goal) {
		a.logger.Debug("plan rejected", zap.String("reason", "endpoint out of bounds"),
			logging.Point("start", start), logging.Point("goal", goal))
		return nil, 0, 0, false
	}

	g, err := grid.New(w, a.resolution)
	if err != nil {
		a.logger.Debug("plan rejected", zap.String("reason", "lattice too large"), zap.Error(err))
		return nil, 0, 0, false
	}
	startP, goalP := g.Snap(start), g.Snap(goal)
	if w.Collides(startP) || w.Collides(goalP) {
		a.logger.Debug("plan rejected", zap.String("reason", "endpoint collides"),
			logging.Point("start", startP), logging.Point("goal", goalP))
		return nil, 0, 0, false
	}

	graph = &cellGraph{grid: g, world: w, conn: a.Connectivity()}
	return graph, g.Flatten(g.ToIndex(startP)), g.Flatten(g.ToIndex(goalP)), true
}

func (a *AStar) searchOptions() []astar.Option {
	if a.maxIterations > 0 {
		return []astar.Option{astar.WithMaxIterations(a.maxIterations)}
	}
	return nil
}

// cellGraph exposes the free lattice cells as an astar.Graph keyed by the
// flat cell number.
type cellGraph struct {
	grid  grid.Grid
	world *world.World
	conn  grid.Connectivity
	buf   []grid.Index
}

func (c *cellGraph) Neighbors(node int) []astar.Neighbor[int] {
	idx := c.grid.Unflatten(node)
	from := c.grid.ToPoint(idx)
	c.buf = c.grid.Neighbors(c.buf[:0], idx, c.conn)

	out := make([]astar.Neighbor[int], 0, len(c.buf))
	for _, n := range c.buf {
		to := c.grid.ToPoint(n)
		if c.world.Collides(to) || c.world.PathCollides(from, to) {
			continue
		}
		out = append(out, astar.Neighbor[int]{ID: c.grid.Flatten(n), Cost: geometry.Distance(from, to)})
	}
	return out
}

func (c *cellGraph) heuristic(from, to int) float64 {
	return geometry.Distance(c.point(from), c.point(to))
}

func (c *cellGraph) point(node int) geometry.Point3 {
	return c.grid.ToPoint(c.grid.Unflatten(node))
}

func (c *cellGraph) points(nodes []int) []geometry.Point3 {
	out := make([]geometry.Point3, len(nodes))
	for i, n := range nodes {
		out[i] = c.point(n)
	}
	return out
}
