package planner

import (
	"errors"
	"maps"
	"slices"

	"github.com/qwertyBBeers/motion-planning/astar"
	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/world"
)

// ErrRejected is returned by Begin when the request fails the checks that
// make Plan return a failed result without searching.
var ErrRejected = errors.New("planner: request rejected before search")

// Stepwise is a plan driven one expansion at a time. It follows exactly the
// expansion order of Plan with the same options.
type Stepwise struct {
	graph       *cellGraph
	stepper     *astar.Stepper[int]
	start, goal geometry.Point3
	expanded    int
}

// StepState describes the search after one Step call. Expanded is false
// when the call did not expand a cell, in which case Current is unset.
type StepState struct {
	Step     int
	Current  geometry.Point3
	Expanded bool
	Done     bool
	Found    bool
}

// Begin validates the request like Plan and returns the search positioned
// before its first expansion.
func (a *AStar) Begin(w *world.World, start, goal geometry.Point3) (*Stepwise, error) {
	graph, startN, goalN, ok := a.prepare(w, start, goal)
	if !ok {
		return nil, ErrRejected
	}
	return &Stepwise{
		graph:   graph,
		stepper: astar.NewStepper[int](graph, startN, goalN, graph.heuristic, a.searchOptions()...),
		start:   graph.point(startN),
		goal:    graph.point(goalN),
	}, nil
}

// Start and Goal return the snapped endpoints.
func (s *Stepwise) Start() geometry.Point3 { return s.start }
func (s *Stepwise) Goal() geometry.Point3  { return s.goal }

// Step expands one cell. ErrBudgetExhausted from the underlying search is
// reported as a finished, unsuccessful state.
func (s *Stepwise) Step() StepState {
	snap, err := s.stepper.Step()
	st := StepState{Step: snap.StepIndex, Done: snap.Done, Found: snap.Found}
	if err != nil {
		st.Done = true
	}
	if snap.StepIndex > s.expanded {
		s.expanded = snap.StepIndex
		st.Expanded = true
		st.Current = s.graph.point(snap.Current)
	}
	return st
}

// Open lists the frontier cells in flat-index order.
func (s *Stepwise) Open() []geometry.Point3 {
	return s.graph.points(sortedKeys(s.stepper.Open()))
}

// Closed lists the expanded cells in flat-index order.
func (s *Stepwise) Closed() []geometry.Point3 {
	return s.graph.points(sortedKeys(s.stepper.Closed()))
}

// Edge links a reached cell to the cell it was reached from.
type Edge struct {
	From, To geometry.Point3
}

// Tree returns the current search tree, one edge per reached cell other
// than the start, ordered by the flat index of the child.
func (s *Stepwise) Tree() []Edge {
	parents := s.stepper.CameFrom()
	children := slices.Sorted(maps.Keys(parents))
	edges := make([]Edge, len(children))
	for i, child := range children {
		edges[i] = Edge{From: s.graph.point(parents[child]), To: s.graph.point(child)}
	}
	return edges
}

// Result converts the progress so far into a planner Result. Success is
// only reported once the goal has been expanded.
func (s *Stepwise) Result() Result {
	found := s.stepper.Result()
	res := failed()
	res.Iterations = found.Iterations
	res.Visited = s.graph.points(found.Visited)
	if found.Found {
		res.Success = true
		res.Path = s.graph.points(found.Path)
		res.Cost = found.TotalCost
	}
	return res
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k, ok := range m {
		if ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
