// Package planner turns a world and two endpoints into a collision-free
// lattice path.
package planner

import (
	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/world"
)

// Planner is implemented by every planning strategy.
//
// Plan never returns an error: invalid input and exhausted searches are both
// reported as Success == false. Callers that need the cause re-check the
// preconditions themselves.
type Planner interface {
	Plan(w *world.World, start, goal geometry.Point3) Result
}

// Result is the outcome of one Plan call.
type Result struct {
	// Path runs from the snapped start to the snapped goal. Empty on failure.
	Path    []geometry.Point3
	Success bool
	// Iterations is the number of cells expanded.
	Iterations int
	// Visited lists the expanded cells in expansion order.
	Visited []geometry.Point3
	// Cost is the length of Path.
	Cost float64
}

// PathLength sums the segment lengths of path.
func PathLength(path []geometry.Point3) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += geometry.Distance(path[i-1], path[i])
	}
	return total
}

func failed() Result {
	return Result{Path: []geometry.Point3{}, Visited: []geometry.Point3{}}
}
