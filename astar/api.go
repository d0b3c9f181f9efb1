package astar

import (
	"cmp"
	"context"
	"errors"
)

var (
	// ErrNoPath is returned when the frontier empties before the goal is reached.
	ErrNoPath = errors.New("astar: no path found")
	// ErrBudgetExhausted is returned when WithMaxIterations stops the search.
	ErrBudgetExhausted = errors.New("astar: iteration budget exhausted")
)

// Graph is generic over node type NodeType.
// NodeType must be ordered so equal-cost frontier entries pop deterministically.
type Graph[NodeType cmp.Ordered] interface {
	Neighbors(node NodeType) []Neighbor[NodeType]
}

// Neighbor represents a reachable node with a cost.
type Neighbor[NodeType cmp.Ordered] struct {
	ID   NodeType
	Cost float64
}

// Heuristic returns the estimated cost from node a to node b
type Heuristic[NodeType cmp.Ordered] func(from NodeType, to NodeType) float64

// Result contains the outcome of a search
type Result[NodeType cmp.Ordered] struct {
	Path      []NodeType
	TotalCost float64
	// Iterations counts the nodes expanded, the goal included. Stale
	// frontier entries are not counted.
	Iterations int
	// Visited lists the expanded nodes in expansion order.
	Visited []NodeType
	Found   bool
}

// Options defines parameters for the search.
type Options struct {
	// MaxIterations bounds the number of expansions. Zero means unbounded.
	MaxIterations int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxIterations stops the search after n expansions.
func WithMaxIterations(n int) Option {
	return func(options *Options) { options.MaxIterations = n }
}

// Search runs A* from startNode until goalNode is expanded or the frontier
// is empty. The context is checked once per expansion; on cancellation the
// partial bookkeeping is returned together with ctx.Err().
func Search[NodeType cmp.Ordered](
	contextObject context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	options ...Option,
) (Result[NodeType], error) {
	stepper := NewStepper(graph, startNode, goalNode, heuristic, options...)
	for {
		if err := contextObject.Err(); err != nil {
			return stepper.Result(), err
		}
		snapshot, err := stepper.Step()
		if err != nil {
			return stepper.Result(), err
		}
		if !snapshot.Done {
			continue
		}
		if !snapshot.Found {
			return stepper.Result(), ErrNoPath
		}
		return stepper.Result(), nil
	}
}
