package astar

import (
	"cmp"
	"container/heap"
	"maps"

	"github.com/qwertyBBeers/motion-planning/internal"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot[NodeType cmp.Ordered] struct {
	Current   NodeType
	GScore    float64
	Done      bool
	Found     bool
	Path      []NodeType
	StepIndex int
}

// Stepper drives the search one expansion at a time.
type Stepper[NodeType cmp.Ordered] struct {
	graph     Graph[NodeType]
	start     NodeType
	goal      NodeType
	heuristic Heuristic[NodeType]
	options   Options

	openSet   PriorityQueue[NodeType]
	closedSet map[NodeType]bool
	cameFrom  map[NodeType]NodeType
	gScore    map[NodeType]float64
	visited   []NodeType

	path      []NodeType
	totalCost float64
	stepCount int
	done      bool
	found     bool
}

// NewStepper seeds the frontier with startNode.
func NewStepper[NodeType cmp.Ordered](
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	options ...Option,
) *Stepper[NodeType] {
	var opts Options
	for _, o := range options {
		o(&opts)
	}

	s := &Stepper[NodeType]{
		graph:     graph,
		start:     startNode,
		goal:      goalNode,
		heuristic: heuristic,
		options:   opts,
		openSet:   make(PriorityQueue[NodeType], 0),
		closedSet: make(map[NodeType]bool),
		cameFrom:  make(map[NodeType]NodeType),
		gScore:    map[NodeType]float64{startNode: 0},
	}
	heap.Init(&s.openSet)
	heap.Push(&s.openSet, &PriorityQueueItem[NodeType]{Node: startNode, GScore: 0, FCost: heuristic(startNode, goalNode)})
	return s
}

// Step expands the next frontier node and returns a snapshot. Once the
// search is done every further call returns the final snapshot.
func (s *Stepper[NodeType]) Step() (StepSnapshot[NodeType], error) {
	if s.done {
		return s.snapshot(StepSnapshot[NodeType]{}), nil
	}
	if s.options.MaxIterations > 0 && s.stepCount >= s.options.MaxIterations {
		s.done = true
		return s.snapshot(StepSnapshot[NodeType]{}), ErrBudgetExhausted
	}

	var currentItem *PriorityQueueItem[NodeType]
	for s.openSet.Len() > 0 {
		item := heap.Pop(&s.openSet).(*PriorityQueueItem[NodeType])
		if !s.closedSet[item.Node] {
			currentItem = item
			break
		}
	}
	if currentItem == nil {
		s.done = true
		return s.snapshot(StepSnapshot[NodeType]{}), nil
	}

	current := currentItem.Node
	s.closedSet[current] = true
	s.stepCount++
	s.visited = append(s.visited, current)
	step := StepSnapshot[NodeType]{Current: current, GScore: currentItem.GScore}

	if current == s.goal {
		s.done = true
		s.found = true
		s.totalCost = currentItem.GScore
		s.path = internal.ReconstructPath(s.cameFrom, current, s.start)
		return s.snapshot(step), nil
	}

	for _, neighbor := range s.graph.Neighbors(current) {
		if s.closedSet[neighbor.ID] {
			continue
		}
		tentativeG := currentItem.GScore + neighbor.Cost
		if gPrev, ok := s.gScore[neighbor.ID]; ok && tentativeG >= gPrev {
			continue
		}
		s.gScore[neighbor.ID] = tentativeG
		s.cameFrom[neighbor.ID] = current
		heap.Push(&s.openSet, &PriorityQueueItem[NodeType]{
			Node:   neighbor.ID,
			GScore: tentativeG,
			FCost:  tentativeG + s.heuristic(neighbor.ID, s.goal),
		})
	}
	return s.snapshot(step), nil
}

// Result returns the bookkeeping gathered so far. Path and TotalCost are
// only set once the goal has been expanded.
func (s *Stepper[NodeType]) Result() Result[NodeType] {
	visited := make([]NodeType, len(s.visited))
	copy(visited, s.visited)
	return Result[NodeType]{
		Path:       append([]NodeType(nil), s.path...),
		TotalCost:  s.totalCost,
		Iterations: s.stepCount,
		Visited:    visited,
		Found:      s.found,
	}
}

// Open returns the nodes that still have a live frontier entry.
func (s *Stepper[NodeType]) Open() map[NodeType]bool {
	m := make(map[NodeType]bool, len(s.openSet))
	for _, item := range s.openSet {
		if !s.closedSet[item.Node] {
			m[item.Node] = true
		}
	}
	return m
}

// Closed returns a copy of the expanded set.
func (s *Stepper[NodeType]) Closed() map[NodeType]bool {
	return maps.Clone(s.closedSet)
}

// CameFrom returns a copy of the parent map: every reached node other than
// the start, keyed to the node it was last improved from.
func (s *Stepper[NodeType]) CameFrom() map[NodeType]NodeType {
	return maps.Clone(s.cameFrom)
}

func (s *Stepper[NodeType]) snapshot(step StepSnapshot[NodeType]) StepSnapshot[NodeType] {
	step.Done = s.done
	step.Found = s.found
	step.StepIndex = s.stepCount
	if s.found {
		step.Path = append([]NodeType(nil), s.path...)
	}
	return step
}
