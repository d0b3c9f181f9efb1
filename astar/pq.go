package astar

import "cmp"

type PriorityQueueItem[NodeType cmp.Ordered] struct {
	Node   NodeType
	GScore float64
	FCost  float64
}

// PriorityQueue implements heap.Interface ordered by FCost, then GScore,
// then Node.
type PriorityQueue[NodeType cmp.Ordered] []*PriorityQueueItem[NodeType]

func (queue PriorityQueue[NodeType]) Len() int { return len(queue) }

func (queue PriorityQueue[NodeType]) Less(i, j int) bool {
	a, b := queue[i], queue[j]
	if a.FCost != b.FCost {
		return a.FCost < b.FCost
	}
	if a.GScore != b.GScore {
		return a.GScore < b.GScore
	}
	return a.Node < b.Node
}

func (queue PriorityQueue[NodeType]) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
}

func (queue *PriorityQueue[NodeType]) Push(x any) {
	*queue = append(*queue, x.(*PriorityQueueItem[NodeType]))
}

func (queue *PriorityQueue[NodeType]) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	*queue = oldQueue[:n-1]
	return item
}
