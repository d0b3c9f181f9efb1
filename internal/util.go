// Package internal holds helpers shared by the search packages.
package internal

import "slices"

// ReconstructPath follows parents back from node to start and returns the
// chain in start-to-node order. A node without a parent ends the walk
// early, so the first element is start only when the chain is complete.
func ReconstructPath[N comparable](parents map[N]N, node, start N) []N {
	path := []N{node}
	for node != start {
		parent, ok := parents[node]
		if !ok {
			break
		}
		path = append(path, parent)
		node = parent
	}
	slices.Reverse(path)
	return path
}
