// Package astar provides a generic, deterministic A* search.
//
// It exposes two entry points:
//
//   - Search: run the algorithm to completion and get a Result.
//   - Stepper: advance the search one expansion at a time to drive UIs or debugging tools.
//
// The frontier is a binary heap without decrease-key. A cheaper route to a
// queued node pushes a second entry, and entries for nodes that were
// already expanded are dropped when popped. Entries are ordered by f, then
// g, then node, so the expansion order and the returned path are fully
// reproducible.
package astar
