// Package graph provides a small directed graph used to order schema
// objects by their dependencies, foreign keys most of all.
package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// DirectedGraph holds dependency edges. An edge from A to B means A must
// come before B in the sorted output. The ordered constraint on T keeps
// the sort deterministic: ties break alphabetically.
type DirectedGraph[T cmp.Ordered] struct {
	nodes    map[T]bool
	edges    map[T]map[T]bool
	inDegree map[T]int
}

func NewDirectedGraph[T cmp.Ordered]() *DirectedGraph[T] {
	return &DirectedGraph[T]{
		nodes:    make(map[T]bool),
		edges:    make(map[T]map[T]bool),
		inDegree: make(map[T]int),
	}
}

func (g *DirectedGraph[T]) AddNode(node T) {
	g.nodes[node] = true

	if _, exists := g.inDegree[node]; !exists {
		g.inDegree[node] = 0
	}

	if g.edges[node] == nil {
		g.edges[node] = make(map[T]bool)
	}
}

func (g *DirectedGraph[T]) HasNode(node T) bool {
	return g.nodes[node]
}

// AddEdge records that from precedes to. Both nodes must already exist.
func (g *DirectedGraph[T]) AddEdge(from, to T) error {
	if !g.nodes[from] || !g.nodes[to] {
		return fmt.Errorf("both nodes must exist before adding edge: %v -> %v", from, to)
	}

	if !g.edges[from][to] {
		g.edges[from][to] = true
		g.inDegree[to]++
	}

	return nil
}

// CycleError carries the nodes that could not be ordered.
type CycleError[T cmp.Ordered] struct {
	Remaining []T
}

func (e *CycleError[T]) Error() string {
	return fmt.Sprintf("circular dependency detected: %v", e.Remaining)
}

// TopologicalSort returns the nodes in dependency order, alphabetical
// within each rank. Mutual dependencies surface as a CycleError listing
// the unsortable nodes.
func (g *DirectedGraph[T]) TopologicalSort() ([]T, error) {
	inDegree := make(map[T]int)
	maps.Copy(inDegree, g.inDegree)

	var queue []T

	for node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	slices.Sort(queue)

	result := make([]T, 0, len(g.nodes))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		result = append(result, node)

		for dependent := range g.edges[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				slices.Sort(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var remaining []T

		for node, degree := range inDegree {
			if degree > 0 {
				remaining = append(remaining, node)
			}
		}

		slices.Sort(remaining)

		return nil, &CycleError[T]{Remaining: remaining}
	}

	return result, nil
}
