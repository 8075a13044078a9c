// Package graph implements the target dependency graph.
//
// Nodes are addressed by content (a target.Target value), not by handle:
// an arena slice holds the targets, and an identity→index map plus the
// index→identity property of the arena give O(1) lookup both ways. An edge
// from A to B means "B depends on A", so walking outgoing edges from a
// changed target reaches everything that transitively depends on it.
package graph

import (
	"fmt"
	"strings"

	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/target"
)

// TargetGraph is a directed graph of build targets. It is built once per
// command invocation by the infer runner and discarded after use; nodes
// and edges are only ever added, never removed. Not safe for concurrent
// use, which is fine: graph construction is single-threaded.
type TargetGraph struct {
	nodes         []target.Target
	indexByTarget map[target.Target]int
	outgoing      [][]int
	edgeSet       map[[2]int]struct{}
}

// New creates an empty TargetGraph.
func New() *TargetGraph {
	return &TargetGraph{
		indexByTarget: make(map[target.Target]int),
		edgeSet:       make(map[[2]int]struct{}),
	}
}

// ContainsNode reports whether node is already in the graph.
func (g *TargetGraph) ContainsNode(node target.Target) bool {
	_, ok := g.indexByTarget[node]
	return ok
}

// AddNode inserts node, keyed by its full (name, flavor) identity.
// Inserting a node that is already present is a no-op.
func (g *TargetGraph) AddNode(node target.Target) {
	if _, ok := g.indexByTarget[node]; ok {
		return
	}
	g.indexByTarget[node] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.outgoing = append(g.outgoing, nil)
}

// AddEdge inserts the directed edge src→dest. Both endpoints must already
// be nodes; a missing endpoint is an internal-corruption error, because the
// builder inserts nodes before linking them. Duplicate edges collapse.
func (g *TargetGraph) AddEdge(src, dest target.Target) error {
	s, err := g.index(src)
	if err != nil {
		return err
	}
	d, err := g.index(dest)
	if err != nil {
		return err
	}
	if _, ok := g.edgeSet[[2]int{s, d}]; ok {
		return nil
	}
	g.edgeSet[[2]int{s, d}] = struct{}{}
	g.outgoing[s] = append(g.outgoing[s], d)
	return nil
}

func (g *TargetGraph) index(t target.Target) (int, error) {
	i, ok := g.indexByTarget[t]
	if !ok {
		return 0, errors.New(errors.ErrCodeTargetNotFound, "target %s is not a node in the graph", t)
	}
	return i, nil
}

// NodeCount returns the number of nodes in the graph.
func (g *TargetGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges in the graph.
func (g *TargetGraph) EdgeCount() int { return len(g.edgeSet) }

// Nodes returns a copy of all targets in insertion order.
func (g *TargetGraph) Nodes() []target.Target {
	out := make([]target.Target, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all (src, dest) pairs. Order is per-source insertion order.
func (g *TargetGraph) Edges() [][2]target.Target {
	var out [][2]target.Target
	for s, dests := range g.outgoing {
		for _, d := range dests {
			out = append(out, [2]target.Target{g.nodes[s], g.nodes[d]})
		}
	}
	return out
}

// Neighbors returns the direct successors of t (its outgoing edges).
// Mostly useful for tests and inspection; traversal goes through RDeps.
func (g *TargetGraph) Neighbors(t target.Target) ([]target.Target, error) {
	i, err := g.index(t)
	if err != nil {
		return nil, err
	}
	neighbors := make([]target.Target, 0, len(g.outgoing[i]))
	for _, d := range g.outgoing[i] {
		neighbors = append(neighbors, g.nodes[d])
	}
	return neighbors, nil
}

// RDeps returns every target that transitively depends on any of starts,
// including the starts themselves. The traversal begins from all starts at
// once and visits each reachable node exactly once; callers must not rely
// on the order. Fails when a start is not a node in the graph.
func (g *TargetGraph) RDeps(starts []target.Target) ([]target.Target, error) {
	stack := make([]int, 0, len(starts))
	for _, s := range starts {
		i, err := g.index(s)
		if err != nil {
			return nil, err
		}
		stack = append(stack, i)
	}

	visited := make([]bool, len(g.nodes))
	var result []target.Target
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[i] {
			continue
		}
		visited[i] = true
		result = append(result, g.nodes[i])
		for _, d := range g.outgoing[i] {
			if !visited[d] {
				stack = append(stack, d)
			}
		}
	}
	return result, nil
}

// String renders every node with its direct outgoing neighbors, one line
// per node. A debugging aid, not a stable interchange format.
func (g *TargetGraph) String() string {
	var b strings.Builder
	for i, n := range g.nodes {
		neighbors := make([]string, 0, len(g.outgoing[i]))
		for _, d := range g.outgoing[i] {
			neighbors = append(neighbors, g.nodes[d].String())
		}
		fmt.Fprintf(&b, "%s -> [%s]\n", n, strings.Join(neighbors, ", "))
	}
	return b.String()
}
