package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nabshq/nabs/pkg/target"
)

// Graph is the JSON serialization format for a TargetGraph, used by the
// graph command and the HTTP API. Nodes are sorted for deterministic
// output; edges are (from, to) in dependency→dependent direction.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a serialized target.
type Node struct {
	Name   string `json:"name"`
	Flavor string `json:"flavor"`
}

// Edge is a serialized directed edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FromTargetGraph converts a TargetGraph to its serialization format.
// Nodes and edges are sorted so identical graphs always encode identically.
func FromTargetGraph(g *TargetGraph) Graph {
	out := Graph{Nodes: make([]Node, 0, g.NodeCount())}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{Name: n.Name.String(), Flavor: n.Flavor})
	}
	slices.SortFunc(out.Nodes, func(a, b Node) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Flavor, b.Flavor)
	})

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e[0].String(), To: e[1].String()})
	}
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	return out
}

// MarshalGraph converts a TargetGraph to indented JSON bytes.
func MarshalGraph(g *TargetGraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a TargetGraph as JSON to w.
func WriteGraph(g *TargetGraph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTargetGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ToTargetGraph rebuilds a TargetGraph from its serialization format.
// Used by tests and tooling that round-trips the JSON form.
func ToTargetGraph(gj Graph) (*TargetGraph, error) {
	g := New()
	for _, nj := range gj.Nodes {
		t, err := target.TargetFromString(nj.Name, nj.Flavor)
		if err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.Name, err)
		}
		g.AddNode(t)
	}
	for _, ej := range gj.Edges {
		from, to, err := edgeTargets(g, ej)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", ej.From, ej.To, err)
		}
	}
	return g, nil
}

func edgeTargets(g *TargetGraph, ej Edge) (target.Target, target.Target, error) {
	from, err := parseTargetRef(ej.From)
	if err != nil {
		return target.Target{}, target.Target{}, err
	}
	to, err := parseTargetRef(ej.To)
	if err != nil {
		return target.Target{}, target.Target{}, err
	}
	return from, to, nil
}

// parseTargetRef parses the "name:flavor" form produced by Target.String.
func parseTargetRef(s string) (target.Target, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return target.Target{}, fmt.Errorf("malformed target reference %q, want name:flavor", s)
	}
	return target.TargetFromString(s[:i], s[i+1:])
}
