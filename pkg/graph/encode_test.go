package graph

import (
	"encoding/json"
	"testing"
)

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		build     func(t *testing.T) *TargetGraph
		wantNodes int
		wantEdges int
	}{
		{
			name:  "Empty",
			build: func(t *testing.T) *TargetGraph { return New() },
		},
		{
			name: "Simple",
			build: func(t *testing.T) *TargetGraph {
				g := New()
				a := mustTarget(t, "libs/a", "cargo")
				b := mustTarget(t, "libs/b", "cargo")
				g.AddNode(a)
				g.AddNode(b)
				if err := g.AddEdge(a, b); err != nil {
					t.Fatal(err)
				}
				return g
			},
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name: "TwoFlavorsOneDirectory",
			build: func(t *testing.T) *TargetGraph {
				g := New()
				g.AddNode(mustTarget(t, "libs/a", "cargo"))
				g.AddNode(mustTarget(t, "libs/a", "python_requirements"))
				return g
			},
			wantNodes: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.build(t)
			data, err := MarshalGraph(g)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}

			back, err := ToTargetGraph(result)
			if err != nil {
				t.Fatalf("ToTargetGraph: %v", err)
			}
			if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
				t.Errorf("round trip = %d nodes %d edges, want %d nodes %d edges",
					back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
			}
		})
	}
}

func TestFromTargetGraphSorted(t *testing.T) {
	g := New()
	b := mustTarget(t, "libs/b", "cargo")
	a := mustTarget(t, "libs/a", "cargo")
	g.AddNode(b)
	g.AddNode(a)

	gj := FromTargetGraph(g)
	if gj.Nodes[0].Name != "libs/a" || gj.Nodes[1].Name != "libs/b" {
		t.Errorf("nodes not sorted: %v", gj.Nodes)
	}
}
