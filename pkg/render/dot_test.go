package render

import (
	"strings"
	"testing"

	"github.com/nabshq/nabs/pkg/graph"
	"github.com/nabshq/nabs/pkg/target"
)

func mustTarget(t *testing.T, name, flavor string) target.Target {
	t.Helper()
	tg, err := target.TargetFromString(name, flavor)
	if err != nil {
		t.Fatalf("target %q: %v", name, err)
	}
	return tg
}

func TestToDOT(t *testing.T) {
	g := graph.New()
	a := mustTarget(t, "libs/a", "cargo")
	b := mustTarget(t, "libs/b", "python_requirements")
	g.AddNode(a)
	g.AddNode(b)
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, Options{})
	for _, want := range []string{
		"digraph deps {",
		`"libs/a:cargo"`,
		`"libs/b:python_requirements"`,
		`"libs/a:cargo" -> "libs/b:python_requirements";`,
		`label="libs/a"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	detailed := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(detailed, `label="libs/a\ncargo"`) {
		t.Errorf("detailed DOT missing flavor label:\n%s", detailed)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", got)
	}
	if !strings.Contains(got, `width="100" height="50"`) {
		t.Errorf("pixel size not set: %s", got)
	}
}
