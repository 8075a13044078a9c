package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nabshq/nabs/pkg/repo"
)

// testWorkspace is a small mixed-flavor monorepo: app and tool both depend
// on core, nothing depends on docs.
func testWorkspace() *repo.MemRepo {
	return repo.NewMemRepo(map[string]string{
		"packages/core/nabs.json":  "{}",
		"packages/core/Cargo.toml": "[package]\nname = \"core\"\n",

		"packages/app/nabs.json": "{}",
		"packages/app/Cargo.toml": `[package]
name = "app"

[dependencies]
core = { path = "../core" }
`,

		"packages/tool/nabs.json":        "{}",
		"packages/tool/requirements.txt": "requests==2.31.0\n../core\n",

		"packages/docs/nabs.json":  "{}",
		"packages/docs/Cargo.toml": "[package]\nname = \"docs\"\n",
	}, "/ws")
}

func testContext() context.Context {
	return withLogger(context.Background(), log.New(io.Discard))
}

func TestRunChangeset(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		want  []string
	}{
		{
			name:  "CoreAffectsDependents",
			stdin: "packages/core/src/lib.rs",
			want:  []string{"packages/app", "packages/core", "packages/tool"},
		},
		{
			name:  "LeafAffectsOnlyItself",
			stdin: "packages/app/src/main.rs",
			want:  []string{"packages/app"},
		},
		{
			name:  "MultipleFilesOnePackage",
			stdin: "packages/docs/a.rs packages/docs/b.rs",
			want:  []string{"packages/docs"},
		},
		{
			name:  "UnknownFileIsSkipped",
			stdin: "README.md packages/app/src/main.rs",
			want:  []string{"packages/app"},
		},
		{
			name:  "EmptyInput",
			stdin: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runChangeset(testContext(), testWorkspace(), strings.NewReader(tt.stdin), &out)
			if err != nil {
				t.Fatalf("runChangeset: %v", err)
			}

			var got []string
			for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
				if line != "" {
					got = append(got, line)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("output = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("output = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestOwningPackage(t *testing.T) {
	pkgSet := map[string]bool{
		"packages/app":       true,
		"packages/app/inner": true,
	}

	tests := []struct {
		file  string
		want  string
		found bool
	}{
		{file: "packages/app/src/main.rs", want: "packages/app", found: true},
		{file: "packages/app/inner/lib.rs", want: "packages/app/inner", found: true},
		{file: "packages/app/inner/sub/x.rs", want: "packages/app/inner", found: true},
		{file: "packages/other/x.rs", found: false},
		{file: "README.md", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, ok := owningPackage(tt.file, pkgSet)
			if ok != tt.found || got != tt.want {
				t.Errorf("owningPackage(%q) = %q, %v; want %q, %v", tt.file, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestBuildWorkspaceGraph(t *testing.T) {
	g, pkgs, err := buildWorkspaceGraph(testContext(), testWorkspace())
	if err != nil {
		t.Fatalf("buildWorkspaceGraph: %v", err)
	}
	if len(pkgs) != 4 {
		t.Errorf("packages = %v, want 4", pkgs)
	}
	// core, app, tool, docs as nodes; core->app and core->tool as edges
	if g.NodeCount() != 4 || g.EdgeCount() != 2 {
		t.Errorf("graph = %d nodes %d edges, want 4 and 2:\n%s", g.NodeCount(), g.EdgeCount(), g)
	}
}

func TestBuildWorkspaceGraphRootMarkerSkipped(t *testing.T) {
	r := repo.NewMemRepo(map[string]string{
		"nabs.json":               "{}",
		"packages/app/nabs.json":  "{}",
		"packages/app/Cargo.toml": "[package]\nname = \"app\"\n",
	}, "/ws")

	g, _, err := buildWorkspaceGraph(testContext(), r)
	if err != nil {
		t.Fatalf("buildWorkspaceGraph: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("nodes = %d, want the root marker skipped", g.NodeCount())
	}
}
