package repo

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/target"
)

func TestResolveRelPath(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		relTo    string
		want     string
		wantCode errors.Code
	}{
		{"UpOneLevel", "../qsync_stream", "packages/python/image_manager", "packages/python/qsync_stream", ""},
		{"UpFromDeep", "../x", "pkgs/a/b", "pkgs/a/x", ""},
		{"DownWithParentInside", "libs/x/../y", "pkgs/a/b", "pkgs/a/b/libs/y", ""},
		{"DownWithParentInside2", "libs/qsync_stream/../qsync", "packages/python/image_manager", "packages/python/image_manager/libs/qsync", ""},
		{"EscapesWorkspace", "../../../../qsync_stream", "packages/python/image_manager", "", errors.ErrCodePathEscapes},
		{"Absolute", "/abs/path", "pkgs/a/b", "", errors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relTo, err := target.RawTargetFromString(tt.relTo)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ResolveRelPath(target.NewManifestPath(tt.relPath, target.Posix), relTo)
			if tt.wantCode != "" {
				if err == nil {
					t.Fatalf("ResolveRelPath(%q, %q) = %v, want error", tt.relPath, tt.relTo, got)
				}
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("error code = %s, want %s", errors.GetCode(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveRelPath(%q, %q): %v", tt.relPath, tt.relTo, err)
			}
			if got.Name.String() != tt.want {
				t.Errorf("ResolveRelPath(%q, %q) = %q, want %q", tt.relPath, tt.relTo, got.Name, tt.want)
			}
		})
	}
}

func TestMemRepoGetContent(t *testing.T) {
	m := NewMemRepo(map[string]string{"libs/a/Cargo.toml": "[package]"}, "fake/root")

	content, ok, err := m.GetContent(filepath.FromSlash("libs/a/Cargo.toml"))
	if err != nil || !ok || content != "[package]" {
		t.Errorf("GetContent = (%q, %v, %v)", content, ok, err)
	}

	if _, ok, _ := m.GetContent("libs/a/missing.txt"); ok {
		t.Error("missing file reported as present")
	}
}

func TestMemRepoDiscoverPackages(t *testing.T) {
	m := NewMemRepo(map[string]string{
		"libs/a/nabs.json":        "{}",
		"libs/a/Cargo.toml":       "",
		"packages/b/nabs.json":    "{}",
		"packages/b/c/notes.json": "",
	}, "")

	got, err := m.DiscoverPackages()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"libs/a", "packages/b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverPackages = %v, want %v", got, want)
	}
}

func TestWorkspaceDiscoverPackages(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "workspace.json", "{}")
	mustWrite(t, root, "libs/a/nabs.json", "{}")
	mustWrite(t, root, "libs/a/Cargo.toml", "[package]\nname = \"a\"\n")
	mustWrite(t, root, "packages/deep/b/nabs.json", "{}")
	mustWrite(t, root, "packages/readme.md", "not a marker")

	w := NewWorkspace(root, nil)
	got, err := w.DiscoverPackages()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"libs/a", "packages/deep/b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverPackages = %v, want %v", got, want)
	}
}

func TestWorkspaceGetContent(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "libs/a/Cargo.toml", "[package]")

	w := NewWorkspace(root, nil)
	content, ok, err := w.GetContent(filepath.FromSlash("libs/a/Cargo.toml"))
	if err != nil || !ok || content != "[package]" {
		t.Errorf("GetContent = (%q, %v, %v)", content, ok, err)
	}
	if _, ok, err := w.GetContent(filepath.FromSlash("libs/a/poetry.lock")); ok || err != nil {
		t.Errorf("missing file: ok=%v err=%v, want absent without error", ok, err)
	}
}

func mustWrite(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
