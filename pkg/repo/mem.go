package repo

import (
	"path/filepath"
	"sort"
	"strings"
)

// MemRepo is an in-memory Repository for tests: a map from slash-separated
// root-relative paths to file contents.
type MemRepo struct {
	files map[string]string
	root  string
}

// NewMemRepo creates a MemRepo over the given path→content map.
func NewMemRepo(files map[string]string, root string) *MemRepo {
	if files == nil {
		files = map[string]string{}
	}
	return &MemRepo{files: files, root: root}
}

func (m *MemRepo) WorkspaceRoot() string { return m.root }

func (m *MemRepo) GetContent(path string) (string, bool, error) {
	content, ok := m.files[filepath.ToSlash(path)]
	return content, ok, nil
}

// DiscoverPackages derives the package set from the stored paths, mirroring
// what the filesystem walk does for a real workspace.
func (m *MemRepo) DiscoverPackages() ([]string, error) {
	var pkgs []string
	for path := range m.files {
		if path == MarkerFile {
			pkgs = append(pkgs, ".")
			continue
		}
		if strings.HasSuffix(path, "/"+MarkerFile) {
			pkgs = append(pkgs, strings.TrimSuffix(path, "/"+MarkerFile))
		}
	}
	sort.Strings(pkgs)
	return pkgs, nil
}
