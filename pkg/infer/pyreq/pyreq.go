// Package pyreq infers targets from pip requirements files.
//
// Only local path entries participate in the monorepo graph: lines that
// start with "./" or "../", and "name @ file://<path>" references. Pinned
// registry packages like "requests==1.2.3" are ignored.
package pyreq

import (
	"bufio"
	"path/filepath"
	"strings"

	"github.com/nabshq/nabs/pkg/infer"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// Flavor is the tag this inferrer stamps on produced targets.
const Flavor = "python_requirements"

// DefaultFileName is the requirements file looked for by default.
const DefaultFileName = "requirements.txt"

// Infer detects python packages declared through a requirements file.
// Implements infer.Infer.
type Infer struct {
	repo     repo.Repository
	fileName string
}

// New creates a requirements inferrer reading through r. fileName is the
// requirements file to look for; empty means DefaultFileName.
func New(r repo.Repository, fileName string) *Infer {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Infer{repo: r, fileName: fileName}
}

// FromRawTarget reads <pkg>/requirements.txt. A missing file means this is
// not a python requirements package.
func (p *Infer) FromRawTarget(rt target.RawTarget) (infer.InferResult, error) {
	path := filepath.Join(repo.TargetNameToHostPath(rt.Name), p.fileName)
	content, ok, err := p.repo.GetContent(path)
	if err != nil {
		return infer.InferResult{}, err
	}
	if !ok {
		return infer.Nothing(), nil
	}

	var declared []target.ManifestPath
	for _, raw := range localPaths(content) {
		declared = append(declared, target.NewManifestPath(raw, target.Posix))
	}
	parents, failed := infer.ResolveParents(declared, rt)

	return infer.InferResult{
		Targets: []infer.Single{{
			Target:        target.TargetFromRaw(rt, Flavor),
			Parents:       parents,
			FailedParents: failed,
		}},
		Next: infer.Continue,
	}, nil
}

// localPaths scans a requirements file for entries that point into the
// repository rather than at a registry.
func localPaths(content string) []string {
	var paths []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "./") || strings.HasPrefix(line, "../") {
			paths = append(paths, line)
			continue
		}

		// "name @ file://<path>" direct references
		if at := strings.Index(line, "@"); at >= 0 {
			rest := line[at:]
			if file := strings.Index(rest, "file://"); file >= 0 {
				paths = append(paths, rest[file+len("file://"):])
			}
		}
	}
	return paths
}
