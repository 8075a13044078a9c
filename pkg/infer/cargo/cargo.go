// Package cargo infers targets from Cargo.toml manifests.
//
// Only path dependencies participate in the monorepo graph; registry
// dependencies (bare versions or tables without a path key) belong to the
// outside world and are ignored.
package cargo

import (
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/infer"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// Flavor is the tag this inferrer stamps on produced targets.
const Flavor = "cargo"

// ManifestFile is the manifest this inferrer looks for in a package dir.
const ManifestFile = "Cargo.toml"

// Infer detects Cargo packages. Implements infer.Infer.
type Infer struct {
	repo repo.Repository
}

// New creates a Cargo inferrer reading through r.
func New(r repo.Repository) *Infer {
	return &Infer{repo: r}
}

type cargoManifest struct {
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

// FromRawTarget reads <pkg>/Cargo.toml. A missing manifest means this is
// not a Cargo package; a manifest that fails to decode is an error.
func (c *Infer) FromRawTarget(rt target.RawTarget) (infer.InferResult, error) {
	path := filepath.Join(repo.TargetNameToHostPath(rt.Name), ManifestFile)
	content, ok, err := c.repo.GetContent(path)
	if err != nil {
		return infer.InferResult{}, err
	}
	if !ok {
		return infer.Nothing(), nil
	}

	var manifest cargoManifest
	if err := toml.Unmarshal([]byte(content), &manifest); err != nil {
		return infer.InferResult{}, errors.Wrap(errors.ErrCodeManifestParse, err, "invalid %s in %s", ManifestFile, rt.Name)
	}

	declared := pathDeps(manifest.Dependencies)
	declared = append(declared, pathDeps(manifest.DevDependencies)...)
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

// pathDeps extracts the path entries from a dependency table. Cargo writes
// posix paths in manifests, so that is the notation we tag them with.
func pathDeps(deps map[string]any) []target.ManifestPath {
	var out []target.ManifestPath
	for _, dep := range deps {
		// either a bare version string or a detail table
		detail, ok := dep.(map[string]any)
		if !ok {
			continue
		}
		path, ok := detail["path"].(string)
		if !ok {
			continue
		}
		out = append(out, target.NewManifestPath(path, target.Posix))
	}
	return out
}
