// Package nabsfile infers targets from an explicit nabs.json declaration.
//
// nabs.json plays two roles. As a bare marker (empty, or no "targets" key)
// it only makes the directory discoverable and automatic inference still
// runs. With a "targets" list it overrides automatic inference entirely:
// no other inferrer runs for the directory. It is the only way a directory
// can expose more than one flavor, and the escape hatch when automatic
// inference would be ambiguous.
package nabsfile

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/infer"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// Infer reads explicit target declarations. Implements infer.Infer.
type Infer struct {
	repo repo.Repository
}

// New creates a nabs.json inferrer reading through r.
func New(r repo.Repository) *Infer {
	return &Infer{repo: r}
}

type nabsFile struct {
	Targets []nabsTarget `json:"targets"`
}

type nabsTarget struct {
	Flavor string   `json:"flavor"`
	Deps   []string `json:"deps"`
}

// FromRawTarget reads <pkg>/nabs.json. When present it produces one target
// per declared flavor and tells the runner to stop the pipeline.
func (n *Infer) FromRawTarget(rt target.RawTarget) (infer.InferResult, error) {
	path := filepath.Join(repo.TargetNameToHostPath(rt.Name), repo.MarkerFile)
	content, ok, err := n.repo.GetContent(path)
	if err != nil {
		return infer.InferResult{}, err
	}
	if !ok {
		return infer.Nothing(), nil
	}
	if strings.TrimSpace(content) == "" {
		// bare marker
		return infer.Nothing(), nil
	}

	var file nabsFile
	if err := json.Unmarshal([]byte(content), &file); err != nil {
		return infer.InferResult{}, errors.Wrap(errors.ErrCodeManifestParse, err, "invalid %s in %s", repo.MarkerFile, rt.Name)
	}
	if len(file.Targets) == 0 {
		// marker without declarations, automatic inference takes over
		return infer.Nothing(), nil
	}

	singles := make([]infer.Single, 0, len(file.Targets))
	for _, decl := range file.Targets {
		if decl.Flavor == "" {
			return infer.InferResult{}, errors.New(errors.ErrCodeManifestParse, "%s in %s declares a target without a flavor", repo.MarkerFile, rt.Name)
		}
		var declared []target.ManifestPath
		for _, dep := range decl.Deps {
			declared = append(declared, target.NewManifestPath(dep, target.Posix))
		}
		parents, failed := infer.ResolveParents(declared, rt)
		singles = append(singles, infer.Single{
			Target:        target.TargetFromRaw(rt, decl.Flavor),
			Parents:       parents,
			FailedParents: failed,
		})
	}

	return infer.InferResult{Targets: singles, Next: infer.Break}, nil
}
