// Package repo abstracts access to the monorepo.
//
// A Repository hands out raw file content and knows where the workspace
// root is; everything else (package discovery, manifest path resolution)
// is defined here on top of those primitives so that a filesystem-backed
// workspace and an in-memory test double behave identically.
package repo

import (
	"path/filepath"

	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/target"
)

const (
	// WorkspaceFile marks the workspace root directory.
	WorkspaceFile = "workspace.json"
	// MarkerFile marks a directory as a nabs package. Discovery returns the
	// parent directory of every marker.
	MarkerFile = "nabs.json"
)

// Repository is the interface for interacting with the monorepo. It can be
// filesystem backed or an in-memory fake for tests.
type Repository interface {
	// GetContent returns the content at path. The path is in host notation,
	// relative to the workspace root. The second return is false when the
	// path does not exist; that is not an error. Any other I/O failure is.
	GetContent(path string) (string, bool, error)

	// WorkspaceRoot returns the root directory of the monorepo.
	WorkspaceRoot() string

	// DiscoverPackages returns the directories containing a MarkerFile,
	// slash-separated and relative to the workspace root. Unreadable
	// entries are skipped with a warning, never fatal.
	DiscoverPackages() ([]string, error)
}

// TargetNameToHostPath converts a target name like
// "packages/python/qsync_stream" to a path in the host system's notation.
func TargetNameToHostPath(n target.TargetName) string {
	return filepath.FromSlash(n.String())
}

// ResolveRelPath constructs the RawTarget a manifest-declared path points
// at, given the package that declared it.
//
// mp is relative to relTo, and relTo's name is relative to the workspace,
// so normalizing (relTo / mp) yields mp relative to the workspace. Fails
// when mp is absolute or when normalization escapes the workspace; the
// caller records such failures as failed parents, it never aborts on them.
func ResolveRelPath(mp target.ManifestPath, relTo target.RawTarget) (target.RawTarget, error) {
	if mp.IsAbsolute() {
		return target.RawTarget{}, errors.New(errors.ErrCodeInvalidPath, "absolute paths are not allowed: path=%s", mp.Raw)
	}
	joined := filepath.Join(TargetNameToHostPath(relTo.Name), mp.HostPath())
	name, err := target.Normalize(joined)
	if err != nil {
		return target.RawTarget{}, errors.Wrap(errors.ErrCodePathEscapes, err,
			"the path is mostly outside your workspace, path=%s declared_by=%s", mp.Raw, relTo.Name)
	}
	return target.RawTargetFromString(name)
}
