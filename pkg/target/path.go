package target

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nabshq/nabs/pkg/errors"
)

// PathFormat tags the notation a manifest uses for relative paths.
// Most build systems write posix paths so their manifests stay portable;
// the fallback is whatever the host OS uses.
type PathFormat int

const (
	// Posix paths use forward slashes regardless of host.
	Posix PathFormat = iota
	// Host paths are already in the host OS notation and pass through.
	Host
)

// ManifestPath is a relative path exactly as a build system's manifest file
// declared it. It is the basic unit of translation from a build system's
// own notation into target names; the inferrer that parses the manifest is
// responsible for picking the right format tag. Conversion to RawTarget is
// left to the repo package.
type ManifestPath struct {
	Raw    string
	Format PathFormat
}

// NewManifestPath wraps a raw manifest string with its notation.
func NewManifestPath(raw string, format PathFormat) ManifestPath {
	return ManifestPath{Raw: raw, Format: format}
}

// HostPath returns the path in host notation. Separator conversion only
// happens on hosts that need it, and always before resolution.
func (p ManifestPath) HostPath() string {
	if runtime.GOOS == "windows" && p.Format == Posix {
		return strings.ReplaceAll(p.Raw, "/", `\`)
	}
	return p.Raw
}

// IsAbsolute reports whether the declared path is absolute in either
// notation. Absolute manifest paths never resolve to a target.
func (p ManifestPath) IsAbsolute() bool {
	return strings.HasPrefix(p.Raw, "/") || filepath.IsAbs(p.HostPath())
}

// Normalize lexically collapses "." and resolves ".." without touching the
// filesystem. Canonicalizing would do the same thing but stats files to
// chase symlinks, which we never want for manifest-declared paths.
//
// Fails for paths like "hello/../.." where ".." would pop above the path's
// own root; this is the safety boundary that keeps a manifest from
// referencing anything outside the workspace.
func Normalize(path string) (string, error) {
	var stack []string
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		switch component {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return "", errors.New(errors.ErrCodePathEscapes, "failed in normalizing path, path=%s", path)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, component)
		}
	}
	return strings.Join(stack, "/"), nil
}
