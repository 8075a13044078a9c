// Package target defines the identity model for packages in a monorepo.
//
// There are three path-like string kinds in nabs, each with its own
// semantics:
//
//   - TargetName: how nabs uniquely identifies a package. A posix-style
//     path relative to the workspace root, with no absolute prefix and no
//     "."/".." or empty components.
//   - ManifestPath: a raw string read from a build system's manifest file
//     (like dependencies[].path in Cargo.toml), tagged with its notation.
//     Arbitrary format, never trusted until resolved.
//   - Host paths: whatever the OS uses. TargetNames convert to host paths
//     only at the filesystem boundary.
package target

import (
	"fmt"
	"strings"

	"github.com/nabshq/nabs/pkg/errors"
)

// TargetName uniquely identifies a package directory in the monorepo.
//
// Correct: "packages/python/lib". Wrong: "packages/../python" (dot
// components), "/packages/hello" (absolute), "hey//hello" (empty
// component), `packages\python` (host separators).
type TargetName struct {
	name string
}

// NewTargetName validates name and returns it as a TargetName.
// The returned error names the violated rule.
func NewTargetName(name string) (TargetName, error) {
	if err := validateTargetName(name); err != nil {
		return TargetName{}, err
	}
	return TargetName{name: name}, nil
}

func (n TargetName) String() string { return n.name }

// IsZero reports whether n is the zero value rather than a validated name.
func (n TargetName) IsZero() bool { return n.name == "" }

func validateTargetName(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidTargetName, "target name cannot be empty")
	}
	if strings.HasPrefix(name, "/") {
		return errors.New(errors.ErrCodeInvalidTargetName, "target name cannot be an absolute path: name=%s", name)
	}
	for _, component := range strings.Split(name, "/") {
		if component == "" {
			return errors.New(errors.ErrCodeInvalidTargetName, "target name has an empty component (like //): name=%s", name)
		}
		if component == "." || component == ".." {
			return errors.New(errors.ErrCodeInvalidTargetName, "'.' and '..' are not allowed in a target name: name=%s", name)
		}
	}
	return nil
}

// Target is the node payload of the dependency graph: a package directory
// plus the build system inferred for it. A single directory can expose
// multiple detected build systems, differentiated by Flavor; identity and
// equality are over the full (name, flavor) pair.
type Target struct {
	Name   TargetName
	Flavor string
}

// NewTarget pairs an already-validated name with a flavor.
func NewTarget(name TargetName, flavor string) Target {
	return Target{Name: name, Flavor: flavor}
}

// TargetFromString validates name and pairs it with flavor.
func TargetFromString(name, flavor string) (Target, error) {
	n, err := NewTargetName(name)
	if err != nil {
		return Target{}, err
	}
	return NewTarget(n, flavor), nil
}

// TargetFromRaw stamps a raw target with the flavor an inferrer detected.
func TargetFromRaw(rt RawTarget, flavor string) Target {
	return Target{Name: rt.Name, Flavor: flavor}
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Name, t.Flavor)
}

// RawTarget is a package directory before its build system is known.
// Package discovery produces RawTargets; inferrers consume them and
// produce Targets.
type RawTarget struct {
	Name TargetName
}

// NewRawTarget wraps an already-validated name.
func NewRawTarget(name TargetName) RawTarget {
	return RawTarget{Name: name}
}

// RawTargetFromString validates name and wraps it.
func RawTargetFromString(name string) (RawTarget, error) {
	n, err := NewTargetName(name)
	if err != nil {
		return RawTarget{}, errors.Wrap(errors.ErrCodeInvalidTargetName, err, "failed in creating target name=%s", name)
	}
	return RawTarget{Name: n}, nil
}

func (rt RawTarget) String() string { return rt.Name.String() }
