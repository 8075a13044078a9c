// Package infer defines the build-system inference protocol and the runner
// that turns a set of package directories into a dependency graph.
//
// An inferrer looks at a single package directory (a RawTarget) and decides
// whether it belongs to the build system it understands. It can produce
// nothing, one target, or several targets, and it can tell the runner to
// stop trying further inferrers. Concrete inferrers live in subpackages,
// one per build system.
package infer

import (
	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// FailedParent records a declared dependency that could not be resolved to
// a package: the path exactly as the manifest declared it, plus the reason.
// Kept for diagnostics only; it has no graph identity.
type FailedParent struct {
	Name   string
	Reason string
}

// Single is one produced target together with the parent dependencies its
// manifest declared.
type Single struct {
	Target        target.Target
	Parents       []target.RawTarget
	FailedParents []FailedParent
}

// Next tells the runner whether to keep trying inferrers after this one.
type Next int

const (
	// Continue lets the runner try the next inferrer in priority order.
	Continue Next = iota
	// Break stops the pipeline regardless of what this inferrer produced.
	// An inferrer that reads an explicit declaration returns Break so that
	// nothing can infer after it.
	Break
)

// InferResult is what an inferrer returns for one raw target.
//
// Targets holds the produced targets: empty means this inferrer does not
// recognize the directory, one entry is the common case, and several
// entries mean one manifest legitimately declared multiple flavors. Only
// one inferrer may claim a directory; the runner enforces that.
type InferResult struct {
	Targets []Single
	Next    Next
}

// Nothing is the result of an inferrer that does not recognize a directory.
func Nothing() InferResult {
	return InferResult{Next: Continue}
}

// Infer is implemented by each build-system inferrer. FromRawTarget does
// I/O through the Repository the inferrer was constructed with; an error
// return means the manifest existed but could not be handled, which is
// fatal for the target being inferred.
type Infer interface {
	FromRawTarget(rt target.RawTarget) (InferResult, error)
}

// ResolveParents converts manifest-declared paths into parent raw targets.
// Paths that are absolute, escape the workspace, or produce an invalid
// target name become FailedParents instead of errors: a single bad
// dependency declaration must not take down the whole package.
func ResolveParents(declared []target.ManifestPath, relTo target.RawTarget) ([]target.RawTarget, []FailedParent) {
	var parents []target.RawTarget
	var failed []FailedParent
	for _, mp := range declared {
		rt, err := repo.ResolveRelPath(mp, relTo)
		if err != nil {
			failed = append(failed, FailedParent{Name: mp.Raw, Reason: errors.UserMessage(err)})
			continue
		}
		parents = append(parents, rt)
	}
	return parents, failed
}
