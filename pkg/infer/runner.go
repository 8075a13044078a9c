package infer

import (
	"github.com/charmbracelet/log"

	"github.com/nabshq/nabs/pkg/errors"
	"github.com/nabshq/nabs/pkg/graph"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// Runner drives the inference pipeline over a package set and assembles
// the dependency graph.
type Runner struct {
	infers []Infer
	logger *log.Logger
}

// NewRunner creates a Runner trying infers in the given priority order.
func NewRunner(infers []Infer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{infers: infers, logger: logger}
}

// BuildGraph builds the dependency graph reachable from the seed raw
// targets, recursing into declared parent dependencies. It returns the
// graph and the targets produced for the seeds themselves, in seed order.
//
// An inference failure for a seed is fatal. A failure somewhere in a
// parent subtree is reported as a warning and that edge is skipped,
// yielding a deliberately partial graph instead of no graph at all.
func (r *Runner) BuildGraph(seeds []target.RawTarget) (*graph.TargetGraph, []target.Target, error) {
	b := &builder{
		runner:     r,
		g:          graph.New(),
		inProgress: make(map[target.Target]bool),
	}
	var seedTargets []target.Target
	for _, s := range seeds {
		ts, err := b.build(s)
		if err != nil {
			return nil, nil, err
		}
		seedTargets = append(seedTargets, ts...)
	}
	return b.g, seedTargets, nil
}

// builder carries the per-invocation construction state. inProgress holds
// targets whose parent subtree is still being walked; meeting one of them
// again means the manifests declare a dependency cycle.
type builder struct {
	runner     *Runner
	g          *graph.TargetGraph
	inProgress map[target.Target]bool
}

// build processes one raw target: infer it, insert its targets, recurse
// into the declared parents, link edges parent → us. Returns the targets
// produced for raw so the caller can link its own edges to them.
func (b *builder) build(raw target.RawTarget) ([]target.Target, error) {
	singles, err := b.runner.runInference(raw)
	if err != nil {
		return nil, err
	}

	targets := make([]target.Target, 0, len(singles))
	for _, s := range singles {
		targets = append(targets, s.Target)
	}

	for _, our := range singles {
		if b.inProgress[our.Target] {
			return nil, errors.New(errors.ErrCodeCycle,
				"dependency cycle detected through %s; nabs cannot order a cyclic dependency chain", our.Target)
		}
		if b.g.ContainsNode(our.Target) {
			// already fully processed on an earlier path
			continue
		}
		b.g.AddNode(our.Target)
		b.inProgress[our.Target] = true

		for _, fp := range our.FailedParents {
			b.runner.logger.Warn("dependency did not resolve to a package, skipping it",
				"package", raw.Name, "declared", fp.Name, "reason", fp.Reason)
		}

		for _, p := range our.Parents {
			parentTargets, err := b.build(p)
			if err != nil {
				b.runner.logger.Warn("failed in creating graph for package, skipping this target in analysis",
					"package", p.Name, "reason", err)
				continue
			}
			for _, pt := range parentTargets {
				// Both endpoints were inserted before this point; a failure
				// here is a broken builder invariant, not user input.
				if err := b.g.AddEdge(pt, our.Target); err != nil {
					panic(errors.Wrap(errors.ErrCodeCorrupted, err,
						"failed adding edge %s -> %s even though both should be nodes", pt, our.Target))
				}
			}
		}
		delete(b.inProgress, our.Target)
	}
	return targets, nil
}

// runInference runs the pipeline for one raw target. Inferrers are tried
// in priority order; Nothing results are discarded but their continuation
// signal still applies, and the loop stops at the first Break. Exactly one
// inferrer must claim the directory: zero claims and multiple claims are
// both fatal, because guessing would silently corrupt build results.
func (r *Runner) runInference(raw target.RawTarget) ([]Single, error) {
	var claims [][]Single
	for _, inf := range r.infers {
		res, err := inf.FromRawTarget(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestParse, err, "failed in inferring package=%s", raw.Name)
		}
		if len(res.Targets) > 0 {
			claims = append(claims, res.Targets)
		}
		if res.Next == Break {
			break
		}
	}

	switch len(claims) {
	case 0:
		return nil, errors.New(errors.ErrCodeNoBuildSystem,
			"could not infer any build system for package=%s, declare it in %s", raw.Name, repo.MarkerFile)
	case 1:
		return claims[0], nil
	default:
		return nil, errors.New(errors.ErrCodeAmbiguous,
			"multiple build systems were inferred for package=%s; this is not allowed for automatic inference, declare the target in %s instead", raw.Name, repo.MarkerFile)
	}
}
