package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nabshq/nabs/pkg/graph"
	"github.com/nabshq/nabs/pkg/infer"
	"github.com/nabshq/nabs/pkg/repo"
	"github.com/nabshq/nabs/pkg/target"
)

// newChangesetCmd creates the changeset command. It reads changed file
// paths from stdin and prints every package affected by the change.
func newChangesetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "changeset",
		Short: "Map changed files to the packages that need rebuilding",
		Long: `Read a whitespace-separated list of changed file paths (relative to the
workspace root) from stdin and print the canonical name of every package
that transitively depends on them, one per line.

Example:
  git diff --name-only main | nabs changeset`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ws, err := openWorkspace(c.Context())
			if err != nil {
				return err
			}
			return runChangeset(c.Context(), ws, os.Stdin, os.Stdout)
		},
	}
}

func runChangeset(ctx context.Context, r repo.Repository, in io.Reader, out io.Writer) error {
	logger := loggerFromContext(ctx)

	files, err := readChangedFiles(in)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("no changed files on stdin, nothing to analyze")
		return nil
	}

	sp := newSpinnerWithContext(ctx, "building dependency graph")
	sp.Start()
	g, pkgs, err := buildWorkspaceGraph(ctx, r)
	sp.Stop()
	if err != nil {
		return err
	}

	owners := owningPackages(files, pkgs, logger.Warn)

	// bucket graph nodes by directory so owners map to all their flavors
	byName := make(map[string][]target.Target)
	for _, n := range g.Nodes() {
		byName[n.Name.String()] = append(byName[n.Name.String()], n)
	}

	var starts []target.Target
	for _, owner := range owners {
		ts, ok := byName[owner]
		if !ok {
			logger.Warn("package produced no target, skipping it in analysis", "package", owner)
			continue
		}
		starts = append(starts, ts...)
	}
	if len(starts) == 0 {
		logger.Info("no changed package produced a target, nothing is affected")
		return nil
	}

	affected, err := g.RDeps(starts)
	if err != nil {
		return err
	}

	for _, name := range canonicalNames(affected) {
		fmt.Fprintln(out, name)
	}
	return nil
}

// buildWorkspaceGraph discovers every package in the workspace and builds
// the dependency graph from all of them. Returns the graph and the
// discovered package directories.
func buildWorkspaceGraph(ctx context.Context, r repo.Repository) (*graph.TargetGraph, []string, error) {
	logger := loggerFromContext(ctx)

	pkgs, err := r.DiscoverPackages()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("discovered packages", "count", len(pkgs))

	var seeds []target.RawTarget
	for _, pkg := range pkgs {
		rt, err := target.RawTargetFromString(pkg)
		if err != nil {
			// a marker directly in the workspace root has no target name
			logger.Warn("package directory has no valid target name, skipping it", "package", pkg, "reason", err)
			continue
		}
		seeds = append(seeds, rt)
	}

	prog := newProgress(logger)
	g, _, err := infer.NewRunner(inferPipeline(r), logger).BuildGraph(seeds)
	if err != nil {
		return nil, nil, err
	}
	prog.done(fmt.Sprintf("Built graph with %d targets and %d edges", g.NodeCount(), g.EdgeCount()))
	return g, pkgs, nil
}

// readChangedFiles reads whitespace-separated paths from in.
func readChangedFiles(in io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	var files []string
	for scanner.Scan() {
		files = append(files, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading changed files: %w", err)
	}
	return files, nil
}

// owningPackages maps each changed file to its nearest ancestor package
// directory. Files outside every package are warned about and dropped; the
// result is sorted and unique.
func owningPackages(files, pkgs []string, warn func(msg any, kv ...any)) []string {
	pkgSet := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		pkgSet[p] = true
	}

	ownerSet := make(map[string]bool)
	for _, file := range files {
		owner, ok := owningPackage(file, pkgSet)
		if !ok {
			warn("changed file does not belong to any package, skipping it", "file", file)
			continue
		}
		ownerSet[owner] = true
	}

	owners := make([]string, 0, len(ownerSet))
	for owner := range ownerSet {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// owningPackage walks up from the file's directory until it hits a package
// directory. The nearest ancestor wins, so nested packages own their own
// files.
func owningPackage(file string, pkgSet map[string]bool) (string, bool) {
	for dir := path.Dir(path.Clean(file)); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if pkgSet[dir] {
			return dir, true
		}
	}
	return "", false
}

// canonicalNames extracts sorted unique directory names from targets. Two
// flavors of one directory collapse to a single line of output.
func canonicalNames(targets []target.Target) []string {
	seen := make(map[string]bool, len(targets))
	var names []string
	for _, t := range targets {
		name := t.Name.String()
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
