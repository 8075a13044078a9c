package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nabshq/nabs/pkg/infer"
	"github.com/nabshq/nabs/pkg/infer/cargo"
	"github.com/nabshq/nabs/pkg/infer/nabsfile"
	"github.com/nabshq/nabs/pkg/infer/pyreq"
	"github.com/nabshq/nabs/pkg/repo"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Called by
// the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the nabs CLI and returns an error if any command fails.
//
// The logger is attached to the context in PersistentPreRun and accessible
// to all commands via loggerFromContext; --verbose selects debug level.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "nabs",
		Short:        "nabs maps changed files to the packages that need rebuilding",
		Long:         `nabs analyzes a monorepo's package dependency graph. Given a set of changed files it reports every package that transitively depends on them, so CI can rebuild and retest exactly what a change can break.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("nabs %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newChangesetCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}

// inferPipeline is the build-system inference pipeline in priority order.
// An explicit nabs.json declaration always wins over automatic inference.
func inferPipeline(r repo.Repository) []infer.Infer {
	return []infer.Infer{
		nabsfile.New(r),
		cargo.New(r),
		pyreq.New(r, ""),
	}
}

// openWorkspace locates the workspace by walking up from the current
// directory.
func openWorkspace(ctx context.Context) (*repo.Workspace, error) {
	return repo.FindWorkspace(loggerFromContext(ctx))
}
