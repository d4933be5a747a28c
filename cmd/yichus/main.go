// Package main provides the entry point for the yichus CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/logging"
)

var (
	version       = "0.1.0-dev"
	globalTree    string
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.IsResolutionError(err) {
			fmt.Fprintln(os.Stderr, "the recorded timeline is inconsistent; inspect it with: yichus events")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	defer logging.Sync()

	rootCmd := &cobra.Command{
		Use:     "yichus",
		Short:   "A temporal family-tree engine for halachic status questions",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Initialize(globalVerbose, false)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalTree, "tree", "t", "", "Tree to operate on (required for tree commands)")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newTreesCmd(),
		newStatusCmd(),
		newPermittedCmd(),
		newTiesCmd(),
		newYevamimCmd(),
		newYevamosCmd(),
		newPeopleCmd(),
		newRelationsCmd(),
		newEventsCmd(),
		newPersonCmd(),
		newRelateCmd(),
		newImportCmd(),
		newExportCmd(),
		newIngestCmd(),
		newSearchCmd(),
		newRulesCmd(),
		newProfilesCmd(),
		newWatchCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
