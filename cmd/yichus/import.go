package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
)

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tree events from JSON or CSV",
		Long: `Imports raw events from a structured file and appends them to the tree.
Events without a slice go to a new slice after the current latest; events
with an explicit slice must target the latest slice or later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without appending")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "fail", "Duplicate ID handling (fail, skip)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	strategy := services.ConflictStrategy(flags.onConflict)
	if strategy != services.ConflictFail && strategy != services.ConflictSkip {
		return errors.Newf("invalid --on-conflict value %q (valid: fail, skip)", flags.onConflict)
	}

	ctx := cmd.Context()

	return withImportHandler(func(d *internalDeps, handler *handlers.ImportHandler) error {
		opts := handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: strategy,
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := handler.Handle(ctx, d.TreeID, filePath, opts)
		if err != nil {
			return err
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d events would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d events", result.Imported)
		}

		if result.Skipped > 0 {
			fmt.Printf(", %d skipped (duplicate IDs)", result.Skipped)
		}

		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}

		fmt.Println()

		return nil
	})
}

// withImportHandler creates an ImportHandler and calls the provided function.
func withImportHandler(fn func(*internalDeps, *handlers.ImportHandler) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		importService := services.NewImportService(d.treeService)
		handler := handlers.NewImportHandler(importService)
		return fn(d, handler)
	})
}
