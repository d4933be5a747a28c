package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/infrastructure/llm/openai"
)

type ingestFlags struct {
	checkConflicts bool
	dryRun         bool
	recursive      bool
	pattern        string
}

func newIngestCmd() *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest <file-or-directory>",
		Short: "Extract events from narrative text",
		Long: `Reads free-form text, asks the language model for the family events it
describes, and appends the accepted ones to the tree as a new slice. The
current snapshot is sent along so recorded person IDs are reused.

Examples:
  yichus -t stam ingest testimony.txt
  yichus -t stam ingest ./letters --recursive --pattern "*.txt"
  yichus -t stam ingest deposition.txt --check-conflicts --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.checkConflicts, "check-conflicts", false, "Flag events that contradict the recorded tree")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Extract and report without appending")
	cmd.Flags().BoolVarP(&flags.recursive, "recursive", "r", false, "Recurse into subdirectories")
	cmd.Flags().StringVar(&flags.pattern, "pattern", "*.txt", "File pattern for directory ingestion")

	return cmd
}

func runIngest(cmd *cobra.Command, path string, flags ingestFlags) error {
	ctx := cmd.Context()

	return withIngestHandler(func(d *internalDeps, handler *handlers.IngestHandler) error {
		opts := handlers.IngestOptions{
			CheckConflicts: flags.checkConflicts,
			DryRun:         flags.dryRun,
		}

		if handlers.IsDirectory(path) || handlers.IsGlobPattern(path) {
			return runIngestBatch(ctx, d, handler, path, flags, opts)
		}

		fmt.Printf("Ingesting %s...\n", path)

		result, err := handler.HandleWithOptions(ctx, d.TreeID, path, opts)
		if err != nil {
			return err
		}

		printIngestResult(result, flags.dryRun)
		return nil
	})
}

func runIngestBatch(ctx context.Context, d *internalDeps, handler *handlers.IngestHandler, path string, flags ingestFlags, opts handlers.IngestOptions) error {
	progressFn := func(file string) {
		fmt.Printf("Ingesting %s...\n", file)
	}

	batch, err := handler.HandleDirectoryWithOptions(ctx, d.TreeID, path, flags.pattern, flags.recursive, progressFn, opts)
	if err != nil {
		return err
	}

	for _, result := range batch.FileResults {
		printIngestResult(result, flags.dryRun)
	}

	fmt.Printf("\nProcessed %d files: %d events, %d issues\n", batch.TotalFiles, batch.TotalEvents, batch.TotalIssues)
	if len(batch.Errors) > 0 {
		fmt.Printf("Failed files (%d):\n", len(batch.Errors))
		for _, ferr := range batch.Errors {
			fmt.Printf("  %v\n", ferr)
		}
	}
	return nil
}

func printIngestResult(result *handlers.IngestResult, dryRun bool) {
	fmt.Printf("Extracted %d events from %s\n", result.EventsCount, result.FilePath)

	for i, ev := range result.Events {
		fmt.Printf("  %d. %s\n", i+1, describeEvent(ev))
	}

	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped %d malformed proposals:\n", len(result.Skipped))
		for _, raw := range result.Skipped {
			fmt.Printf("  - %s (person %q, relation %q)\n", raw.Type, raw.PersonID, raw.RelationID)
		}
	}

	if len(result.Issues) > 0 {
		fmt.Printf("Issues flagged (%d):\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Printf("  [%s] %s\n", issue.Severity, issue.Description)
		}
	}

	if dryRun {
		fmt.Println("Dry run: nothing appended.")
	} else if result.Slice >= 0 {
		fmt.Printf("Appended to slice %d\n", result.Slice)
	}
}

// withIngestHandler creates an IngestHandler and calls the provided function.
// The LLM client is built here, not in withWorkspace, so commands that never
// touch the model do not need an API key.
func withIngestHandler(fn func(*internalDeps, *handlers.IngestHandler) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		client, err := openai.NewClient(d.Config.LLM)
		if err != nil {
			return err
		}
		extractionService := services.NewExtractionService(client)
		handler := handlers.NewIngestHandler(extractionService, d.treeService, d.resolver)
		return fn(d, handler)
	})
}
