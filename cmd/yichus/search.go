package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/errors"
)

type searchFlags struct {
	limit    int
	category string
}

func newSearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Search the rule registry by meaning",
		Long: `Embeds the question and finds the closest rules in the indexed registry.
Run "yichus rules index" once before the first search.

Examples:
  yichus search "may a man marry his brother's widow"
  yichus search "remarriage after divorce" --category lav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultSearchLimit, "Maximum results")
	cmd.Flags().StringVarP(&flags.category, "category", "c", "", "Restrict to a category (ervah, lav, zikah, mitzvah, union)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, flags searchFlags) error {
	if flags.category != "" && !contains(validCategories, flags.category) {
		return errors.Newf("invalid category %q (valid: %s)", flags.category, strings.Join(validCategories, ", "))
	}

	ctx := cmd.Context()

	return withSearchHandler(func(handler *handlers.SearchHandler) error {
		var result *handlers.SearchResult
		var err error
		if flags.category != "" {
			result, err = handler.HandleByCategory(ctx, query, flags.category, flags.limit)
		} else {
			result, err = handler.Handle(ctx, query, flags.limit)
		}
		if err != nil {
			return err
		}

		if len(result.Docs) == 0 {
			fmt.Println("No rules found. Has the registry been indexed? (yichus rules index)")
			return nil
		}

		fmt.Printf("Found %d rules:\n\n", len(result.Docs))

		for i, doc := range result.Docs {
			fmt.Printf("%d. [%s] %s (score %.2f)\n", i+1, doc.CategoryID, doc.Title, doc.Score)
			fmt.Printf("   %s\n", doc.Body)
			if doc.Source != "" {
				fmt.Printf("   Source: %s\n", doc.Source)
			}
			fmt.Println()
		}

		return nil
	})
}
