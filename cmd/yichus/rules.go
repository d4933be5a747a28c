package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and index the rule registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList()
		},
	}

	cmd.AddCommand(newRulesListCmd())
	cmd.AddCommand(newRulesDescribeCmd())
	cmd.AddCommand(newRulesIndexCmd())

	return cmd
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every rule in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList()
		},
	}
}

func runRulesList() error {
	registry := entities.BuiltinRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSEVERITY\tBLOCKS\tDISPUTE")

	for _, rule := range registry.Rules {
		cat, _ := registry.CategoryByID(rule.CategoryID)
		blocks := ""
		if cat.ProhibitsMarriage {
			blocks = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", rule.ID, cat.ID, cat.Severity, blocks, rule.DisputeID)
	}

	return w.Flush()
}

func newRulesDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <rule-id>",
		Short: "Show one rule in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesDescribe(args[0])
		},
	}
}

func runRulesDescribe(ruleID string) error {
	registry := entities.BuiltinRegistry()

	rule, ok := registry.RuleByID(ruleID)
	if !ok {
		return errors.Newf("rule %q not found (list them with: yichus rules list)", ruleID)
	}
	cat, _ := registry.CategoryByID(rule.CategoryID)

	fmt.Printf("ID:       %s\n", rule.ID)
	fmt.Printf("Name:     %s\n", rule.Name)
	fmt.Printf("Category: %s (%s, severity %d)\n", cat.Name, cat.ID, cat.Severity)
	if cat.ProhibitsMarriage {
		fmt.Println("Blocks:   marriage forbidden while this status holds")
	}
	if rule.Source != "" {
		fmt.Printf("Source:   %s\n", rule.Source)
	}
	if rule.Description != "" {
		fmt.Printf("\n%s\n", rule.Description)
	}

	if rule.DisputeID != "" {
		dispute, ok := registry.DisputeByID(rule.DisputeID)
		if ok {
			fmt.Printf("\nDispute: %s\n", dispute.Title)
			for _, op := range dispute.Opinions {
				marker := " "
				if op.ID == dispute.DefaultOpinionID {
					marker = "*"
				}
				fmt.Printf("  %s %s: %s\n", marker, op.ID, op.Name)
			}
			fmt.Println("  (* = default opinion)")
		}
	}

	return nil
}

func newRulesIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed the rule registry into the vector store",
		Long:  "Embeds every rule's prose and saves the vectors so search can find rules by meaning.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withSearchHandler(func(handler *handlers.SearchHandler) error {
				fmt.Println("Indexing rule registry...")
				docs, err := handler.HandleIndex(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d rules\n", len(docs))
				return nil
			})
		},
	}
}
