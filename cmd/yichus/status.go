package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/domain/entities"
)

type statusFlags struct {
	slice   int
	profile string
}

func newStatusCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:   "status <from-person-id> <to-person-id>",
		Short: "Compute the halachic statuses between two people",
		Long: `Evaluates every registry rule for the ordered pair at a slice of the
tree's timeline and reports all matching statuses, the primary (most
severe) status, the levirate ties touching the pair, and the disputes
consulted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.slice, "slice", "s", -1, "Slice to evaluate (default: latest)")
	cmd.Flags().StringVarP(&flags.profile, "profile", "p", "", "Opinion profile to follow")

	return cmd
}

func runStatus(cmd *cobra.Command, fromID, toID string, flags statusFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.StatusHandler.HandleStatus(ctx, d.TreeID, fromID, toID, handlers.StatusOptions{
			Slice:   flags.slice,
			Profile: flags.profile,
		})
		if err != nil {
			return err
		}

		cs := result.Status
		fmt.Printf("Status of %s -> %s at slice %d (profile %s):\n\n", cs.FromID, cs.ToID, cs.Slice, result.Profile)

		if len(cs.AllStatuses) == 0 {
			fmt.Println("No status applies. The pair is unrestricted.")
			return nil
		}

		if cs.Primary != nil {
			fmt.Printf("Primary: %s\n", describeStatus(*cs.Primary))
		}

		fmt.Println()
		fmt.Println("All statuses:")
		for i, s := range cs.AllStatuses {
			fmt.Printf("  %d. %s\n", i+1, describeStatus(s))
		}

		if len(cs.Disputes) > 0 {
			fmt.Println()
			fmt.Println("Disputes consulted:")
			for _, dr := range cs.Disputes {
				fmt.Printf("  - %s: following %s (%s)\n", dr.DisputeID, dr.OpinionID, dr.Source)
			}
		}

		if len(cs.Ties) > 0 {
			fmt.Println()
			fmt.Println("Levirate ties:")
			for _, tie := range cs.Ties {
				fmt.Printf("  - %s\n", describeTie(tie))
			}
		}

		fmt.Println()
		if cs.Permitted() {
			fmt.Println("Marriage: permitted")
		} else {
			fmt.Println("Marriage: forbidden")
		}

		return nil
	})
}

func newPermittedCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:   "permitted <from-person-id> <to-person-id>",
		Short: "Check whether two people may marry",
		Long:  "Answers the marriage permission question for a pair, listing the statuses that block it when the answer is no.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermitted(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.slice, "slice", "s", -1, "Slice to evaluate (default: latest)")
	cmd.Flags().StringVarP(&flags.profile, "profile", "p", "", "Opinion profile to follow")

	return cmd
}

func runPermitted(cmd *cobra.Command, fromID, toID string, flags statusFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.StatusHandler.HandlePermitted(ctx, d.TreeID, fromID, toID, handlers.StatusOptions{
			Slice:   flags.slice,
			Profile: flags.profile,
		})
		if err != nil {
			return err
		}

		if result.Permitted {
			fmt.Printf("Marriage %s -> %s: permitted (profile %s)\n", fromID, toID, result.Profile)
			return nil
		}

		fmt.Printf("Marriage %s -> %s: forbidden (profile %s)\n", fromID, toID, result.Profile)
		fmt.Println("Blocked by:")
		for _, s := range result.Blocking {
			fmt.Printf("  - %s\n", describeStatus(s))
		}

		return nil
	})
}

// describeStatus renders one status on a single line.
func describeStatus(s entities.Status) string {
	label := fmt.Sprintf("%s [%s, severity %d]", s.RuleName, s.CategoryName, s.Severity)
	if s.ProhibitsMarriage {
		label += " - forbids marriage"
	}
	if s.OpinionID != "" {
		label += fmt.Sprintf(" (per %s)", s.OpinionID)
	}
	return label
}
