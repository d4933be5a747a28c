package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

func newTiesCmd() *cobra.Command {
	var (
		sliceIndex int
		personID   string
	)

	cmd := &cobra.Command{
		Use:   "ties",
		Short: "List levirate ties",
		Long: `Lists the levirate ties derived at a slice: which widows are bound to
surviving brothers, and how each tie was resolved if it no longer binds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTies(cmd, personID, sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Slice to evaluate (default: latest)")
	cmd.Flags().StringVarP(&personID, "person", "p", "", "Only ties touching this person")

	return cmd
}

func runTies(cmd *cobra.Command, personID string, sliceIndex int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.StatusHandler.HandleTies(ctx, d.TreeID, personID, sliceIndex)
		if err != nil {
			return err
		}

		if len(result.Ties) == 0 {
			fmt.Printf("No levirate ties at slice %d.\n", result.Slice)
			return nil
		}

		fmt.Printf("Levirate ties at slice %d:\n", result.Slice)
		for _, tie := range result.Ties {
			fmt.Printf("  - %s\n", describeTie(tie))
		}

		return nil
	})
}

func newYevamimCmd() *cobra.Command {
	var sliceIndex int

	cmd := &cobra.Command{
		Use:   "yevamim <widow-person-id>",
		Short: "List the brothers-in-law bound to a widow",
		Long:  "Lists the living brothers a widow's outstanding levirate ties bind her to.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYevamim(cmd, args[0], sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Slice to evaluate (default: latest)")

	return cmd
}

func runYevamim(cmd *cobra.Command, widowID string, sliceIndex int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.StatusHandler.HandleYevamim(ctx, d.TreeID, widowID, sliceIndex)
		if err != nil {
			return err
		}

		if len(result.Yevamim) == 0 {
			fmt.Printf("%s is not bound to anyone at slice %d.\n", result.WidowID, result.Slice)
			return nil
		}

		fmt.Printf("%s is bound at slice %d to:\n", result.WidowID, result.Slice)
		for _, p := range result.Yevamim {
			fmt.Printf("  - %s (%s)\n", p.ID, p.Name)
		}

		return nil
	})
}

func newYevamosCmd() *cobra.Command {
	var sliceIndex int

	cmd := &cobra.Command{
		Use:   "yevamos",
		Short: "List widows with outstanding levirate ties",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYevamos(cmd, sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Slice to evaluate (default: latest)")

	return cmd
}

func runYevamos(cmd *cobra.Command, sliceIndex int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.StatusHandler.HandleYevamos(ctx, d.TreeID, sliceIndex)
		if err != nil {
			return err
		}

		if len(result.Widows) == 0 {
			fmt.Printf("No outstanding levirate ties at slice %d.\n", result.Slice)
			return nil
		}

		fmt.Printf("Widows awaiting yibbum or chalitzah at slice %d:\n", result.Slice)
		for _, p := range result.Widows {
			fmt.Printf("  - %s (%s)\n", p.ID, p.Name)
		}

		return nil
	})
}

// describeTie renders one levirate tie on a single line.
func describeTie(t entities.Tie) string {
	base := fmt.Sprintf("widow %s of %s (from slice %d)", t.WidowID, t.DeceasedID, t.CreatedSlice)

	at := ""
	if t.ResolvedSlice != nil {
		at = fmt.Sprintf(" at slice %d", *t.ResolvedSlice)
	}
	switch t.State {
	case entities.TieResolvedByMarriage:
		return fmt.Sprintf("%s: resolved by levirate marriage to %s%s", base, t.ResolvedByID, at)
	case entities.TieResolvedByRelease:
		return fmt.Sprintf("%s: resolved by chalitzah from %s%s", base, t.ResolvedByID, at)
	}

	if len(t.Candidates) == 0 {
		if len(t.ReleasedIDs) > 0 {
			return fmt.Sprintf("%s: lapsed, all candidates released (%s)", base, strings.Join(t.ReleasedIDs, ", "))
		}
		return base + ": lapsed, no living candidates"
	}
	return fmt.Sprintf("%s: outstanding, candidates %s", base, strings.Join(t.Candidates, ", "))
}
