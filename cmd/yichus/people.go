package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPeopleCmd() *cobra.Command {
	var sliceIndex int

	cmd := &cobra.Command{
		Use:   "people",
		Short: "List people in a tree",
		Long:  "Lists the people visible at a slice of the tree's timeline, in introduction order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeopleList(cmd, sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Slice to list at (default: latest)")

	cmd.AddCommand(newPeopleListCmd())
	cmd.AddCommand(newPeopleShowCmd())

	return cmd
}

func newPeopleListCmd() *cobra.Command {
	var sliceIndex int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List people at a slice",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeopleList(cmd, sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Slice to list at (default: latest)")

	return cmd
}

func runPeopleList(cmd *cobra.Command, sliceIndex int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.PeopleHandler.HandleList(ctx, d.TreeID, sliceIndex)
		if err != nil {
			return err
		}

		if result.Total == 0 {
			fmt.Printf("No people at slice %d.\n", result.Slice)
			return nil
		}

		fmt.Printf("People at slice %d (%d total):\n\n", result.Slice, result.Total)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSEX\tSTATUS")
		for _, p := range result.People {
			status := "alive"
			if !p.AliveAt(result.Slice) {
				status = "deceased"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Sex, status)
		}
		w.Flush()

		return nil
	})
}

func newPeopleShowCmd() *cobra.Command {
	var sliceIndex int

	cmd := &cobra.Command{
		Use:   "show <person-id>",
		Short: "Show details about a person",
		Long:  "Shows a person's vital status, derived parents and children, and every relation naming them at a slice.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeopleShow(cmd, args[0], sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Slice to show at (default: latest)")

	return cmd
}

func runPeopleShow(cmd *cobra.Command, personID string, sliceIndex int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		detail, err := d.PeopleHandler.HandleShow(ctx, d.TreeID, personID, sliceIndex)
		if err != nil {
			return err
		}

		p := detail.Person
		fmt.Printf("ID:     %s\n", p.ID)
		fmt.Printf("Name:   %s\n", p.Name)
		fmt.Printf("Sex:    %s\n", p.Sex)
		if detail.Alive {
			fmt.Printf("Status: alive (at slice %d)\n", detail.Slice)
		} else if p.DeathSlice != nil {
			fmt.Printf("Status: deceased since slice %d\n", *p.DeathSlice)
		} else {
			fmt.Printf("Status: deceased\n")
		}
		if len(detail.Parents) > 0 {
			fmt.Printf("Parents:  %s\n", strings.Join(detail.Parents, ", "))
		}
		if len(detail.Children) > 0 {
			fmt.Printf("Children: %s\n", strings.Join(detail.Children, ", "))
		}

		if len(detail.Relations) > 0 {
			fmt.Println()
			fmt.Println("Relations:")
			for _, r := range detail.Relations {
				fmt.Printf("  - %s\n", describeRelation(r))
			}
		}

		return nil
	})
}
