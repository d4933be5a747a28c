package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

func newEventsCmd() *cobra.Command {
	var sliceIndex int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show a tree's event log",
		Long:  "Prints the recorded timeline slice by slice, in the exact order events were appended.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(cmd, sliceIndex)
		},
	}

	cmd.Flags().IntVarP(&sliceIndex, "slice", "s", -1, "Only this slice (default: all)")

	return cmd
}

func runEvents(cmd *cobra.Command, sliceIndex int) error {
	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		graph, err := d.treeService.LoadGraph(ctx, d.TreeID)
		if err != nil {
			return errors.Wrap(err, "loading tree")
		}

		if graph.SliceCount() == 0 {
			fmt.Println("No events recorded.")
			return nil
		}
		if sliceIndex >= graph.SliceCount() {
			return errors.Newf("slice %d is out of range (latest is %d)", sliceIndex, graph.LatestSlice())
		}

		total := 0
		for si := range graph.Slices {
			total += len(graph.Slices[si].Events)
		}
		fmt.Printf("Timeline: %d slices, %d events\n", graph.SliceCount(), total)

		for si := range graph.Slices {
			if sliceIndex >= 0 && si != sliceIndex {
				continue
			}
			events := graph.Slices[si].Events
			fmt.Printf("\nSlice %d (%d events):\n", si, len(events))
			for i, ev := range events {
				fmt.Printf("  %d. %s\n", i+1, describeEvent(ev))
			}
		}

		return nil
	})
}

// describeEvent renders one event on a single line.
func describeEvent(ev entities.Event) string {
	switch ev.Type {
	case entities.EventAddPerson:
		if ev.Person != nil {
			return fmt.Sprintf("add_person %s %q (%s)", ev.Person.ID, ev.Person.Name, ev.Person.Sex)
		}
	case entities.EventAddRelation:
		if ev.Relation != nil {
			return "add_relation " + describeRelation(*ev.Relation)
		}
	case entities.EventMarkDeceased:
		return "mark_deceased " + ev.PersonID
	case entities.EventUpdateRelation:
		s := "update_relation " + ev.RelationID
		if ev.Changes != nil {
			if ev.Changes.Type != nil {
				s += fmt.Sprintf(" type=%s", *ev.Changes.Type)
			}
			if len(ev.Changes.AddChildIDs) > 0 {
				s += " add_children=" + strings.Join(ev.Changes.AddChildIDs, ",")
			}
			if ev.Changes.Hidden != nil {
				s += fmt.Sprintf(" hidden=%v", *ev.Changes.Hidden)
			}
		}
		return s
	}
	return string(ev.Type)
}
