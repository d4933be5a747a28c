package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Record people in a tree",
	}

	cmd.AddCommand(newPersonAddCmd())
	cmd.AddCommand(newPersonDeceasedCmd())

	return cmd
}

func newPersonAddCmd() *cobra.Command {
	var (
		sex      string
		personID string
		newSlice bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person to the tree",
		Long: `Records an add_person event. By default the event extends the latest
slice; pass --new-slice to open a new moment in the timeline first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonAdd(cmd, args[0], sex, personID, newSlice)
		},
	}

	cmd.Flags().StringVarP(&sex, "sex", "x", "", "Sex of the person (male or female)")
	cmd.Flags().StringVar(&personID, "id", "", "Person ID (default: generated)")
	cmd.Flags().BoolVar(&newSlice, "new-slice", false, "Record in a new slice instead of extending the latest")

	return cmd
}

func runPersonAdd(cmd *cobra.Command, name, sex, personID string, newSlice bool) error {
	ctx := cmd.Context()

	s := entities.Sex(sex)
	if s != entities.SexMale && s != entities.SexFemale {
		return errors.Newf("invalid sex %q (valid: male, female)", sex)
	}

	return withInternalDeps(func(d *internalDeps) error {
		graph, err := d.treeService.LoadGraph(ctx, d.TreeID)
		if err != nil {
			return errors.Wrap(err, "loading tree")
		}

		if personID == "" {
			personID = uuid.New().String()
		}
		person := entities.Person{
			ID:             personID,
			Name:           name,
			NormalizedName: entities.NormalizeName(name),
			Sex:            s,
		}

		slice := appendSliceFor(graph, newSlice)
		if _, err := d.treeService.AppendEvents(ctx, d.TreeID, slice, []entities.Event{entities.NewAddPerson(person)}); err != nil {
			return err
		}

		fmt.Printf("Added %s (id %s) at slice %d\n", name, personID, slice)
		return nil
	})
}

func newPersonDeceasedCmd() *cobra.Command {
	var newSlice bool

	cmd := &cobra.Command{
		Use:   "deceased <person-id>",
		Short: "Mark a person as deceased",
		Long: `Records a mark_deceased event. The person is dead from the recording
slice onward; every relation they held stays on the graph, which is what
the widow and levirate rules depend on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonDeceased(cmd, args[0], newSlice)
		},
	}

	cmd.Flags().BoolVar(&newSlice, "new-slice", false, "Record in a new slice instead of extending the latest")

	return cmd
}

func runPersonDeceased(cmd *cobra.Command, personID string, newSlice bool) error {
	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		graph, err := d.treeService.LoadGraph(ctx, d.TreeID)
		if err != nil {
			return errors.Wrap(err, "loading tree")
		}

		if graph.SliceCount() == 0 {
			return errors.Wrapf(errors.ErrUnknownPerson, "person %q", personID)
		}
		snap, err := d.resolver.Resolve(graph, graph.LatestSlice())
		if err != nil {
			return errors.Wrap(err, "resolving tree")
		}
		person, ok := snap.Person(personID)
		if !ok {
			return errors.Wrapf(errors.ErrUnknownPerson, "person %q", personID)
		}
		if person.DeadAt(graph.LatestSlice()) {
			return errors.Newf("%s is already deceased (since slice %d)", person.Name, *person.DeathSlice)
		}

		slice := appendSliceFor(graph, newSlice)
		if _, err := d.treeService.AppendEvents(ctx, d.TreeID, slice, []entities.Event{entities.NewMarkDeceased(personID)}); err != nil {
			return err
		}

		fmt.Printf("Marked %s deceased at slice %d\n", person.Name, slice)
		return nil
	})
}

// appendSliceFor picks the slice new events are recorded at: the latest
// existing slice, or the one after it when newSlice is set. An empty
// timeline always starts at slice 0.
func appendSliceFor(graph *entities.TemporalGraph, newSlice bool) int {
	latest := graph.LatestSlice()
	if latest < 0 {
		return 0
	}
	if newSlice {
		return latest + 1
	}
	return latest
}
