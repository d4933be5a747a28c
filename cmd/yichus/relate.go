package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

func newRelateCmd() *cobra.Command {
	var (
		relationID string
		childIDs   []string
		hidden     bool
		newSlice   bool
	)

	cmd := &cobra.Command{
		Use:   "relate <source-id> <type> <target-id>",
		Short: "Record a relation between two people",
		Long: `Records an add_relation event. The type is one of: betrothal, marriage,
divorce, levirate_marriage, levirate_release, parent_child, sibling,
unmarried_union. For parent_child the source is the parent.

Examples:
  yichus -t stam relate p1 marriage p2
  yichus -t stam relate p1 parent_child p3
  yichus -t stam relate p1 unmarried_union p2 --child p4 --hidden`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(cmd, args[0], args[1], args[2], relationID, childIDs, hidden, newSlice)
		},
	}

	cmd.Flags().StringVar(&relationID, "id", "", "Relation ID (default: generated)")
	cmd.Flags().StringArrayVar(&childIDs, "child", nil, "Child of this union (repeatable)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Hide the relation from default listings")
	cmd.Flags().BoolVar(&newSlice, "new-slice", false, "Record in a new slice instead of extending the latest")

	return cmd
}

func runRelate(cmd *cobra.Command, sourceID, relType, targetID, relationID string, childIDs []string, hidden, newSlice bool) error {
	ctx := cmd.Context()

	rt := entities.RelationType(relType)
	if !rt.IsValid() {
		return errors.Newf("invalid relation type %q (valid: %s)", relType, strings.Join(relationTypeNames(), ", "))
	}

	return withInternalDeps(func(d *internalDeps) error {
		graph, err := d.treeService.LoadGraph(ctx, d.TreeID)
		if err != nil {
			return errors.Wrap(err, "loading tree")
		}
		if graph.SliceCount() == 0 {
			return errors.Newf("tree has no people yet (add them with: yichus -t %s person add)", globalTree)
		}

		snap, err := d.resolver.Resolve(graph, graph.LatestSlice())
		if err != nil {
			return errors.Wrap(err, "resolving tree")
		}
		for _, id := range append([]string{sourceID, targetID}, childIDs...) {
			if !snap.Contains(id) {
				return errors.Wrapf(errors.ErrUnknownPerson, "person %q", id)
			}
		}

		if relationID == "" {
			relationID = uuid.New().String()
		}
		rel := entities.Relation{
			ID:       relationID,
			Type:     rt,
			SourceID: sourceID,
			TargetID: targetID,
			ChildIDs: childIDs,
			Hidden:   hidden,
		}

		slice := appendSliceFor(graph, newSlice)
		if _, err := d.treeService.AppendEvents(ctx, d.TreeID, slice, []entities.Event{entities.NewAddRelation(rel)}); err != nil {
			return err
		}

		fmt.Printf("Created relation: %s\n", rel.ID)
		fmt.Printf("  %s -[%s]-> %s at slice %d\n", sourceID, rel.Type, targetID, slice)
		if len(childIDs) > 0 {
			fmt.Printf("  children: %s\n", strings.Join(childIDs, ", "))
		}
		return nil
	})
}

func relationTypeNames() []string {
	names := make([]string, len(entities.ValidRelationTypes))
	for i, t := range entities.ValidRelationTypes {
		names[i] = string(t)
	}
	return names
}
