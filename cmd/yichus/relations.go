package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

type relationsFlags struct {
	relType    string
	sliceIndex int
	format     string
}

func newRelationsCmd() *cobra.Command {
	var flags relationsFlags

	cmd := &cobra.Command{
		Use:   "relations [person-id]",
		Short: "List relations in a tree",
		Long: `Shows the relations visible at a slice, with optional filtering.
With a person ID, shows only relations naming that person; the tree
format needs one.

Examples:
  yichus -t beis_yaakov relations
  yichus -t beis_yaakov relations p1 --format tree
  yichus -t beis_yaakov relations --type marriage --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			personID := ""
			if len(args) > 0 {
				personID = args[0]
			}
			return runRelations(cmd, personID, flags)
		},
	}

	cmd.Flags().StringVar(&flags.relType, "type", "", "Filter by relation type")
	cmd.Flags().IntVarP(&flags.sliceIndex, "slice", "s", -1, "Slice to list at (default: latest)")
	cmd.Flags().StringVar(&flags.format, "format", "list", "Output format: tree, list, json")

	return cmd
}

func runRelations(cmd *cobra.Command, personID string, flags relationsFlags) error {
	ctx := cmd.Context()

	allowed := map[string]bool{"tree": true, "list": true, "json": true}
	if !allowed[flags.format] {
		return errors.Newf("invalid format: %s (valid: tree, list, json)", flags.format)
	}
	if flags.relType != "" && !entities.RelationType(flags.relType).IsValid() {
		return errors.Newf("invalid relation type %q", flags.relType)
	}

	return withDeps(func(d *Deps) error {
		var relations []entities.Relation
		var slice int

		if personID != "" {
			detail, err := d.PeopleHandler.HandleShow(ctx, d.TreeID, personID, flags.sliceIndex)
			if err != nil {
				return err
			}
			relations = detail.Relations
			slice = detail.Slice
		} else {
			result, err := d.PeopleHandler.HandleRelations(ctx, d.TreeID, flags.sliceIndex)
			if err != nil {
				return err
			}
			relations = result.Relations
			slice = result.Slice
		}

		if flags.relType != "" {
			var filtered []entities.Relation
			for _, r := range relations {
				if string(r.Type) == flags.relType {
					filtered = append(filtered, r)
				}
			}
			relations = filtered
		}

		if len(relations) == 0 {
			if personID != "" {
				fmt.Printf("No relations for %s at slice %d.\n", personID, slice)
			} else {
				fmt.Printf("No relations at slice %d.\n", slice)
			}
			return nil
		}

		return printRelations(personID, slice, relations, flags.format)
	})
}

func printRelations(personID string, slice int, relations []entities.Relation, format string) error {
	switch format {
	case "json":
		return printRelationsJSON(relations)
	case "tree":
		if personID == "" {
			return errors.New("tree format needs a person ID")
		}
		printRelationsTree(personID, relations)
		return nil
	default:
		printRelationsList(slice, relations)
		return nil
	}
}

func printRelationsJSON(relations []entities.Relation) error {
	data, err := json.MarshalIndent(relations, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	fmt.Println(string(data))
	return nil
}

func printRelationsList(slice int, relations []entities.Relation) {
	fmt.Printf("Relations at slice %d:\n", slice)
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range relations {
		fmt.Println(describeRelation(r))
	}
}

func printRelationsTree(personID string, relations []entities.Relation) {
	fmt.Printf("%s\n", personID)

	for i, r := range relations {
		prefix := "+-"
		if i == len(relations)-1 {
			prefix = "\\-"
		}

		other, _ := r.Other(personID)

		// parent_child points parent -> child; name the edge from the
		// root's side so the tree reads naturally either way.
		label := string(r.Type)
		if r.Type == entities.RelationParentChild && r.TargetID == personID {
			label = "child_of"
		}

		fmt.Printf("%s %s -> %s\n", prefix, label, other)
	}
}

// describeRelation renders one relation on a single line.
func describeRelation(r entities.Relation) string {
	s := fmt.Sprintf("%s: %s %s %s", r.ID, r.SourceID, r.Type, r.TargetID)
	if len(r.ChildIDs) > 0 {
		s += fmt.Sprintf(" (children: %s)", strings.Join(r.ChildIDs, ", "))
	}
	if r.Hidden {
		s += " [hidden]"
	}
	return s
}
