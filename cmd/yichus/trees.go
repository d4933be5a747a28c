package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
)

func newTreesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Manage family trees",
		Long:  "Create, list, inspect, and delete family trees. Every tree lives in the shared workspace store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesList(cmd)
		},
	}

	cmd.AddCommand(newTreesCreateCmd())
	cmd.AddCommand(newTreesListCmd())
	cmd.AddCommand(newTreesShowCmd())
	cmd.AddCommand(newTreesDeleteCmd())

	return cmd
}

func newTreesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new family tree",
		Long:  "Creates an empty family tree and records it in the tree registry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tree description")

	return cmd
}

func runTreesCreate(cmd *cobra.Command, name, description string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting current directory")
	}

	// First tree in a fresh directory: set up the workspace on the way.
	if !config.Exists(cwd) {
		if err := config.WriteDefault(cwd); err != nil {
			return errors.Wrap(err, "writing default config")
		}
		fmt.Printf("Created %s\n", config.ConfigFilePath(cwd))
	}

	return withWorkspace(func(d *internalDeps) error {
		tree, err := d.treeService.Create(ctx, name)
		if err != nil {
			return errors.Wrap(err, "creating tree")
		}

		entry := config.TreeEntry{ID: tree.ID, Description: description}
		if err := registerTree(d.cwd, name, entry); err != nil {
			return errors.Wrap(err, "registering tree")
		}

		fmt.Printf("Created tree %q (id %s)\n", tree.Name, tree.ID)
		fmt.Printf("Use it with: yichus --tree %s <command>\n", config.SanitizeTreeName(name))
		return nil
	})
}

func newTreesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesList(cmd)
		},
	}
}

func runTreesList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withWorkspace(func(d *internalDeps) error {
		trees, err := d.treeService.List(ctx)
		if err != nil {
			return errors.Wrap(err, "listing trees")
		}

		if len(trees) == 0 {
			fmt.Println("No trees found. Create one with: yichus trees create <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tVERSION\tEVENTS\tDESCRIPTION")
		for _, tree := range trees {
			count, err := d.treeService.CountEvents(ctx, tree.ID)
			if err != nil {
				return errors.Wrap(err, "counting events")
			}
			description := ""
			if entry, ok := d.Trees.Trees[config.SanitizeTreeName(tree.Name)]; ok {
				description = entry.Description
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", tree.Name, tree.ID, tree.Version, count, truncate(description, 50))
		}
		w.Flush()

		return nil
	})
}

func newTreesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show details about a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesShow(cmd, args[0])
		},
	}
}

func runTreesShow(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()

	return withWorkspace(func(d *internalDeps) error {
		tree, err := d.treeService.Find(ctx, name)
		if err != nil {
			return err
		}

		count, err := d.treeService.CountEvents(ctx, tree.ID)
		if err != nil {
			return errors.Wrap(err, "counting events")
		}

		graph, err := d.treeService.LoadGraph(ctx, tree.ID)
		if err != nil {
			return errors.Wrap(err, "loading tree")
		}

		fmt.Printf("Name:    %s\n", tree.Name)
		fmt.Printf("ID:      %s\n", tree.ID)
		fmt.Printf("Version: %d\n", tree.Version)
		fmt.Printf("Slices:  %d\n", graph.SliceCount())
		fmt.Printf("Events:  %d\n", count)
		if entry, ok := d.Trees.Trees[config.SanitizeTreeName(tree.Name)]; ok && entry.Description != "" {
			fmt.Printf("About:   %s\n", entry.Description)
		}
		fmt.Printf("Created: %s\n", tree.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated: %s\n", tree.UpdatedAt.Format("2006-01-02 15:04:05"))

		audit, err := d.treeService.AuditLog(ctx, tree.ID)
		if err != nil {
			return errors.Wrap(err, "reading audit log")
		}
		if len(audit) > 0 {
			fmt.Println()
			fmt.Println("Recent activity:")
			for i, e := range audit {
				if i >= 5 {
					break
				}
				fmt.Printf("  %s  %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Action)
			}
		}

		return nil
	})
}

func newTreesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tree",
		Long:  "Deletes a tree and its entire event log. Trees with recorded events require --force.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if the tree has recorded events")

	return cmd
}

func runTreesDelete(cmd *cobra.Command, name string, force bool) error {
	ctx := cmd.Context()

	return withWorkspace(func(d *internalDeps) error {
		tree, err := d.treeService.Find(ctx, name)
		if err != nil {
			return err
		}

		count, err := d.treeService.CountEvents(ctx, tree.ID)
		if err != nil {
			return errors.Wrap(err, "counting events")
		}
		if count > 0 && !force {
			return errors.Newf("tree %q has %d recorded events (use --force to delete anyway)", tree.Name, count)
		}

		if err := d.treeService.Delete(ctx, tree.ID); err != nil {
			return errors.Wrap(err, "deleting tree")
		}
		if err := unregisterTree(d.cwd, tree.Name); err != nil {
			return errors.Wrap(err, "unregistering tree")
		}

		fmt.Printf("Deleted tree %q\n", tree.Name)
		return nil
	})
}

// registerTree records a tree in the trees registry file.
func registerTree(basePath, name string, entry config.TreeEntry) error {
	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return err
	}
	trees.Add(config.SanitizeTreeName(name), entry)
	return trees.Save(basePath)
}

// unregisterTree removes a tree from the trees registry file. Removing a
// name that was never registered is not an error.
func unregisterTree(basePath, name string) error {
	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return err
	}
	trees.Remove(config.SanitizeTreeName(name))
	return trees.Save(basePath)
}

// truncate shortens a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
