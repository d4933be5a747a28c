package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage opinion profiles",
		Long: `An opinion profile picks one side of each disputed rule. Status
computations follow the selected opinions and fall back to each dispute's
default where the profile is silent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesList(cmd)
		},
	}

	cmd.AddCommand(newProfilesCreateCmd())
	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesSetCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesRemoveCmd())

	return cmd
}

func newProfilesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an opinion profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withWorkspace(func(d *internalDeps) error {
				profile, err := d.profileService.Create(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Created profile %q (id %s)\n", profile.Name, profile.ID)
				fmt.Printf("Select opinions with: yichus profiles set %s <dispute-id> <opinion-id>\n", profile.Name)
				return nil
			})
		},
	}
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List opinion profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesList(cmd)
		},
	}
}

func runProfilesList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withWorkspace(func(d *internalDeps) error {
		profiles, err := d.profileService.List(ctx)
		if err != nil {
			return err
		}

		if len(profiles) == 0 {
			fmt.Println("No profiles found. Create one with: yichus profiles create <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tSELECTIONS")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%d\n", p.Name, p.ID, len(p.Selections))
		}
		return w.Flush()
	})
}

func newProfilesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <profile> <dispute-id> <opinion-id>",
		Short: "Select an opinion for a dispute",
		Long: `Records which opinion the profile follows for one dispute. Dispute and
opinion IDs are shown by "yichus rules describe <rule-id>".`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withWorkspace(func(d *internalDeps) error {
				profile, err := d.profileService.SetOpinion(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Printf("Profile %q now follows %s on %s\n", profile.Name, args[2], args[1])
				return nil
			})
		},
	}
}

func newProfilesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile>",
		Short: "Show a profile's effective opinions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withWorkspace(func(d *internalDeps) error {
				profile, err := d.profileService.Find(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Printf("Name: %s\n", profile.Name)
				fmt.Printf("ID:   %s\n", profile.ID)
				fmt.Println("\nEffective opinions:")

				for _, dispute := range d.registry.Disputes {
					opinionID, source, err := d.registry.EffectiveOpinion(dispute.ID, profile)
					if err != nil {
						return err
					}
					note := ""
					if source == entities.OpinionFromDefault {
						note = " (default)"
					}
					fmt.Printf("  %s: %s%s\n", dispute.ID, opinionID, note)
				}
				return nil
			})
		},
	}
}

func newProfilesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <profile>",
		Short: "Remove an opinion profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withWorkspace(func(d *internalDeps) error {
				if err := d.profileService.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Removed profile %q\n", args[0])
				return nil
			})
		},
	}
}
