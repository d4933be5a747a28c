package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
	"github.com/ersonp/yichus-core/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new yichus workspace",
		Long:  "Creates a .yichus directory with default configuration and sets up the Qdrant rules collection.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting current directory")
	}

	repo, err := qdrant.NewRepository(config.Default().Qdrant)
	if err != nil {
		return errors.Wrap(err, "connecting to qdrant")
	}
	defer repo.Close()

	result, err := handlers.NewInitHandler(repo).Handle(ctx, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	fmt.Println("Yichus initialized successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  yichus trees create <name>   create a family tree")
	fmt.Println("  yichus rules index           index the rule registry for search")

	return nil
}
