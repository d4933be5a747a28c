package main

import (
	"context"
	"os"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
	embedder "github.com/ersonp/yichus-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/yichus-core/internal/infrastructure/treestore/sqlite"
	"github.com/ersonp/yichus-core/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and the store are internal.
type Deps struct {
	Config        *config.Config
	Trees         *config.TreesConfig
	TreeID        string
	StatusHandler *handlers.StatusHandler
	PeopleHandler *handlers.PeopleHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	cwd             string
	store           *sqlite.Repository
	registry        *entities.Registry
	resolver        *services.ResolverService
	treeService     *services.TreeService
	profileService  *services.ProfileService
	statusService   *services.StatusService
	levirateService *services.LevirateService
}

// withDeps resolves the --tree flag and builds dependencies, then calls the
// provided function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps is withWorkspace plus --tree resolution through the tree
// registry. Commands that operate on a single tree's timeline go through
// here.
func withInternalDeps(fn func(*internalDeps) error) error {
	return withWorkspace(func(d *internalDeps) error {
		if globalTree == "" {
			return errors.New("tree is required (use --tree flag)")
		}
		entry, err := d.Trees.Get(config.SanitizeTreeName(globalTree))
		if err != nil {
			return err
		}
		d.TreeID = entry.ID
		return fn(d)
	})
}

// withWorkspace opens the workspace: config, tree registry, and the shared
// SQLite store holding every tree. No tree is selected; commands that need
// one go through withInternalDeps.
func withWorkspace(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting current directory")
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return errors.Wrap(err, "loading tree registry")
	}

	sqlitePath := cfg.SQLite.Path
	if sqlitePath == "" {
		sqlitePath = config.SQLitePath(cwd)
	}
	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: sqlitePath})
	if err != nil {
		return errors.Wrap(err, "opening tree store")
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		return errors.Wrap(err, "ensuring store schema")
	}

	registry := entities.BuiltinRegistry()
	resolver := services.NewResolverService(true)
	treeService := services.NewTreeService(store)
	profileService := services.NewProfileService(store, registry)
	levirateService := services.NewLevirateService(resolver, registry)
	statusService := services.NewStatusService(resolver, levirateService, registry)

	// Seed the default profile so it is always addressable by name.
	if err := profileService.LoadDefaults(ctx); err != nil {
		return err
	}

	deps := &internalDeps{
		Deps: Deps{
			Config:        cfg,
			Trees:         trees,
			StatusHandler: handlers.NewStatusHandler(treeService, statusService, levirateService, profileService),
			PeopleHandler: handlers.NewPeopleHandler(treeService, resolver),
		},
		cwd:             cwd,
		store:           store,
		registry:        registry,
		resolver:        resolver,
		treeService:     treeService,
		profileService:  profileService,
		statusService:   statusService,
		levirateService: levirateService,
	}

	return fn(deps)
}

// withSearchHandler provides the rule search handler. Rule search runs
// against the shared rules collection and never touches the tree store, so
// only qdrant and the embedder are opened.
func withSearchHandler(fn func(*handlers.SearchHandler) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting current directory")
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	repo, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return errors.Wrap(err, "creating qdrant repository")
	}
	defer repo.Close()

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		return errors.Wrap(err, "creating embedder")
	}

	searchService := services.NewSearchService(emb, repo, entities.BuiltinRegistry())
	return fn(handlers.NewSearchHandler(searchService))
}
