package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/depotkit/depot/internal/classification"
	"github.com/depotkit/depot/internal/config"
	"github.com/depotkit/depot/internal/content"
	"github.com/depotkit/depot/internal/index"
	"github.com/depotkit/depot/internal/linktable"
	"github.com/depotkit/depot/internal/objects"
	"github.com/depotkit/depot/internal/xmltable"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "depot",
		Short: "depot — digital-object repository persistence engine",
		Long:  "Depot stores XML-described objects and derivates across a canonical document store, a searchable projection and a link edge index, keeping all three consistent under create/update/delete.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg.Apply()
			return nil
		},
	}

	rootCmd.AddCommand(
		allocCmd(),
		createCmd(),
		updateCmd(),
		getCmd(),
		deleteCmd(),
		listCmd(),
		repairCmd(),
		statsCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newRepository wires the configured backends into a lifecycle engine and
// returns a cleanup closing them in reverse construction order.
func newRepository(ctx context.Context, logger *slog.Logger) (*objects.Repository, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*objects.Repository, func(), error) {
		cleanup()
		return nil, nil, err
	}

	var db *sql.DB
	if cfg.Storage.Backend == "sqlite" || cfg.LinkTable.Backend == "sqlite" {
		var err error
		db, err = xmltable.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = db.Close() })
	}

	var docFactory xmltable.BackendFactory
	switch cfg.Storage.Backend {
	case "sqlite":
		docFactory = xmltable.NewSQLiteFactory(db, logger)
	default:
		docFactory = xmltable.NewMemoryFactory()
	}
	docs, err := xmltable.New(docFactory, cfg.Cache.Capacity, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = docs.Close() })

	var linkFactory linktable.BackendFactory
	switch cfg.LinkTable.Backend {
	case "sqlite":
		linkFactory = linktable.NewSQLiteFactory(db, logger)
	case "neo4j":
		driver, err := linktable.NewNeo4jDriver(ctx, cfg.LinkTable.Neo4j.URI, cfg.LinkTable.Neo4j.User, cfg.LinkTable.Neo4j.Password)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = driver.Close(context.Background()) })
		linkFactory = linktable.NewNeo4jFactory(driver, cfg.LinkTable.Neo4j.Database, logger)
	default:
		linkFactory = linktable.NewMemoryFactory()
	}
	links := linktable.New(linkFactory, logger)
	closers = append(closers, func() { _ = links.Close() })

	var idx index.Store
	switch cfg.Index.Backend {
	case "redis":
		idx, err = index.NewRedisStore(ctx, cfg.Index.Redis.Addr, cfg.Index.Redis.Password, cfg.Index.Redis.DB, logger)
		if err != nil {
			return fail(err)
		}
	default:
		idx = index.NewMemoryStore()
	}
	closers = append(closers, func() { _ = idx.Close() })

	var classes classification.Resolver
	if db != nil {
		classes, err = classification.NewSQLiteResolver(db)
		if err != nil {
			return fail(err)
		}
	} else {
		classes = classification.NewMemoryResolver()
	}

	cont, err := content.NewDirStore(cfg.Content.Dir, logger)
	if err != nil {
		return fail(err)
	}

	return objects.NewRepository(docs, links, idx, classes, cont, logger), cleanup, nil
}
