package main

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/cardmigrate/internal/config"
	"github.com/JonMunkholm/cardmigrate/internal/core"
	"github.com/JonMunkholm/cardmigrate/internal/logging"
	"github.com/JonMunkholm/cardmigrate/internal/store"
	_ "github.com/JonMunkholm/cardmigrate/internal/store/memstore"    // Register memory driver
	_ "github.com/JonMunkholm/cardmigrate/internal/store/mongostore"  // Register mongo driver
	_ "github.com/JonMunkholm/cardmigrate/internal/store/pgstore"     // Register postgres driver
	_ "github.com/JonMunkholm/cardmigrate/internal/store/sqlitestore" // Register sqlite driver
)

// migrateFlags holds command line overrides for the environment configuration.
type migrateFlags struct {
	driver     string
	url        string
	database   string
	collection string
	logLevel   string
	logFormat  string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cardmigrate",
		Short: "Migrate the legacy card export into the document store",
		Long: `cardmigrate copies the rows of the legacy pokemon_cards JSON export into
the document store, remapping the export's column names to the card model.

Rows with an ID are upserted, so the migration can be re-run safely for them.
Rows without an ID are inserted and will be duplicated by a re-run.

Configuration is read from the environment (and a .env file if present);
flags override it.`,
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(), newDriversCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var f migrateFlags

	cmd := &cobra.Command{
		Use:   "migrate [export.json]",
		Short: "Migrate every row of the export file",
		Long: `Migrate every row of the export file into the target collection.

The export path defaults to EXPORT_FILE. A malformed export stops the run before
anything is written; a row that fails to write is logged and skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.driver, "store", "", "store driver: "+fmt.Sprint(config.Drivers)+" (env STORE_DRIVER)")
	flags.StringVar(&f.url, "url", "", "store connection URL or sqlite file path (env STORE_URL)")
	flags.StringVar(&f.database, "database", "", "mongo database name (env STORE_DATABASE)")
	flags.StringVar(&f.collection, "collection", "", "target collection or table (env TARGET_COLLECTION)")
	flags.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.StringVar(&f.logFormat, "log-format", "", "text or json (env LOG_FORMAT)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "migrate into an in-memory store and report what would be written")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string, f migrateFlags) error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, args, f); err != nil {
		return err
	}

	logging.Setup(cmd.OutOrStdout(), cfg.Logging.Level, cfg.Logging.Format)

	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	logger := logging.FromContext(ctx)
	logger.Info("configuration loaded", "env_file", envLoaded, "target", cfg.Store.Target(), "config", cfg.String())

	handle, err := store.Open(ctx, cfg.Store.Driver, store.Options{
		URL:            cfg.Store.URL,
		Database:       cfg.Store.Database,
		Collection:     cfg.Store.Collection,
		ConnectTimeout: cfg.Store.ConnectTimeout,
	})
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err, "code", core.MapError(err).Code)
		return err
	}
	defer func() {
		if err := handle.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	logging.WithFields(ctx, "driver", cfg.Store.Driver, "target", handle.Target()).Info("store opened")

	svc := core.NewService(handle, core.Options{
		Target:      handle.Target(),
		MaxFileSize: cfg.Export.MaxFileSize,
	})

	summary, err := svc.Run(ctx, cfg.Export.Path)
	if err != nil {
		logger.Error("migration aborted", "error", err, "code", core.MapError(err).Code)
		if summary.Total > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Migration interrupted. %s\n", summary)
		}
		if core.IsUserFacing(err) {
			return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration complete. %s\n", summary)
	return nil
}

// applyFlags overlays explicitly set flags and the positional path on cfg,
// then validates the result again.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string, f migrateFlags) error {
	flags := cmd.Flags()

	if len(args) == 1 {
		cfg.Export.Path = args[0]
	}
	if flags.Changed("store") {
		cfg.Store.Driver = f.driver
	}
	if flags.Changed("url") {
		cfg.Store.URL = f.url
	}
	if flags.Changed("database") {
		cfg.Store.Database = f.database
	}
	if flags.Changed("collection") {
		cfg.Store.Collection = f.collection
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if f.dryRun {
		cfg.Store.Driver = "memory"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the available store drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range store.All() {
				fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Description)
			}
			if err := w.Flush(); err != nil {
				slog.Error("failed to write driver list", "error", err)
				return err
			}
			return nil
		},
	}
}
